package releases

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go_releasehub/internal/httpx"
	"go_releasehub/internal/model"
	"go_releasehub/internal/release"
	"go_releasehub/internal/ws"

	"github.com/gin-gonic/gin"
)

// Handler release API处理器
type Handler struct {
	service  *release.Service
	registry *release.Registry
	replay   ws.Replayer
}

// NewHandler 创建release API处理器
func NewHandler(service *release.Service, registry *release.Registry, replay ws.Replayer) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		replay:   replay,
	}
}

// CreateRequest 创建release请求
type CreateRequest struct {
	Title    string             `json:"title" binding:"required"`
	Entities []model.EntityLink `json:"entities"`
}

// UpdateRequest 更新release请求
type UpdateRequest struct {
	Title    string             `json:"title" binding:"required"`
	Version  int                `json:"version" binding:"required,min=1"`
	Entities []model.EntityLink `json:"entities"`
}

// EntitiesRequest adds or removes entity links
type EntitiesRequest struct {
	Version  int                `json:"version" binding:"required,min=1"`
	Entities []model.EntityLink `json:"entities" binding:"required,min=1"`
}

// TabRequest 切换tab请求
type TabRequest struct {
	Tab release.Tab `json:"tab" binding:"required"`
}

// ScheduleRequest 创建定时任务请求
type ScheduleRequest struct {
	ScheduledAt string           `json:"scheduledAt" binding:"required"` // RFC3339
	Timezone    string           `json:"timezone"`
	Action      model.ActionType `json:"action" binding:"required"`
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Result *release.ValidationResult `json:"result"`
	State  release.Snapshot          `json:"state"`
}

// JobsResponse 定时任务列表响应
type JobsResponse struct {
	Jobs        []model.ScheduledJob `json:"jobs"`
	PendingJobs []model.ScheduledJob `json:"pendingJobs"`
}

// List 分页查询release
// GET /api/v1/releases
func (h *Handler) List(c *gin.Context) {
	var req release.ListReleasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	resp, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		failRelease(c, err, "failed to list releases")
		return
	}
	httpx.OKItems(c, resp.Items, int64(resp.Total), resp.Page, resp.PageSize)
}

// Create 创建release
// POST /api/v1/releases
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	rel, err := h.service.Create(c.Request.Context(), req.Title, req.Entities)
	if err != nil {
		failRelease(c, err, "failed to create release")
		return
	}
	httpx.OK(c, rel)
}

// Get 获取release详情
// GET /api/v1/releases/:id
func (h *Handler) Get(c *gin.Context) {
	rel, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRelease(c, err, "failed to get release")
		return
	}
	httpx.OK(c, rel)
}

// Update 更新release标题和实体
// PUT /api/v1/releases/:id
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	rel, err := h.service.Update(c.Request.Context(), &model.Release{
		ID:       c.Param("id"),
		Title:    req.Title,
		Version:  req.Version,
		Entities: req.Entities,
	})
	if err != nil {
		failRelease(c, err, "failed to update release")
		return
	}
	h.syncController(rel)
	httpx.OK(c, rel)
}

// AddEntities 添加实体
// POST /api/v1/releases/:id/entities/add
func (h *Handler) AddEntities(c *gin.Context) {
	h.changeEntities(c, h.service.AddEntities)
}

// RemoveEntities 移除实体
// POST /api/v1/releases/:id/entities/remove
func (h *Handler) RemoveEntities(c *gin.Context) {
	h.changeEntities(c, h.service.RemoveEntities)
}

type entitiesFunc func(ctx context.Context, releaseID string, version int, links []model.EntityLink) (*model.Release, error)

func (h *Handler) changeEntities(c *gin.Context, change entitiesFunc) {
	var req EntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	rel, err := change(c.Request.Context(), c.Param("id"), req.Version, req.Entities)
	if err != nil {
		failRelease(c, err, "failed to update release entities")
		return
	}
	h.syncController(rel)
	httpx.OK(c, rel)
}

// Delete 删除release
// DELETE /api/v1/releases/:id
func (h *Handler) Delete(c *gin.Context) {
	releaseID := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), releaseID); err != nil {
		failRelease(c, err, "failed to delete release")
		return
	}
	h.registry.Forget(releaseID)
	httpx.OK(c, gin.H{"id": releaseID})
}

// State returns the workflow snapshot of a release
// GET /api/v1/releases/:id/state
func (h *Handler) State(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	httpx.OK(c, ctrl.Snapshot())
}

// SetTab 切换实体列表tab
// PUT /api/v1/releases/:id/tab
func (h *Handler) SetTab(c *gin.Context) {
	var req TabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.SetActiveTab(req.Tab); err != nil {
		failRelease(c, err, "")
		return
	}
	httpx.OK(c, ctrl.Snapshot())
}

// Validate 校验release
// POST /api/v1/releases/:id/validate
func (h *Handler) Validate(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	result, err := ctrl.HandleValidation(c.Request.Context())
	if err != nil {
		failRelease(c, err, "Failed validating Release")
		return
	}
	httpx.OK(c, ValidateResponse{Result: result, State: ctrl.Snapshot()})
}

// Publish starts a validate-gated publication. The outcome arrives as a
// release:notification.
// POST /api/v1/releases/:id/publish
func (h *Handler) Publish(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if _, err := ctrl.StartPublication(c.Request.Context()); err != nil {
		failRelease(c, err, "Failed publishing Release")
		return
	}
	httpx.Accepted(c, "publication started", ctrl.Snapshot())
}

// Jobs 查询定时任务
// GET /api/v1/releases/:id/jobs
func (h *Handler) Jobs(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	jobs, err := ctrl.LoadJobs(c.Request.Context())
	if err != nil {
		failRelease(c, err, "failed to load scheduled jobs")
		return
	}
	httpx.OK(c, JobsResponse{Jobs: jobs, PendingJobs: release.PendingJobs(jobs)})
}

// Schedule 创建定时发布/下线任务
// POST /api/v1/releases/:id/jobs
func (h *Handler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("scheduledAt must be RFC3339"))
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	job, err := ctrl.HandleScheduleCreate(c.Request.Context(), scheduledAt, req.Timezone, req.Action)
	if err != nil {
		failRelease(c, err, "Failed to schedule")
		return
	}
	httpx.OK(c, job)
}

// CancelJob 取消定时任务
// POST /api/v1/releases/:id/jobs/:jobId/cancel
func (h *Handler) CancelJob(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	jobID := c.Param("jobId")
	if err := ctrl.HandleScheduleCancel(c.Request.Context(), jobID); err != nil {
		failRelease(c, err, "Failed to cancel schedule")
		return
	}
	httpx.OK(c, gin.H{"jobId": jobID})
}

// Notifications replays stored notifications after lastEventId
// GET /api/v1/releases/:id/notifications
func (h *Handler) Notifications(c *gin.Context) {
	var lastEventID int64
	if v := strings.TrimSpace(c.Query("lastEventId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			httpx.FailErr(c, httpx.ErrParamInvalid("lastEventId must be a non-negative integer"))
			return
		}
		lastEventID = id
	}

	result, err := ws.Replay(c.Request.Context(), h.replay, c.Param("id"), lastEventID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query notifications", err))
		return
	}
	httpx.OK(c, result)
}

// controller loads the workflow controller of :id, writing the error
// response itself when it cannot
func (h *Handler) controller(c *gin.Context) (*release.WorkflowController, bool) {
	ctrl, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRelease(c, err, "failed to load release")
		return nil, false
	}
	return ctrl, true
}

// syncController hands an edited release to its controller, if loaded
func (h *Handler) syncController(rel *model.Release) {
	if ctrl, ok := h.registry.Lookup(rel.ID); ok {
		ctrl.SetRelease(rel)
	}
}
