package preferences

import (
	"context"
	"errors"

	"go_releasehub/internal/httpx"
	"go_releasehub/internal/preference"

	"github.com/gin-gonic/gin"
)

// LayoutStore reads and writes the entity list layout of a user
type LayoutStore interface {
	Get(ctx context.Context, uid int) (preference.Layout, error)
	Set(ctx context.Context, uid int, layout preference.Layout) error
}

// Handler 用户偏好API处理器
type Handler struct {
	layouts LayoutStore
}

// NewHandler 创建偏好API处理器
func NewHandler(layouts LayoutStore) *Handler {
	return &Handler{layouts: layouts}
}

// LayoutRequest 设置布局请求
type LayoutRequest struct {
	Layout string `json:"layout" binding:"required"`
}

// LayoutResponse 布局响应
type LayoutResponse struct {
	Layout preference.Layout `json:"layout"`
}

// GetLayout returns the caller's entity list layout
// GET /api/v1/preferences/layout
func (h *Handler) GetLayout(c *gin.Context) {
	layout, err := h.layouts.Get(c.Request.Context(), c.GetInt("uid"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to read preference", err))
		return
	}
	httpx.OK(c, LayoutResponse{Layout: layout})
}

// SetLayout stores the caller's entity list layout
// PUT /api/v1/preferences/layout
func (h *Handler) SetLayout(c *gin.Context) {
	var req LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	layout, err := preference.ParseLayout(req.Layout)
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if err := h.layouts.Set(c.Request.Context(), c.GetInt("uid"), layout); err != nil {
		if errors.Is(err, preference.ErrInvalidLayout) {
			httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
			return
		}
		httpx.FailErr(c, httpx.ErrInternalError("failed to store preference", err))
		return
	}
	httpx.OK(c, LayoutResponse{Layout: layout})
}
