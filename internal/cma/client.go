package cma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"go_releasehub/internal/config"
	"go_releasehub/internal/model"
)

const contentType = "application/vnd.contentful.management.v1+json"

// Client Content Management API客户端
type Client struct {
	baseURL       string
	token         string
	spaceID       string
	environmentID string
	httpClient    *http.Client
}

// Option customises client instantiation
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient 创建CMA客户端
func NewClient(cfg config.CMAConfig, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("cma base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid cma base url: %w", err)
	}
	if cfg.SpaceID == "" {
		return nil, fmt.Errorf("cma space id is required")
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:       strings.TrimRight(base, "/"),
		token:         cfg.Token,
		spaceID:       cfg.SpaceID,
		environmentID: cfg.EnvironmentID,
		httpClient:    &http.Client{Timeout: timeout},
	}
	if c.environmentID == "" {
		c.environmentID = "master"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EnvironmentID returns the environment all release calls are scoped to
func (c *Client) EnvironmentID() string {
	return c.environmentID
}

func (c *Client) spacePath(format string, args ...interface{}) string {
	return "/spaces/" + url.PathEscape(c.spaceID) + fmt.Sprintf(format, args...)
}

func (c *Client) envPath(format string, args ...interface{}) string {
	return c.spacePath("/environments/%s", url.PathEscape(c.environmentID)) + fmt.Sprintf(format, args...)
}

// do 发送请求并解析响应；非2xx响应返回*APIError
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, v interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}

	if v == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func versionHeader(version int) map[string]string {
	return map[string]string{"X-Contentful-Version": strconv.Itoa(version)}
}

// CreateRelease 创建release
func (c *Client) CreateRelease(ctx context.Context, title string, entities []model.EntityLink) (*model.Release, error) {
	var res releaseResource
	if err := c.do(ctx, http.MethodPost, c.envPath("/releases"), nil, toReleasePayload(title, entities), &res); err != nil {
		return nil, err
	}
	return toRelease(&res), nil
}

// GetRelease 获取单个release
func (c *Client) GetRelease(ctx context.Context, releaseID string) (*model.Release, error) {
	var res releaseResource
	if err := c.do(ctx, http.MethodGet, c.envPath("/releases/%s", url.PathEscape(releaseID)), nil, nil, &res); err != nil {
		return nil, err
	}
	return toRelease(&res), nil
}

// GetReleases 分页获取release列表
func (c *Client) GetReleases(ctx context.Context, limit, skip int) ([]model.Release, int, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	q.Set("order", "-sys.updatedAt")

	var res releaseCollection
	if err := c.do(ctx, http.MethodGet, c.envPath("/releases?%s", q.Encode()), nil, nil, &res); err != nil {
		return nil, 0, err
	}

	releases := make([]model.Release, 0, len(res.Items))
	for i := range res.Items {
		releases = append(releases, *toRelease(&res.Items[i]))
	}
	return releases, res.Total, nil
}

// UpdateRelease 替换release（标题与实体列表），使用版本号做乐观并发控制
func (c *Client) UpdateRelease(ctx context.Context, release *model.Release) (*model.Release, error) {
	var res releaseResource
	path := c.envPath("/releases/%s", url.PathEscape(release.ID))
	if err := c.do(ctx, http.MethodPut, path, versionHeader(release.Version), toReleasePayload(release.Title, release.Entities), &res); err != nil {
		return nil, err
	}
	return toRelease(&res), nil
}

// DeleteRelease 删除release
func (c *Client) DeleteRelease(ctx context.Context, releaseID string) error {
	return c.do(ctx, http.MethodDelete, c.envPath("/releases/%s", url.PathEscape(releaseID)), nil, nil, nil)
}

// PublishRelease 发布release，返回异步动作
func (c *Client) PublishRelease(ctx context.Context, releaseID string, version int) (*model.ReleaseAction, error) {
	var res releaseActionResource
	path := c.envPath("/releases/%s/published", url.PathEscape(releaseID))
	if err := c.do(ctx, http.MethodPut, path, versionHeader(version), nil, &res); err != nil {
		return nil, err
	}
	return toReleaseAction(&res, releaseID), nil
}

// ValidateRelease 校验release；action为空时按publish校验
func (c *Client) ValidateRelease(ctx context.Context, releaseID string, action model.ActionType) ([]model.EntityError, error) {
	if action == "" {
		action = model.ActionTypePublish
	}
	body := map[string]string{"action": string(action)}

	var res validationResult
	path := c.envPath("/releases/%s/validate", url.PathEscape(releaseID))
	if err := c.do(ctx, http.MethodPost, path, nil, body, &res); err != nil {
		return nil, err
	}
	return toEntityErrors(res.Errored), nil
}

// GetReleaseAction 查询发布动作状态
func (c *Client) GetReleaseAction(ctx context.Context, releaseID, actionID string) (*model.ReleaseAction, error) {
	var res releaseActionResource
	path := c.envPath("/releases/%s/actions/%s", url.PathEscape(releaseID), url.PathEscape(actionID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return toReleaseAction(&res, releaseID), nil
}

// GetEntityStates 查询实体的发布状态（条目与资源分别查询）
func (c *Client) GetEntityStates(ctx context.Context, links []model.EntityLink) ([]model.EntityState, error) {
	ids := map[model.LinkType][]string{}
	for _, l := range links {
		ids[l.LinkType] = append(ids[l.LinkType], l.ID)
	}

	statuses := map[model.EntityLink]model.EntityStatus{}
	for _, linkType := range []model.LinkType{model.LinkTypeEntry, model.LinkTypeAsset} {
		if len(ids[linkType]) == 0 {
			continue
		}
		collection := "/entries"
		if linkType == model.LinkTypeAsset {
			collection = "/assets"
		}
		q := url.Values{}
		q.Set("sys.id[in]", strings.Join(ids[linkType], ","))
		q.Set("limit", strconv.Itoa(len(ids[linkType])))

		var res entityCollection
		if err := c.do(ctx, http.MethodGet, c.envPath("%s?%s", collection, q.Encode()), nil, nil, &res); err != nil {
			return nil, err
		}
		for _, item := range res.Items {
			statuses[model.EntityLink{ID: item.Sys.ID, LinkType: linkType}] = entityStatus(item.Sys)
		}
	}

	states := make([]model.EntityState, 0, len(links))
	for _, l := range links {
		status, ok := statuses[l]
		if !ok {
			// 实体已被删除或不可见，按草稿处理
			status = model.EntityStatusDraft
		}
		states = append(states, model.EntityState{Link: l, Status: status})
	}
	return states, nil
}

// GetScheduledJobs 获取release的未取消定时任务（限定当前环境）
func (c *Client) GetScheduledJobs(ctx context.Context, releaseID string) ([]model.ScheduledJob, error) {
	q := url.Values{}
	q.Set("entity.sys.id", releaseID)
	q.Set("environment.sys.id", c.environmentID)
	q.Set("sys.status[ne]", string(model.JobStatusCanceled))
	q.Set("order", "scheduledFor.datetime")

	var res scheduledActionCollection
	if err := c.do(ctx, http.MethodGet, c.spacePath("/scheduled_actions?%s", q.Encode()), nil, nil, &res); err != nil {
		return nil, err
	}

	jobs := make([]model.ScheduledJob, 0, len(res.Items))
	for i := range res.Items {
		job, err := toScheduledJob(&res.Items[i])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// CreateScheduledJob 创建定时任务
func (c *Client) CreateScheduledJob(ctx context.Context, params model.ScheduleParams) (*model.ScheduledJob, error) {
	var body scheduledActionResource
	body.Entity = newLink("Release", params.ReleaseID)
	body.Environment = newLink("Environment", c.environmentID)
	body.Action = string(params.Action)
	body.ScheduledFor.Datetime = params.ScheduledAt.UTC().Format(time.RFC3339)
	body.ScheduledFor.Timezone = params.Timezone

	var res scheduledActionResource
	if err := c.do(ctx, http.MethodPost, c.spacePath("/scheduled_actions"), nil, &body, &res); err != nil {
		return nil, err
	}
	return toScheduledJob(&res)
}

// CancelScheduledJob 取消定时任务
func (c *Client) CancelScheduledJob(ctx context.Context, jobID string) (*model.ScheduledJob, error) {
	q := url.Values{}
	q.Set("environment.sys.id", c.environmentID)

	var res scheduledActionResource
	path := c.spacePath("/scheduled_actions/%s?%s", url.PathEscape(jobID), q.Encode())
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return toScheduledJob(&res)
}
