package release

import (
	"context"
	"fmt"
	"strings"

	"go_releasehub/internal/model"
)

// Service release增删改查，写入前统一去重实体链接
type Service struct {
	api ReleasesAPI
}

// NewService 创建release服务
func NewService(api ReleasesAPI) *Service {
	return &Service{api: api}
}

// ListReleasesRequest 列表查询请求
type ListReleasesRequest struct {
	Page     int `form:"page"`     // 页码，默认1
	PageSize int `form:"pageSize"` // 每页数量，默认20，最大100
}

// ListReleasesResponse 列表查询响应
type ListReleasesResponse struct {
	Items    []model.Release `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// Create creates a release with de-duplicated entity links
func (s *Service) Create(ctx context.Context, title string, links []model.EntityLink) (*model.Release, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidParams)
	}
	if err := ValidateLinks(links); err != nil {
		return nil, err
	}
	return s.api.CreateRelease(ctx, title, DedupeLinks(links))
}

// Get 获取release
func (s *Service) Get(ctx context.Context, releaseID string) (*model.Release, error) {
	return s.api.GetRelease(ctx, releaseID)
}

// List 分页查询release列表
func (s *Service) List(ctx context.Context, req *ListReleasesRequest) (*ListReleasesResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	items, total, err := s.api.GetReleases(ctx, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListReleasesResponse{
		Items:    items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// Update replaces title and entities. release.Version must be the version
// the caller last saw; a stale version surfaces as a version conflict.
func (s *Service) Update(ctx context.Context, release *model.Release) (*model.Release, error) {
	release.Title = strings.TrimSpace(release.Title)
	if release.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidParams)
	}
	if err := ValidateLinks(release.Entities); err != nil {
		return nil, err
	}

	payload := *release
	payload.Entities = DedupeLinks(release.Entities)
	return s.api.UpdateRelease(ctx, &payload)
}

// AddEntities appends links to the release, skipping ones already present
func (s *Service) AddEntities(ctx context.Context, releaseID string, version int, links []model.EntityLink) (*model.Release, error) {
	if err := ValidateLinks(links); err != nil {
		return nil, err
	}
	current, err := s.api.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	current.Version = version
	current.Entities = append(current.Entities, links...)
	return s.Update(ctx, current)
}

// RemoveEntities drops links from the release
func (s *Service) RemoveEntities(ctx context.Context, releaseID string, version int, links []model.EntityLink) (*model.Release, error) {
	current, err := s.api.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	current.Version = version
	current.Entities = removeLinks(current.Entities, links)
	return s.Update(ctx, current)
}

// Delete 删除release
func (s *Service) Delete(ctx context.Context, releaseID string) error {
	return s.api.DeleteRelease(ctx, releaseID)
}
