package notify

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go_releasehub/internal/model"
)

// Store persists notifications
type Store interface {
	Save(ctx context.Context, n *model.Notification) error
	Since(ctx context.Context, releaseID string, lastID int64, limit int) ([]model.Notification, error)
	Latest(ctx context.Context, releaseID string, limit int) ([]model.Notification, error)
}

// GormStore keeps notifications in release_notifications
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建通知存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Save inserts n and fills its id
func (s *GormStore) Save(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}

// Since returns notifications with id > lastID in ascending id order
func (s *GormStore) Since(ctx context.Context, releaseID string, lastID int64, limit int) ([]model.Notification, error) {
	var items []model.Notification
	err := s.db.WithContext(ctx).
		Where("release_id = ? AND id > ?", releaseID, lastID).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query incremental notifications: %w", err)
	}
	return items, nil
}

// Latest returns the newest limit notifications in ascending id order
func (s *GormStore) Latest(ctx context.Context, releaseID string, limit int) ([]model.Notification, error) {
	var items []model.Notification
	err := s.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query latest notifications: %w", err)
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}
