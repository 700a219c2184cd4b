package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Layout is how a user prefers the release entity list to be rendered
type Layout string

const (
	LayoutCard Layout = "card"
	LayoutList Layout = "list"

	DefaultLayout = LayoutList
)

// ErrInvalidLayout is returned for a layout other than card or list
var ErrInvalidLayout = errors.New("layout must be card or list")

// ParseLayout validates a client supplied layout
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutCard, LayoutList:
		return Layout(s), nil
	}
	return "", fmt.Errorf("%w, got %q", ErrInvalidLayout, s)
}

// kv is the subset of redis.Cmdable the store uses
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// LayoutStore keeps one layout preference per user in Redis. Preferences
// never expire.
type LayoutStore struct {
	rdb kv
}

// NewLayoutStore 创建布局偏好存储
func NewLayoutStore(rdb redis.Cmdable) *LayoutStore {
	return &LayoutStore{rdb: rdb}
}

func layoutKey(uid int) string {
	return fmt.Sprintf("preferences:%d:entityListLayout", uid)
}

// Get returns the user's layout, DefaultLayout when unset. A stored value
// that is no longer valid also yields the default.
func (s *LayoutStore) Get(ctx context.Context, uid int) (Layout, error) {
	val, err := s.rdb.Get(ctx, layoutKey(uid)).Result()
	if err == redis.Nil {
		return DefaultLayout, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get layout preference: %w", err)
	}
	layout, err := ParseLayout(val)
	if err != nil {
		return DefaultLayout, nil
	}
	return layout, nil
}

// Set stores the user's layout
func (s *LayoutStore) Set(ctx context.Context, uid int, layout Layout) error {
	if _, err := ParseLayout(string(layout)); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, layoutKey(uid), string(layout), 0).Err(); err != nil {
		return fmt.Errorf("failed to store layout preference: %w", err)
	}
	return nil
}
