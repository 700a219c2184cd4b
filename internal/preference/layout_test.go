package preference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

type fakeKV struct {
	data   map[string]string
	getErr error
	setErr error
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func TestLayoutStore(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	s := &LayoutStore{rdb: kv}
	ctx := context.Background()

	got, err := s.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != LayoutList {
		t.Errorf("Expected default %s, got %s", LayoutList, got)
	}

	if err := s.Set(ctx, 7, LayoutCard); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if kv.data["preferences:7:entityListLayout"] != "card" {
		t.Errorf("Unexpected stored data %v", kv.data)
	}

	got, _ = s.Get(ctx, 7)
	if got != LayoutCard {
		t.Errorf("Expected %s, got %s", LayoutCard, got)
	}

	// other users keep the default
	if got, _ := s.Get(ctx, 8); got != LayoutList {
		t.Errorf("Expected default for another user, got %s", got)
	}
}

func TestLayoutStore_RejectsUnknownLayout(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	s := &LayoutStore{rdb: kv}

	if err := s.Set(context.Background(), 1, "grid"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout, got %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("Nothing should be stored")
	}
}

func TestLayoutStore_StaleValueYieldsDefault(t *testing.T) {
	kv := &fakeKV{data: map[string]string{"preferences:1:entityListLayout": "table"}}
	s := &LayoutStore{rdb: kv}

	got, err := s.Get(context.Background(), 1)
	if err != nil || got != DefaultLayout {
		t.Errorf("Get() = %s, %v", got, err)
	}
}

func TestLayoutStore_RedisError(t *testing.T) {
	s := &LayoutStore{rdb: &fakeKV{getErr: errors.New("connection refused")}}
	if _, err := s.Get(context.Background(), 1); err == nil {
		t.Error("Expected error")
	}
}

func TestParseLayout(t *testing.T) {
	for _, s := range []string{"card", "list"} {
		if _, err := ParseLayout(s); err != nil {
			t.Errorf("ParseLayout(%q) failed: %v", s, err)
		}
	}
	for _, s := range []string{"", "Card", "grid"} {
		if _, err := ParseLayout(s); err == nil {
			t.Errorf("ParseLayout(%q) should fail", s)
		}
	}
}
