package notify

import (
	"context"
	"errors"
	"testing"

	"go_releasehub/internal/model"
	"go_releasehub/internal/ws"
)

type memStore struct {
	items   []model.Notification
	saveErr error
	limits  []int
}

func (m *memStore) Save(ctx context.Context, n *model.Notification) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	n.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *n)
	return nil
}

func (m *memStore) Since(ctx context.Context, releaseID string, lastID int64, limit int) ([]model.Notification, error) {
	m.limits = append(m.limits, limit)
	var out []model.Notification
	for _, n := range m.items {
		if n.ReleaseID == releaseID && n.ID > lastID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) Latest(ctx context.Context, releaseID string, limit int) ([]model.Notification, error) {
	m.limits = append(m.limits, limit)
	return m.Since(ctx, releaseID, 0, limit)
}

type broadcast struct {
	room  string
	event string
	data  interface{}
}

type fakeHub struct {
	room []broadcast
	all  []broadcast
}

func (h *fakeHub) BroadcastToRoom(room, event string, data interface{}) bool {
	h.room = append(h.room, broadcast{room, event, data})
	return true
}

func (h *fakeHub) BroadcastToAll(event string, data interface{}) bool {
	h.all = append(h.all, broadcast{"", event, data})
	return true
}

func TestNotify_PersistsThenBroadcasts(t *testing.T) {
	store := &memStore{}
	hub := &fakeHub{}
	p := NewPublisher(store, hub, nil)

	err := p.Notify(context.Background(), model.Notification{
		ReleaseID: "rel-1",
		Level:     model.NotificationSuccess,
		Message:   "Release was published successfully",
	})
	if err != nil {
		t.Fatalf("Notify() failed: %v", err)
	}

	if len(store.items) != 1 {
		t.Fatalf("Expected 1 stored notification, got %d", len(store.items))
	}
	if len(hub.room) != 1 {
		t.Fatalf("Expected 1 room broadcast, got %d", len(hub.room))
	}
	b := hub.room[0]
	if b.room != ws.ReleaseRoom("rel-1") || b.event != ws.EventNotification {
		t.Errorf("Unexpected broadcast %s/%s", b.room, b.event)
	}
	if n, ok := b.data.(model.Notification); !ok || n.ID != 1 {
		t.Errorf("Broadcast should carry the stored id, got %+v", b.data)
	}
	if len(hub.all) != 1 {
		t.Errorf("Expected namespace summary broadcast")
	}
}

func TestNotify_StoreFailureSkipsBroadcast(t *testing.T) {
	store := &memStore{saveErr: errors.New("db down")}
	hub := &fakeHub{}
	p := NewPublisher(store, hub, nil)

	if err := p.Notify(context.Background(), model.Notification{ReleaseID: "rel-1", Message: "x"}); err == nil {
		t.Fatal("Expected error")
	}
	if len(hub.room) != 0 {
		t.Error("Nothing should be broadcast for an unsaved notification")
	}
}

func TestNotify_RequiresRelease(t *testing.T) {
	p := NewPublisher(&memStore{}, nil, nil)
	if err := p.Notify(context.Background(), model.Notification{Message: "x"}); err == nil {
		t.Error("Expected error")
	}
}

func TestNotify_CanceledContextStillStored(t *testing.T) {
	store := &memStore{}
	p := NewPublisher(store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Notify(ctx, model.Notification{ReleaseID: "rel-1", Message: "x"}); err != nil {
		t.Fatalf("Notify() failed: %v", err)
	}
	if len(store.items) != 1 {
		t.Error("Expected notification to be stored")
	}
}

func TestSince(t *testing.T) {
	store := &memStore{}
	p := NewPublisher(store, nil, nil)
	for _, id := range []string{"rel-1", "rel-2", "rel-1"} {
		p.Notify(context.Background(), model.Notification{ReleaseID: id, Message: "x"})
	}

	items, err := p.Since(context.Background(), "rel-1", 1, 0)
	if err != nil {
		t.Fatalf("Since() failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Errorf("Since() = %+v", items)
	}
	if store.limits[0] != 500 {
		t.Errorf("Expected default limit 500, got %d", store.limits[0])
	}
}
