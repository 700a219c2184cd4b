package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"go_releasehub/internal/model"
	"go_releasehub/internal/ws"
)

// Broadcaster pushes events to connected clients
type Broadcaster interface {
	BroadcastToRoom(room, event string, data interface{}) bool
	BroadcastToAll(event string, data interface{}) bool
}

// Publisher writes a notification to the store, then broadcasts it to the
// release room. A broadcast never fails the caller: clients that missed it
// replay from the store.
type Publisher struct {
	store  Store
	hub    Broadcaster
	logger *logrus.Entry
}

// NewPublisher 创建通知发布器
func NewPublisher(store Store, hub Broadcaster, logger *logrus.Entry) *Publisher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Publisher{
		store:  store,
		hub:    hub,
		logger: logger.WithField("component", "notify"),
	}
}

// Notify stores and broadcasts n
func (p *Publisher) Notify(ctx context.Context, n model.Notification) error {
	if n.ReleaseID == "" {
		return fmt.Errorf("notification without release id")
	}

	// the write outlives a canceled request so the replay log stays complete
	if err := p.store.Save(context.WithoutCancel(ctx), &n); err != nil {
		return err
	}

	log := p.logger.WithFields(logrus.Fields{
		"event_id":   n.ID,
		"release_id": n.ReleaseID,
		"level":      n.Level,
	})

	if p.hub != nil {
		p.hub.BroadcastToRoom(ws.ReleaseRoom(n.ReleaseID), ws.EventNotification, n)
		// the namespace-wide copy drives release list badges
		p.hub.BroadcastToAll(ws.EventNotification, summary(n))
	}
	log.Debug(n.Message)
	return nil
}

// Since replays notifications of a release after lastID
func (p *Publisher) Since(ctx context.Context, releaseID string, lastID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	return p.store.Since(ctx, releaseID, lastID, limit)
}

// Latest returns the newest notifications of a release
func (p *Publisher) Latest(ctx context.Context, releaseID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return p.store.Latest(ctx, releaseID, limit)
}

func summary(n model.Notification) map[string]interface{} {
	return map[string]interface{}{
		"eventId":   n.ID,
		"releaseId": n.ReleaseID,
		"level":     n.Level,
		"message":   n.Message,
	}
}
