package ws

import (
	"context"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/sirupsen/logrus"

	"go_releasehub/internal/model"
)

const (
	// maxIncremental bounds an incremental replay; more than this falls back
	// to the latest notifications.
	maxIncremental = 500
	latestOnReset  = 50
	replayTimeout  = 5 * time.Second
)

// ReplayResult is the payload of release:notifications
type ReplayResult struct {
	ReleaseID   string               `json:"releaseId"`
	Items       []model.Notification `json:"items"`
	Incremental bool                 `json:"incremental"`
	LastEventID int64                `json:"lastEventId"`
}

func (h *Hub) handleJoinRelease(s socketio.Conn, data interface{}) {
	if _, ok := claimsOf(s); !ok {
		s.Emit(EventError, map[string]interface{}{"message": "unauthorized"})
		return
	}

	var releaseID string
	if m, ok := data.(map[string]interface{}); ok {
		releaseID = trimmed(m["releaseId"])
	}
	if releaseID == "" {
		s.Emit(EventError, map[string]interface{}{"message": "releaseId is required"})
		return
	}

	s.Join(ReleaseRoom(releaseID))
	h.logger.WithFields(logrus.Fields{"conn_id": s.ID(), "release_id": releaseID}).Debug("Client joined release room")
}

func (h *Hub) handleRequestNotifications(s socketio.Conn, data interface{}) {
	if _, ok := claimsOf(s); !ok {
		s.Emit(EventError, map[string]interface{}{"message": "unauthorized"})
		return
	}

	var releaseID string
	var lastEventID int64
	if m, ok := data.(map[string]interface{}); ok {
		releaseID = trimmed(m["releaseId"])
		if f, ok := m["lastEventId"].(float64); ok {
			lastEventID = int64(f)
		}
	}
	if releaseID == "" {
		s.Emit(EventError, map[string]interface{}{"message": "releaseId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), replayTimeout)
	defer cancel()

	result, err := Replay(ctx, h.replay, releaseID, lastEventID)
	if err != nil {
		h.logger.WithField("release_id", releaseID).WithError(err).Error("Failed to replay notifications")
		s.Emit(EventError, map[string]interface{}{"message": "Failed to query notifications"})
		return
	}
	s.Emit(EventNotifications, result)
}

// Replay returns what a client that last saw lastEventID missed. Without a
// cursor, or when the gap is too large, it returns the latest notifications.
func Replay(ctx context.Context, r Replayer, releaseID string, lastEventID int64) (*ReplayResult, error) {
	if lastEventID > 0 {
		items, err := r.Since(ctx, releaseID, lastEventID, maxIncremental)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"component":     "ws",
				"release_id":    releaseID,
				"last_event_id": lastEventID,
			}).WithError(err).Warn("Incremental replay failed, sending latest notifications")
		}
		if err == nil && len(items) < maxIncremental {
			last := lastEventID
			if len(items) > 0 {
				last = items[len(items)-1].ID
			}
			return &ReplayResult{ReleaseID: releaseID, Items: items, Incremental: true, LastEventID: last}, nil
		}
	}

	items, err := r.Latest(ctx, releaseID, latestOnReset)
	if err != nil {
		return nil, err
	}
	var last int64
	if len(items) > 0 {
		last = items[len(items)-1].ID
	}
	return &ReplayResult{ReleaseID: releaseID, Items: items, LastEventID: last}, nil
}
