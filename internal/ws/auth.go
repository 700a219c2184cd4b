package ws

import (
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"github.com/sirupsen/logrus"

	"go_releasehub/internal/auth"
)

// extractToken returns the handshake token.
// Priority: 1. token query parameter, 2. Authorization header
func extractToken(r *http.Request) string {
	// io(url, { query: { token } }) ends up as ?token=xxx on the handshake
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return ""
	}
	return token
}

// wrapWithAuth rejects Socket.IO handshakes without a valid token
func (h *Hub) wrapWithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// only the opening request of a session carries no sid
		if r.URL.Query().Get("sid") == "" {
			token := extractToken(r)
			if token == "" {
				h.logger.WithField("remote", r.RemoteAddr).Warn("Handshake rejected: no token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := h.tokens.ParseToken(token)
			if err != nil {
				h.logger.WithField("remote", r.RemoteAddr).WithError(err).Warn("Handshake rejected: invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			h.logger.WithFields(logrus.Fields{"uid": claims.UID, "username": claims.Username}).Debug("Handshake accepted")
		}
		next.ServeHTTP(w, r)
	})
}

// onConnect stores the caller's claims on the connection
func (h *Hub) onConnect(s socketio.Conn) error {
	u := s.URL()
	r := &http.Request{URL: &u, Header: s.RemoteHeader()}

	claims, err := h.tokens.ParseToken(extractToken(r))
	if err != nil {
		h.logger.WithField("conn_id", s.ID()).WithError(err).Warn("Connection without valid token")
		return err
	}
	s.SetContext(claims)
	s.Emit(EventConnected, map[string]interface{}{"ok": true})
	h.logger.WithFields(logrus.Fields{"conn_id": s.ID(), "uid": claims.UID}).Debug("Client connected")
	return nil
}

// claimsOf returns the claims stored on connect
func claimsOf(s socketio.Conn) (*auth.Claims, bool) {
	claims, ok := s.Context().(*auth.Claims)
	return claims, ok && claims != nil
}

func trimmed(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
