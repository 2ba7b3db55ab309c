package websocket

import (
	"net/http"

	"github.com/dukerupert/dayboard/internal/auth"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades an authenticated request and streams the caller's
// events until the connection closes.
func HandleWebSocket(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "user_id", userID, "error", err)
			return
		}

		NewClient(hub, conn, userID).Run(r.Context())
	}
}
