package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/impostorgame/internal/model"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

// ViewerHeader carries the id of the player making the request
const ViewerHeader = "X-Player-ID"

// Viewer records who is asking so snapshots can be projected for them.
// Requests without an id are treated as anonymous spectators.
func Viewer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := extractViewer(r); id != "" {
				r = r.WithContext(context.WithValue(r.Context(), viewerContextKey, model.PlayerID(id)))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractViewer reads the player id from the header, falling back to the query string.
// EventSource and browser websockets cannot set headers.
func extractViewer(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ViewerHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("player_id"))
}

// GetViewer returns the requesting player's id, or "" for anonymous requests
func GetViewer(ctx context.Context) model.PlayerID {
	viewer, _ := ctx.Value(viewerContextKey).(model.PlayerID)
	return viewer
}
