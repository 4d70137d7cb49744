package feed

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/impostorgame/internal/model"
)

// Time between keepalive comments
const keepalivePeriod = 15 * time.Second

// ServeSSE streams a room's events to the client as server-sent events.
// initial, if non-empty, is written as a "snapshot" event before any broadcast.
func ServeSSE(w http.ResponseWriter, r *http.Request, hubs *HubManager, code model.RoomCode, viewer model.PlayerID, initial []byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	hub, client := hubs.Subscribe(code, viewer, "sse")
	defer hub.Unregister(client)

	if len(initial) > 0 {
		_, _ = w.Write(formatSSEMessage(SnapshotEvent, string(initial)))
	} else {
		_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	}
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage(message.Event, string(message.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of multi-line data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, dropping carriage returns and a trailing newline
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
