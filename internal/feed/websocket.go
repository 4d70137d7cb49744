package feed

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/impostorgame/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between websocket pings
	pingPeriod = 30 * time.Second
)

// WebSocketOptions configures the websocket transport
type WebSocketOptions struct {
	OriginPatterns []string
}

// ServeWebSocket streams a room's events to the client over a websocket.
// The feed is one-way: anything the client sends is discarded.
func ServeWebSocket(w http.ResponseWriter, r *http.Request, hubs *HubManager, code model.RoomCode, viewer model.PlayerID, initial []byte, opts WebSocketOptions, logger *slog.Logger) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		logger.Warn("websocket accept failed",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
		return
	}
	defer conn.Close(websocket.StatusGoingAway, "Server closing")

	ctx := conn.CloseRead(r.Context())

	hub, client := hubs.Subscribe(code, viewer, "websocket")
	defer hub.Unregister(client)

	if len(initial) > 0 {
		if err := writeMessage(ctx, conn, initial); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "Feed closed")
				return
			}
			if err := writeMessage(ctx, conn, message.Data); err != nil {
				logger.Debug("websocket write failed",
					slog.String("room_code", string(code)),
					slog.Any("error", err))
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
