package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mcoot/impostorgame/internal/api/response"
	"github.com/mcoot/impostorgame/internal/model"
)

// SnapshotEvent is the event name of the state sent when a subscriber connects
const SnapshotEvent = "snapshot"

// Broadcaster delivers room events to the subscribers connected to this node
type Broadcaster struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubs *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "feed-broadcaster")),
	}
}

// Publish encodes the event's public snapshot and fans it out locally
func (b *Broadcaster) Publish(_ context.Context, event model.Event) {
	payload, err := EncodeEvent(event)
	if err != nil {
		b.logger.Error("feed failed to encode event",
			slog.String("room_code", string(event.RoomCode)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}
	b.Deliver(event.RoomCode, string(event.Type), payload)
}

// Deliver fans an encoded event out to the room's subscribers, if any
func (b *Broadcaster) Deliver(code model.RoomCode, eventType string, payload []byte) {
	hub := b.hubs.GetHub(code)
	if hub == nil {
		return
	}
	hub.Broadcast(Message{Event: eventType, Data: payload})
}

// EncodeEvent renders an event as its JSON wire form
func EncodeEvent(event model.Event) ([]byte, error) {
	return json.Marshal(response.EventFromModel(event))
}

// EncodeSnapshot renders a viewer's snapshot as a snapshot event
func EncodeSnapshot(snap model.RoomSnapshot, at time.Time) ([]byte, error) {
	return json.Marshal(response.Event{
		Type:      SnapshotEvent,
		Timestamp: at,
		RoomCode:  string(snap.Code),
		Room:      response.RoomFromSnapshot(snap),
	})
}
