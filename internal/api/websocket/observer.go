package websocket

import "github.com/ramonehamilton/rifty/internal/events"

// Observer forwards dispatched events to every websocket client.
type Observer struct {
	hub *Hub
}

// NewObserver creates an observer broadcasting through hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

// OnEvent broadcasts the event. A stopped hub drops it silently.
func (o *Observer) OnEvent(event events.Event) error {
	o.hub.BroadcastEvent(Event{Type: event.Type, Data: event.Data})
	return nil
}

// Name returns the observer's name.
func (o *Observer) Name() string { return "websocket" }

// ShouldHandle accepts every event type.
func (o *Observer) ShouldHandle(string) bool { return true }

var _ events.Observer = (*Observer)(nil)
