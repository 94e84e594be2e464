package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vehicle-permit/internal/core/events"
)

// Message is the frame pushed to websocket clients.
type Message struct {
	Type      string      `json:"type"`
	EventID   string      `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventHandler relays permit events to the hub.
type EventHandler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewEventHandler(hub *Hub, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{hub: hub, logger: logger}
}

func (h *EventHandler) Relay(ctx context.Context, event events.Event) error {
	frame, err := json.Marshal(Message{
		Type:      event.EventType(),
		EventID:   event.EventID(),
		Timestamp: event.OccurredAt(),
		Data:      event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", event.EventType(), err)
	}
	h.hub.Broadcast(frame)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePermitCreated, h.Relay)
	eventBus.Subscribe(events.EventTypePermitDecided, h.Relay)

	h.logger.Info("realtime event handlers registered",
		"handlers", []string{events.EventTypePermitCreated, events.EventTypePermitDecided})
}
