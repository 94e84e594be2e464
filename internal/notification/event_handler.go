package notification

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	permitDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/permit"
	"github.com/frahmantamala/vehicle-permit/internal/core/events"
	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
)

// Queue accepts push jobs without blocking.
type Queue interface {
	Enqueue(job pushgateway.Job) error
}

// EventHandler turns permit decisions into queued pushes for the requester.
type EventHandler struct {
	users  UserDirectory
	queue  Queue
	logger *slog.Logger
}

func NewEventHandler(users UserDirectory, queue Queue, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		users:  users,
		queue:  queue,
		logger: logger,
	}
}

func (h *EventHandler) HandlePermitDecided(ctx context.Context, event events.Event) error {
	decided, ok := event.(*events.PermitDecidedEvent)
	if !ok {
		return fmt.Errorf("expected PermitDecidedEvent, got %T", event)
	}

	requester, err := h.users.GetByNIK(ctx, decided.NIK)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			h.logger.Info("no account for requester, skipping push",
				"permit_id", decided.PermitID,
				"nik", decided.NIK)
			return nil
		}
		return fmt.Errorf("lookup requester %s: %w", decided.NIK, err)
	}

	job := DecisionJob(requester.ID, decided)
	if err := h.queue.Enqueue(job); err != nil {
		h.logger.Warn("push dropped",
			"permit_id", decided.PermitID,
			"user_id", requester.ID,
			"reason", err)
		return nil
	}

	h.logger.Debug("decision push queued",
		"permit_id", decided.PermitID,
		"user_id", requester.ID,
		"event_id", decided.EventID())
	return nil
}

// DecisionJob builds the push telling a requester their permit was decided.
func DecisionJob(userID int64, e *events.PermitDecidedEvent) pushgateway.Job {
	verb := "rejected"
	if e.Status == string(permitDatamodel.StatusApproved) {
		verb = "approved"
	}
	return pushgateway.Job{
		UserID: userID,
		Title:  "Vehicle permit " + verb,
		Body: fmt.Sprintf("Your vehicle permit request #%d was %s on %s at %s.",
			e.PermitID, verb, e.ApprovalDate, e.ApprovalTime),
		Data: map[string]string{
			"permit_id": strconv.FormatInt(e.PermitID, 10),
			"status":    e.Status,
		},
	}
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePermitDecided, h.HandlePermitDecided)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypePermitDecided})
}
