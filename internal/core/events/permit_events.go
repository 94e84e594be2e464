package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermitCreated = "permit.created"
	EventTypePermitDecided = "permit.decided"
)

type PermitCreatedEvent struct {
	BaseEvent
	PermitID      int64  `json:"permit_id"`
	NIK           string `json:"nik"`
	RequesterName string `json:"requester_name"`
	DepartureDate string `json:"departure_date"`
}

func NewPermitCreatedEvent(permitID int64, nik, requesterName, departureDate string) *PermitCreatedEvent {
	return &PermitCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermitCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"permit_id":      permitID,
				"nik":            nik,
				"requester_name": requesterName,
				"departure_date": departureDate,
			},
		},
		PermitID:      permitID,
		NIK:           nik,
		RequesterName: requesterName,
		DepartureDate: departureDate,
	}
}

// PermitDecidedEvent is raised once a pending request has been approved or rejected.
type PermitDecidedEvent struct {
	BaseEvent
	PermitID     int64  `json:"permit_id"`
	NIK          string `json:"nik"`
	Status       string `json:"status"`
	DecidedBy    int64  `json:"decided_by"`
	ApprovalDate string `json:"approval_date"`
	ApprovalTime string `json:"approval_time"`
}

func NewPermitDecidedEvent(permitID int64, nik, status string, decidedBy int64, approvalDate, approvalTime string) *PermitDecidedEvent {
	return &PermitDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermitDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"permit_id":     permitID,
				"nik":           nik,
				"status":        status,
				"decided_by":    decidedBy,
				"approval_date": approvalDate,
				"approval_time": approvalTime,
			},
		},
		PermitID:     permitID,
		NIK:          nik,
		Status:       status,
		DecidedBy:    decidedBy,
		ApprovalDate: approvalDate,
		ApprovalTime: approvalTime,
	}
}
