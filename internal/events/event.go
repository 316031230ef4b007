package events

import (
	"context"
	"time"

	"gearlog/internal/pkg/requestid"

	"github.com/google/uuid"
)

const (
	EventTypeEquipmentCreated = "equipment.created"
	EventTypeEquipmentUpdated = "equipment.updated"
	EventTypeEquipmentDeleted = "equipment.deleted"

	EventTypeRetailerLinkCreated = "retailer_link.created"
	EventTypeRetailerLinkUpdated = "retailer_link.updated"
	EventTypeRetailerLinkDeleted = "retailer_link.deleted"

	eventVersion = "1.0.0"
)

// Event is a change notification delivered to the owner of the record.
type Event struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	EventVersion  string `json:"event_version"`
	Timestamp     string `json:"timestamp"`
	OwnerID       int64  `json:"owner_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Payload       any    `json:"payload"`
}

// New builds an event for ownerID. The request id in ctx, if any, becomes
// the correlation id.
func New(ctx context.Context, eventType string, ownerID int64, payload any) Event {
	return Event{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		OwnerID:       ownerID,
		CorrelationID: requestid.FromContext(ctx),
		Payload:       payload,
	}
}
