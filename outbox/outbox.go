package outbox

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medisys-health/diagnostics/notifications"
)

const CollectionName = "outbox"

// EventType identifies the kind of event
type EventType string

const (
	EventTypeNewReport EventType = "newReport"
)

// Event is the common envelope for all outbox events. An event is visible to
// consumers once VisibleTime has passed, receiving it leases it for the
// visibility timeout and rotates the receipt handle.
type Event struct {
	Id            *primitive.ObjectID `bson:"_id,omitempty"`
	EventType     EventType           `bson:"eventType"`
	CreatedTime   time.Time           `bson:"createdTime"`
	VisibleTime   time.Time           `bson:"visibleTime"`
	ReceiptHandle string              `bson:"receiptHandle,omitempty"`
	ReceiveCount  int                 `bson:"receiveCount"`
	Attributes    map[string]string   `bson:"attributes,omitempty"`
	Payload       bson.Raw            `bson:"payload"`
}

// NewEvent creates an Event from a typed payload
func NewEvent(eventType EventType, payload interface{}, attributes map[string]string, now time.Time) (Event, error) {
	raw, err := bson.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("error marshaling outbox event payload: %w", err)
	}

	return Event{
		EventType:   eventType,
		CreatedTime: now,
		VisibleTime: now,
		Attributes:  attributes,
		Payload:     bson.Raw(raw),
	}, nil
}

// Notification converts a received event to a notification
func (e Event) Notification() (notifications.Notification, error) {
	notification := notifications.Notification{
		ReceiptHandle:     e.ReceiptHandle,
		MessageAttributes: e.Attributes,
	}
	if e.Id != nil {
		notification.Id = e.Id.Hex()
	}
	if notification.MessageAttributes == nil {
		notification.MessageAttributes = map[string]string{}
	}
	if err := bson.Unmarshal(e.Payload, &notification.Payload); err != nil {
		return notification, fmt.Errorf("error unmarshaling outbox event payload: %w", err)
	}
	notification.Payload.Timestamp = notification.Payload.Timestamp.UTC()
	notification.Payload.CreatedAt = notification.Payload.CreatedAt.UTC()
	return notification, nil
}
