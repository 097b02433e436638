// Package events publishes the portal's domain events so downstream
// consumers (reporting, the scoring pipeline) can react to assignment and
// outreach activity.
package events

import (
	"context"
	"time"
)

type EventType string

const (
	CustomerAssigned   EventType = "customer.assigned"
	CustomerUnassigned EventType = "customer.unassigned"
	CallLogCreated     EventType = "calllog.created"
	CustomersImported  EventType = "customers.imported"
)

// Event is the envelope every published message wears.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    uint        `json:"actor_id"`
	Payload    interface{} `json:"payload"`
}

type AssignmentPayload struct {
	CustomerIDs []uint `json:"customer_ids"`
	SalesID     *uint  `json:"sales_id"`
	Affected    int64  `json:"affected"`
}

type CallLogPayload struct {
	CallLogID  uint   `json:"call_log_id"`
	CustomerID uint   `json:"customer_id"`
	Status     string `json:"status"`
}

type ImportPayload struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// EventPublisher is implemented by the Kafka publisher and by the in-memory
// mock the tests use. Publish failures are logged by callers, never allowed
// to fail the request that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
