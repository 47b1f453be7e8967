package models

import (
	"time"
)

// Event types emitted by the gateway, one per mutating operation.
const (
	EventJobRequested   = "job_requested"
	EventJobCompleted   = "job_completed"
	EventJobFailed      = "job_failed"
	EventNodeAuthorized = "node_authorized"
	EventNodeRevoked    = "node_revoked"
	EventMinFeeUpdated  = "min_fee_updated"
	EventFeesWithdrawn  = "fees_withdrawn"
)

// Event is one entry in the append-only gateway event log. Events are written
// in the same transaction as the state change they describe, so the log never
// mentions a mutation that did not commit. Sequence order is insertion order.
type Event struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      string    `gorm:"not null;type:varchar(50);index" json:"type"`
	JobID     *uint64   `gorm:"index" json:"job_id,omitempty"`
	Payload   string    `gorm:"type:jsonb" json:"payload"` // JSON object, fields per event type
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Event) TableName() string {
	return "events"
}
