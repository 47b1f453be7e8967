package gateway

import (
	"encoding/json"
	"time"

	"tengen/gateway/internal/models"

	"gorm.io/gorm"
)

// Emitter receives committed gateway events for live observers. The event log
// table is the durable record; the emitter is best-effort fan-out on top.
type Emitter interface {
	Emit(eventType string, payload interface{})
}

// JobRequestedEvent is emitted once per accepted job submission.
type JobRequestedEvent struct {
	JobID     uint64    `json:"job_id"`
	Requester string    `json:"requester"`
	TaskType  uint8     `json:"task_type"`
	InputData []byte    `json:"input_data"`
	Fee       uint64    `json:"fee"`
	Timestamp time.Time `json:"timestamp"`
}

// JobCompletedEvent is emitted once when a job reaches the completed state.
type JobCompletedEvent struct {
	JobID           uint64    `json:"job_id"`
	ResultHash      string    `json:"result_hash"`
	ResultData      []byte    `json:"result_data"`
	ComputeProvider string    `json:"compute_provider"`
	Timestamp       time.Time `json:"timestamp"`
}

// JobFailedEvent is emitted once when a job reaches the failed state.
type JobFailedEvent struct {
	JobID           uint64    `json:"job_id"`
	Reason          string    `json:"reason"`
	ComputeProvider string    `json:"compute_provider"`
	Timestamp       time.Time `json:"timestamp"`
}

// NodeAuthorizedEvent is emitted when the administrator authorizes a node.
type NodeAuthorizedEvent struct {
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// NodeRevokedEvent is emitted when the administrator revokes a node.
type NodeRevokedEvent struct {
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// MinFeeUpdatedEvent is emitted when the administrator changes the minimum fee.
type MinFeeUpdatedEvent struct {
	OldFee    uint64    `json:"old_fee"`
	NewFee    uint64    `json:"new_fee"`
	Timestamp time.Time `json:"timestamp"`
}

// FeesWithdrawnEvent is emitted when the administrator sweeps the treasury.
type FeesWithdrawnEvent struct {
	Destination string    `json:"destination"`
	Amount      uint64    `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// pendingEvent is an event staged inside a transaction, broadcast only after
// the transaction commits.
type pendingEvent struct {
	eventType string
	jobID     *uint64
	payload   interface{}
}

// appendEvent writes the event to the append-only log within tx.
func appendEvent(tx *gorm.DB, ev pendingEvent, at time.Time) error {
	data, err := json.Marshal(ev.payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.Event{
		Type:      ev.eventType,
		JobID:     ev.jobID,
		Payload:   string(data),
		Timestamp: at,
	}).Error
}
