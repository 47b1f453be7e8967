package models

import (
	"time"
)

// Job status codes. The encoding keeps a reserved in-progress value between
// pending and the terminal states; no public gateway operation sets it.
const (
	StatusPending    uint8 = 0
	StatusInProgress uint8 = 1
	StatusCompleted  uint8 = 2
	StatusFailed     uint8 = 3
)

// Task type codes understood by bridge nodes. The ledger itself does not
// interpret them.
const (
	TaskTypePrimeFinder uint8 = 0
	TaskTypeMonteCarlo  uint8 = 1
)

// StatusName returns a human-readable name for a job status code.
func StatusName(status uint8) string {
	switch status {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Job struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Requester       string     `gorm:"not null;type:varchar(64);index" json:"requester"`
	TaskType        uint8      `gorm:"not null" json:"task_type"`
	InputData       []byte     `json:"input_data"`
	Fee             uint64     `gorm:"not null" json:"fee"`
	Status          uint8      `gorm:"not null;default:0;index" json:"status"`
	ResultData      []byte     `json:"result_data"`
	ResultHash      string     `gorm:"type:varchar(64)" json:"result_hash"` // SHA256 hash, empty until completed
	ComputeProvider string     `gorm:"type:varchar(64)" json:"compute_provider"`
	RequestedAt     time.Time  `gorm:"not null" json:"requested_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	FailedAt        *time.Time `json:"failed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// Terminal reports whether the job has left the pending state for good.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
