package models

import (
	"time"
)

// GatewayState is the single-row table holding the ledger's scalar state:
// the next job identifier, the current minimum fee, and the lifetime
// completion/failure counters. Exactly one row with ID 1 exists.
type GatewayState struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	NextJobID          uint64    `gorm:"not null;default:0" json:"next_job_id"`
	MinFeePerJob       uint64    `gorm:"not null;default:0" json:"min_fee_per_job"`
	TotalJobsCompleted uint64    `gorm:"not null;default:0" json:"total_jobs_completed"`
	TotalJobsFailed    uint64    `gorm:"not null;default:0" json:"total_jobs_failed"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (GatewayState) TableName() string {
	return "gateway_state"
}
