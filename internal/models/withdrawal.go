package models

import (
	"time"
)

// Withdrawal records a treasury sweep to an external account. The custodial
// balance is always derived as sum(jobs.fee) - sum(withdrawals.amount), so
// these rows are the authoritative record of funds leaving the gateway.
type Withdrawal struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Destination string    `gorm:"not null;type:varchar(64)" json:"destination"`
	Amount      uint64    `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
