package models

import (
	"time"
)

// ComputeNode is a row in the executor registry. Presence of a row means the
// address is currently authorized to report job outcomes; revocation removes
// the row.
type ComputeNode struct {
	Address      string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	AuthorizedAt time.Time `gorm:"not null" json:"authorized_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ComputeNode) TableName() string {
	return "compute_nodes"
}
