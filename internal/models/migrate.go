package models

import (
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Job{},
		&ComputeNode{},
		&Withdrawal{},
		&GatewayState{},
		&Event{},
		&User{},
	); err != nil {
		return err
	}

	// Ensure the singleton state row exists so the gateway can always load it
	var state GatewayState
	if err := db.First(&state, 1).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		state = GatewayState{ID: 1}
		if err := db.Create(&state).Error; err != nil {
			return err
		}
	}

	return nil
}
