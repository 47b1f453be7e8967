package gateway

import (
	"fmt"
	"time"

	"tengen/gateway/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Balance returns the current custodial balance: the sum of all fees ever
// paid minus the sum of all withdrawals. It is always derived from the job
// and withdrawal tables rather than kept as a separately mutated counter.
func (g *Gateway) Balance() (uint64, error) {
	return custodialBalance(g.db)
}

// WithdrawFees sweeps the entire custodial balance to destination and records
// the withdrawal. The balance is read and zeroed in one transaction, so a
// submission committing concurrently lands entirely before or entirely after
// the sweep. Administrator only. Returns the amount transferred.
func (g *Gateway) WithdrawFees(caller, destination string) (uint64, error) {
	if caller != g.admin {
		return 0, ErrNotAuthorizedAdmin
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var amount uint64
	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		balance, err := custodialBalance(tx)
		if err != nil {
			return err
		}
		if balance == 0 {
			return ErrNoFeesToWithdraw
		}

		amount = balance
		withdrawal := &models.Withdrawal{
			ID:          uuid.New().String(),
			Destination: destination,
			Amount:      amount,
			CreatedAt:   now,
		}
		if err := tx.Create(withdrawal).Error; err != nil {
			return fmt.Errorf("failed to record withdrawal: %w", err)
		}

		ev = pendingEvent{
			eventType: models.EventFeesWithdrawn,
			payload: FeesWithdrawnEvent{
				Destination: destination,
				Amount:      amount,
				Timestamp:   now,
			},
		}
		return appendEvent(tx, ev, now)
	})
	if err != nil {
		return 0, err
	}

	g.emit(ev)
	return amount, nil
}

func custodialBalance(db *gorm.DB) (uint64, error) {
	var feesPaid, withdrawn uint64

	if err := db.Model(&models.Job{}).
		Select("COALESCE(SUM(fee), 0)").
		Scan(&feesPaid).Error; err != nil {
		return 0, fmt.Errorf("failed to sum fees: %w", err)
	}

	if err := db.Model(&models.Withdrawal{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&withdrawn).Error; err != nil {
		return 0, fmt.Errorf("failed to sum withdrawals: %w", err)
	}

	return feesPaid - withdrawn, nil
}
