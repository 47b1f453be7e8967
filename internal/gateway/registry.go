package gateway

import (
	"fmt"
	"time"

	"tengen/gateway/internal/models"

	"gorm.io/gorm"
)

// AuthorizeComputeNode adds an address to the executor registry. Authorizing
// an already-authorized address is a no-op success. Administrator only.
func (g *Gateway) AuthorizeComputeNode(caller, address string) error {
	if caller != g.admin {
		return ErrNotAuthorizedAdmin
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		node := models.ComputeNode{Address: address, AuthorizedAt: now}
		if err := tx.Where("address = ?", address).FirstOrCreate(&node).Error; err != nil {
			return fmt.Errorf("failed to authorize node: %w", err)
		}

		ev = pendingEvent{
			eventType: models.EventNodeAuthorized,
			payload: NodeAuthorizedEvent{
				Address:   address,
				Timestamp: now,
			},
		}
		return appendEvent(tx, ev, now)
	})
	if err != nil {
		return err
	}

	g.emit(ev)
	return nil
}

// RevokeComputeNode removes an address from the executor registry. Jobs the
// node already reported are unaffected; new reports from it are rejected.
// Revoking an unknown address is a no-op success. Administrator only.
func (g *Gateway) RevokeComputeNode(caller, address string) error {
	if caller != g.admin {
		return ErrNotAuthorizedAdmin
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("address = ?", address).Delete(&models.ComputeNode{}).Error; err != nil {
			return fmt.Errorf("failed to revoke node: %w", err)
		}

		ev = pendingEvent{
			eventType: models.EventNodeRevoked,
			payload: NodeRevokedEvent{
				Address:   address,
				Timestamp: now,
			},
		}
		return appendEvent(tx, ev, now)
	})
	if err != nil {
		return err
	}

	g.emit(ev)
	return nil
}

// IsAuthorizedNode reports whether the address is currently in the registry.
func (g *Gateway) IsAuthorizedNode(address string) (bool, error) {
	return nodeAuthorized(g.db, address)
}

// ListComputeNodes returns the current registry contents.
func (g *Gateway) ListComputeNodes() ([]models.ComputeNode, error) {
	var nodes []models.ComputeNode
	if err := g.db.Order("authorized_at ASC").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

func nodeAuthorized(db *gorm.DB, address string) (bool, error) {
	var count int64
	if err := db.Model(&models.ComputeNode{}).Where("address = ?", address).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check node authorization: %w", err)
	}
	return count > 0, nil
}
