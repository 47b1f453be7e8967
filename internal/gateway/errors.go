package gateway

import (
	"errors"
)

// Gateway error taxonomy. Every public operation fails with exactly one of
// these, before any state is mutated; callers match with errors.Is.
var (
	ErrInsufficientFee          = errors.New("paid amount below minimum fee per job")
	ErrNotAuthorizedComputeNode = errors.New("caller is not an authorized compute node")
	ErrNotAuthorizedAdmin       = errors.New("caller is not the gateway administrator")
	ErrJobDoesNotExist          = errors.New("job does not exist")
	ErrJobAlreadyCompleted      = errors.New("job already completed")
	ErrJobAlreadyFailed         = errors.New("job already failed")
	ErrInvalidJobStatus         = errors.New("job is not in a valid status for this operation")
	ErrNoFeesToWithdraw         = errors.New("no fees to withdraw")
)
