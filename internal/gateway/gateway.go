package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"tengen/gateway/internal/models"

	"gorm.io/gorm"
)

// Gateway is the authoritative compute-job ledger: it accepts paid job
// submissions, restricts outcome reporting to authorized compute nodes,
// guarantees each job leaves the pending state at most once, and holds fees
// in custody until the administrator withdraws them.
type Gateway struct {
	db      *gorm.DB
	admin   string
	emitter Emitter

	// mu serializes all mutating operations. Identifier allocation, state
	// transitions and treasury sweeps each read-then-write shared rows, so
	// mutations run one at a time; reads go straight to the database.
	mu sync.Mutex
}

// New creates a gateway backed by db. admin is the only identity allowed to
// manage the node registry, the fee policy and the treasury. emitter may be
// nil; committed events are still recorded in the event log.
func New(db *gorm.DB, admin string, emitter Emitter) *Gateway {
	return &Gateway{
		db:      db,
		admin:   admin,
		emitter: emitter,
	}
}

// Admin returns the configured administrator identity.
func (g *Gateway) Admin() string {
	return g.admin
}

// Stats is the snapshot returned by GetStats.
type Stats struct {
	NextJobID          uint64 `json:"next_job_id"`
	TotalJobsCompleted uint64 `json:"total_jobs_completed"`
	TotalJobsFailed    uint64 `json:"total_jobs_failed"`
	MinFeePerJob       uint64 `json:"min_fee_per_job"`
}

// HashResult returns the hex-encoded SHA256 hash of result data, the value
// stored as a job's result hash at completion.
func HashResult(resultData []byte) string {
	sum := sha256.Sum256(resultData)
	return hex.EncodeToString(sum[:])
}

// RequestCompute submits a new job. paidAmount is the fee actually paid; it
// must meet the current minimum but may exceed it, and the excess is kept.
// Returns the allocated job identifier.
func (g *Gateway) RequestCompute(requester string, taskType uint8, inputData []byte, paidAmount uint64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var jobID uint64
	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}

		if paidAmount < state.MinFeePerJob {
			return ErrInsufficientFee
		}

		jobID = state.NextJobID

		job := &models.Job{
			ID:          jobID,
			Requester:   requester,
			TaskType:    taskType,
			InputData:   inputData,
			Fee:         paidAmount,
			Status:      models.StatusPending,
			RequestedAt: now,
		}
		if err := tx.Create(job).Error; err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		state.NextJobID++
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update gateway state: %w", err)
		}

		ev = pendingEvent{
			eventType: models.EventJobRequested,
			jobID:     &jobID,
			payload: JobRequestedEvent{
				JobID:     jobID,
				Requester: requester,
				TaskType:  taskType,
				InputData: inputData,
				Fee:       paidAmount,
				Timestamp: now,
			},
		}
		return appendEvent(tx, ev, now)
	})
	if err != nil {
		return 0, err
	}

	g.emit(ev)
	return jobID, nil
}

// SubmitResult records a successful outcome for a pending job. Only currently
// authorized compute nodes may call it, and only the first terminal report on
// a job succeeds.
func (g *Gateway) SubmitResult(node string, jobID uint64, resultData []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		job, err := loadReportableJob(tx, node, jobID)
		if err != nil {
			return err
		}

		resultHash := HashResult(resultData)

		// Update columns directly: gorm's Save inserts when the primary key
		// is the zero value, and job IDs start at 0
		updates := map[string]interface{}{
			"status":           models.StatusCompleted,
			"result_data":      resultData,
			"result_hash":      resultHash,
			"compute_provider": node,
			"completed_at":     now,
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}

		if err := bumpCounter(tx, "total_jobs_completed"); err != nil {
			return err
		}

		ev = pendingEvent{
			eventType: models.EventJobCompleted,
			jobID:     &jobID,
			payload: JobCompletedEvent{
				JobID:           jobID,
				ResultHash:      resultHash,
				ResultData:      resultData,
				ComputeProvider: node,
				Timestamp:       now,
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

// MarkJobFailed records a failed outcome for a pending job. reason is an
// opaque diagnostic string; it is stored and emitted but never interpreted.
func (g *Gateway) MarkJobFailed(node string, jobID uint64, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		job, err := loadReportableJob(tx, node, jobID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":           models.StatusFailed,
			"compute_provider": node,
			"failed_at":        now,
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}

		if err := bumpCounter(tx, "total_jobs_failed"); err != nil {
			return err
		}

		ev = pendingEvent{
			eventType: models.EventJobFailed,
			jobID:     &jobID,
			payload: JobFailedEvent{
				JobID:           jobID,
				Reason:          reason,
				ComputeProvider: node,
				Timestamp:       now,
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

// GetJob returns the full job record.
func (g *Gateway) GetJob(jobID uint64) (*models.Job, error) {
	var job models.Job
	if err := g.db.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrJobDoesNotExist
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return &job, nil
}

// GetJobStatus returns the job's status code.
func (g *Gateway) GetJobStatus(jobID uint64) (uint8, error) {
	job, err := g.GetJob(jobID)
	if err != nil {
		return 0, err
	}
	return job.Status, nil
}

// GetJobResult returns the result bytes of a completed job.
func (g *Gateway) GetJobResult(jobID uint64) ([]byte, error) {
	job, err := g.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.StatusCompleted {
		return nil, ErrInvalidJobStatus
	}
	return job.ResultData, nil
}

// GetStats returns the ledger counters and the current minimum fee.
func (g *Gateway) GetStats() (*Stats, error) {
	state, err := loadState(g.db)
	if err != nil {
		return nil, err
	}
	return &Stats{
		NextJobID:          state.NextJobID,
		TotalJobsCompleted: state.TotalJobsCompleted,
		TotalJobsFailed:    state.TotalJobsFailed,
		MinFeePerJob:       state.MinFeePerJob,
	}, nil
}

// ListJobs returns jobs with pagination, newest first, optionally filtered by
// status name (pending, completed, failed).
func (g *Gateway) ListJobs(limit, offset int, status string) ([]models.Job, int64, error) {
	var jobs []models.Job
	var total int64

	query := g.db.Model(&models.Job{})
	if status != "" {
		code, ok := statusCode(status)
		if !ok {
			return nil, 0, ErrInvalidJobStatus
		}
		query = query.Where("status = ?", code)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

// ListPendingJobs returns up to limit pending jobs, oldest first. Bridge
// nodes use it to discover work.
func (g *Gateway) ListPendingJobs(limit int) ([]models.Job, error) {
	var jobs []models.Job
	if err := g.db.
		Where("status = ?", models.StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}
	return jobs, nil
}

// ListEvents returns up to limit events with ID greater than afterID, in log
// order. Observers that miss websocket broadcasts catch up through it.
func (g *Gateway) ListEvents(afterID uint64, limit int) ([]models.Event, error) {
	var events []models.Event
	if err := g.db.
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateMinFee sets the minimum fee for subsequent submissions. Jobs already
// created keep the fee they paid. Administrator only.
func (g *Gateway) UpdateMinFee(caller string, newFee uint64) error {
	if caller != g.admin {
		return ErrNotAuthorizedAdmin
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ev pendingEvent
	now := time.Now().UTC()

	err := g.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}

		oldFee := state.MinFeePerJob
		state.MinFeePerJob = newFee
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update gateway state: %w", err)
		}

		ev = pendingEvent{
			eventType: models.EventMinFeeUpdated,
			payload: MinFeeUpdatedEvent{
				OldFee:    oldFee,
				NewFee:    newFee,
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

// loadReportableJob runs the shared validation for outcome reports: registry
// membership first, then job existence, then terminal-state checks.
func loadReportableJob(tx *gorm.DB, node string, jobID uint64) (*models.Job, error) {
	authorized, err := nodeAuthorized(tx, node)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrNotAuthorizedComputeNode
	}

	var job models.Job
	if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrJobDoesNotExist
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	switch job.Status {
	case models.StatusCompleted:
		return nil, ErrJobAlreadyCompleted
	case models.StatusFailed:
		return nil, ErrJobAlreadyFailed
	}

	return &job, nil
}

// loadState loads the singleton gateway state row.
func loadState(db *gorm.DB) (*models.GatewayState, error) {
	var state models.GatewayState
	if err := db.First(&state, 1).Error; err != nil {
		return nil, fmt.Errorf("failed to load gateway state: %w", err)
	}
	return &state, nil
}

// bumpCounter increments one of the lifetime counters on the state row.
func bumpCounter(tx *gorm.DB, column string) error {
	if err := tx.Model(&models.GatewayState{}).
		Where("id = ?", 1).
		Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}

func statusCode(name string) (uint8, bool) {
	switch name {
	case "pending":
		return models.StatusPending, true
	case "in_progress":
		return models.StatusInProgress, true
	case "completed":
		return models.StatusCompleted, true
	case "failed":
		return models.StatusFailed, true
	default:
		return 0, false
	}
}

func (g *Gateway) emit(ev pendingEvent) {
	if g.emitter == nil || ev.eventType == "" {
		return
	}
	g.emitter.Emit(ev.eventType, ev.payload)
}
