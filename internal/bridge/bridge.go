package bridge

import (
	"context"
	"errors"
	"log"
	"time"

	"tengen/gateway/internal/compute"
	"tengen/gateway/internal/models"
)

// Bridge polls the gateway for pending jobs, executes them locally, and
// reports the outcome. It also listens on the gateway's event stream so new
// submissions are picked up without waiting for the next poll tick.
type Bridge struct {
	cfg    *Config
	client *Client
}

// New creates a bridge for the configured node identity
func New(cfg *Config) *Bridge {
	return &Bridge{
		cfg:    cfg,
		client: NewClient(cfg.Gateway.URL, cfg.Node.Address),
	}
}

// Run processes jobs until ctx is cancelled
func (b *Bridge) Run(ctx context.Context) error {
	interval := time.Duration(b.cfg.Poll.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Event stream is an optimization; polling alone is sufficient
	events, err := b.client.SubscribeEvents(ctx)
	if err != nil {
		log.Printf("Event stream unavailable, falling back to polling: %v", err)
		events = nil
	}

	// Drain any backlog before settling into the loop
	b.processPending(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if events == nil {
				if ch, err := b.client.SubscribeEvents(ctx); err == nil {
					log.Println("Event stream restored")
					events = ch
				}
			}
			b.processPending(ctx)

		case msg, ok := <-events:
			if !ok {
				log.Println("Event stream closed, retrying on next poll")
				events = nil
				continue
			}
			if msg.Type == models.EventJobRequested {
				b.processPending(ctx)
			}
		}
	}
}

// processPending fetches and executes one batch of pending jobs
func (b *Bridge) processPending(ctx context.Context) {
	jobs, err := b.client.PendingJobs(ctx, b.cfg.Poll.BatchSize)
	if err != nil {
		log.Printf("Failed to fetch pending jobs: %v", err)
		return
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		b.processJob(ctx, job)
	}
}

func (b *Bridge) processJob(ctx context.Context, job Job) {
	log.Printf("Processing job %d (task type %d, fee %d)", job.ID, job.TaskType, job.Fee)

	result, err := compute.Run(job.TaskType, job.InputData)
	if err != nil {
		log.Printf("Job %d failed: %v", job.ID, err)
		if err := b.client.MarkJobFailed(ctx, job.ID, err.Error()); err != nil {
			b.logReportError(job.ID, err)
		}
		return
	}

	if err := b.client.SubmitResult(ctx, job.ID, result); err != nil {
		b.logReportError(job.ID, err)
		return
	}

	log.Printf("Job %d completed", job.ID)
}

// logReportError keeps lost races quiet; they are expected when several
// bridge nodes watch the same gateway
func (b *Bridge) logReportError(jobID uint64, err error) {
	var reportErr *ReportError
	if errors.As(err, &reportErr) && reportErr.Conflict() {
		log.Printf("Job %d already reported by another node", jobID)
		return
	}
	log.Printf("Failed to report job %d: %v", jobID, err)
}
