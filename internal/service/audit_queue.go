package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/pkg/jobs"
)

// AuditQueue moves audit inserts off the request path. It satisfies the same
// writer contract the services use, so it can be swapped in for the directory.
type AuditQueue struct {
	queue *jobs.Queue[*models.AuditLog]
}

// NewAuditQueue builds a queue persisting rows through w. Each insert is bounded by timeout.
func NewAuditQueue(w auditWriter, logger *zap.Logger, timeout time.Duration) *AuditQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	handler := func(ctx context.Context, entry *models.AuditLog) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return w.CreateAuditLog(ctx, entry)
	}
	return &AuditQueue{
		queue: jobs.New("audit", handler, jobs.Config{
			Workers:    2,
			BufferSize: 256,
			MaxRetries: 2,
			Logger:     logger,
		}),
	}
}

// Start launches the workers.
func (q *AuditQueue) Start(ctx context.Context) { q.queue.Start(ctx) }

// Stop flushes buffered rows and stops the workers.
func (q *AuditQueue) Stop() { q.queue.Stop() }

// CreateAuditLog enqueues a copy of the row stamped with the current time. It
// only fails when the queue is stopped or full.
func (q *AuditQueue) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	row := *entry
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return q.queue.Enqueue(&row)
}
