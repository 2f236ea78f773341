// Package jobstore tracks solve jobs submitted to postflow-server: a job's
// position string, its status, and (once solved) the binary codec snapshot
// of the result. Store is implemented twice, the way
// jackkayser2005-pokerBench separates its server/store.DB (pgx-backed) from
// callers that only need the interface: Memory for a zero-config default and
// Postgres, grounded directly on that repo's store.DB (pgxpool.Pool,
// go:embed schema.sql, Open/Migrate), for a restart-durable deployment.
package jobstore

import (
	"context"
	"errors"
	"time"
)

// Status values a Job moves through: Pending -> Running -> Done or Failed.
const (
	Pending = "pending"
	Running = "running"
	Done    = "done"
	Failed  = "failed"
)

// ErrNotFound is returned by Get, UpdateStatus and SaveResult when the job id is unknown.
var ErrNotFound = errors.New("jobstore: job not found")

// Job is one solve request and its current status. Result holds the
// codec-encoded snapshot once Status is Done; it is nil otherwise.
type Job struct {
	ID         string
	Position   string
	Iterations int
	Status     string
	Error      string
	CreatedAt  time.Time
	Result     []byte
}

// Store persists jobs across the lifetime of postflow-server. Implementations
// must be safe for concurrent use: the HTTP handler creates a job, returns
// its id immediately, then solves and updates it from a background
// goroutine while other requests poll Get.
type Store interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	SaveResult(ctx context.Context, id string, snapshot []byte) error
	Close(ctx context.Context)
}
