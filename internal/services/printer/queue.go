package printer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
)

// JobType classifies what a print job renders to.
type JobType string

const (
	JobKOT        JobType = "kot"
	JobBOT        JobType = "bot"
	JobBill       JobType = "bill"
	JobCancelSlip JobType = "cancel_slip"
)

// Job is one abstract print job. The core never knows device addresses
// or socket protocols; the polling agent owns the physical transport.
type Job struct {
	ID          int
	Type        JobType
	Station     string
	Content     string
	ReferenceNo string
	Attempts    int
}

// Queue enqueues print jobs into the durable job table. Enqueueing
// happens inside the caller's transaction so a committed state change
// always has its print job and vice versa.
type Queue struct{}

// NewQueue creates the print-job queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue inserts one pending job.
func (pq *Queue) Enqueue(ctx context.Context, q database.Querier, job *Job) error {
	return q.QueryRow(ctx, database.EnqueuePrintJobSQL,
		job.Type, job.Station, job.Content, job.ReferenceNo).
		Scan(&job.ID)
}

// Claim atomically takes the oldest pending job, or returns nil when
// the queue is empty. SKIP LOCKED lets several agents drain in
// parallel without double-printing.
func (pq *Queue) Claim(ctx context.Context, q database.Querier) (*Job, error) {
	var job Job
	err := q.QueryRow(ctx, database.ClaimPrintJobSQL).Scan(
		&job.ID, &job.Type, &job.Station, &job.Content, &job.ReferenceNo, &job.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Complete acknowledges a successfully printed job.
func (pq *Queue) Complete(ctx context.Context, q database.Querier, jobID int) error {
	_, err := q.Exec(ctx, database.CompletePrintJobSQL, jobID)
	return err
}

// Fail records a print failure; the job returns to pending until it
// exhausts maxAttempts, then parks as failed.
func (pq *Queue) Fail(ctx context.Context, q database.Querier, jobID, maxAttempts int, cause string) error {
	_, err := q.Exec(ctx, database.FailPrintJobSQL, maxAttempts, cause, jobID)
	return err
}
