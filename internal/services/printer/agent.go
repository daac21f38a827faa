package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
)

// Snapshot is an immutable view of the printer routing configuration.
// The agent swaps in a fresh snapshot periodically; each job is
// dispatched against the snapshot it was claimed under, so a config
// change never affects a job mid-flight.
type Snapshot struct {
	Stations map[string]string // station name -> class
	LoadedAt time.Time
}

// Knows reports whether a station is routable.
func (s Snapshot) Knows(station string) bool {
	_, ok := s.Stations[station]
	return ok
}

// Agent drains the durable print-job queue: claim, render to the
// physical output, acknowledge. Several agents can run at once; SKIP
// LOCKED claiming keeps them from double-printing.
type Agent struct {
	db       *database.DB
	queue    *Queue
	logger   *logger.Logger
	cfg      config.PrinterConfig
	snapshot atomic.Pointer[Snapshot]
	out      io.Writer
}

// NewAgent creates the print agent.
func NewAgent(db *database.DB, log *logger.Logger, cfg config.PrinterConfig) *Agent {
	return &Agent{
		db:     db,
		queue:  NewQueue(),
		logger: log,
		cfg:    cfg,
		out:    os.Stdout,
	}
}

// Run polls the queue until the context is cancelled, refreshing the
// routing snapshot on its own interval.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.refreshSnapshot(ctx); err != nil {
		return fmt.Errorf("initial snapshot load: %w", err)
	}

	poll := time.NewTicker(time.Duration(a.cfg.PollIntervalSeconds) * time.Second)
	defer poll.Stop()
	refresh := time.NewTicker(time.Duration(a.cfg.RefreshIntervalSeconds) * time.Second)
	defer refresh.Stop()

	a.logger.Info("print_agent_started", "Print agent started", "", map[string]interface{}{
		"poll_interval_seconds": a.cfg.PollIntervalSeconds,
		"max_attempts":          a.cfg.MaxAttempts,
	})

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("print_agent_stopped", "Print agent stopped", "", nil)
			return nil
		case <-refresh.C:
			if err := a.refreshSnapshot(ctx); err != nil {
				// Stale routing beats no routing; keep the old snapshot.
				a.logger.Error("snapshot_refresh_failed", "Failed to refresh printer snapshot", "", err, nil)
			}
		case <-poll.C:
			a.drain(ctx)
		}
	}
}

// drain processes claimed jobs until the queue is empty.
func (a *Agent) drain(ctx context.Context) {
	snap := *a.snapshot.Load()
	for {
		job, err := a.queue.Claim(ctx, a.db.Pool)
		if err != nil {
			a.logger.Error("job_claim_failed", "Failed to claim print job", "", err, nil)
			return
		}
		if job == nil {
			return
		}

		if err := a.dispatch(job, snap); err != nil {
			a.logger.Error("job_print_failed", "Failed to print job", "", err, map[string]interface{}{
				"job_id":   job.ID,
				"attempts": job.Attempts,
			})
			if failErr := a.queue.Fail(ctx, a.db.Pool, job.ID, a.cfg.MaxAttempts, err.Error()); failErr != nil {
				a.logger.Error("job_fail_mark_failed", "Failed to record job failure", "", failErr, map[string]interface{}{
					"job_id": job.ID,
				})
			}
			continue
		}

		if err := a.queue.Complete(ctx, a.db.Pool, job.ID); err != nil {
			a.logger.Error("job_ack_failed", "Failed to acknowledge print job", "", err, map[string]interface{}{
				"job_id": job.ID,
			})
			continue
		}
		a.logger.Debug("job_printed", fmt.Sprintf("Printed %s %s", job.Type, job.ReferenceNo), "", map[string]interface{}{
			"job_id":  job.ID,
			"station": job.Station,
		})
	}
}

// dispatch sends one job to its physical output. Bills route to the
// cashier counter; everything else must name a configured station.
func (a *Agent) dispatch(job *Job, snap Snapshot) error {
	if job.Type != JobBill && !snap.Knows(job.Station) {
		return fmt.Errorf("no printer configured for station %q", job.Station)
	}

	destination := job.Station
	if job.Type == JobBill {
		destination = "cashier"
	}
	_, err := fmt.Fprintf(a.out, "=== %s @ %s [%s] ===\n%s\n", job.Type, destination, job.ReferenceNo, job.Content)
	return err
}

// refreshSnapshot loads the station routing table and atomically swaps
// it in.
func (a *Agent) refreshSnapshot(ctx context.Context) error {
	rows, err := a.db.Pool.Query(ctx, database.ListStationsSQL)
	if err != nil {
		return err
	}
	defer rows.Close()

	stations := make(map[string]string)
	for rows.Next() {
		var name, class string
		if err := rows.Scan(&name, &class); err != nil {
			return err
		}
		stations[name] = class
	}
	if err := rows.Err(); err != nil {
		return err
	}

	a.snapshot.Store(&Snapshot{Stations: stations, LoadedAt: time.Now()})
	return nil
}
