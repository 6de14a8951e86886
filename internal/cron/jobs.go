package cron

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPruneSchedule runs journal retention daily at 03:00.
const DefaultPruneSchedule = "0 3 * * *"

// Pruner is the subset of journal.Store needed by the retention job.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// JournalPruneJob deletes journal entries older than Retention.
type JournalPruneJob struct {
	Store        Pruner
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string           // empty = DefaultPruneSchedule
	Now          func() time.Time // nil = time.Now
}

// Compile-time interface check.
var _ Job = (*JournalPruneJob)(nil)

// Name implements Job.
func (j *JournalPruneJob) Name() string {
	return "journal_prune"
}

// Schedule implements Job.
func (j *JournalPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultPruneSchedule
}

// Run prunes entries recorded before now minus Retention. A non-positive
// retention keeps everything.
func (j *JournalPruneJob) Run(ctx context.Context) error {
	if j.Retention <= 0 {
		return nil
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	pruned, err := j.Store.Prune(ctx, now().Add(-j.Retention))
	if err != nil {
		return err
	}
	if pruned > 0 && j.Logger != nil {
		j.Logger.Info("cron: pruned journal entries", "count", pruned, "retention", j.Retention)
	}
	return nil
}
