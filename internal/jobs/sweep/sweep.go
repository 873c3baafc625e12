package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/services/reconcile"
)

const defaultBatchSize = 200

type ProfileLister interface {
	IDs(ctx context.Context, after string, limit int) ([]string, error)
}

type Cleaner interface {
	Clean(ctx context.Context, ownerID string) (reconcile.Report, error)
}

type Observer interface {
	OwnerSwept(removed map[string]int, failed bool)
}

// Stats summarizes one run.
type Stats struct {
	Owners  int
	Failed  int
	Removed int
}

type Job struct {
	profiles  ProfileLister
	cleaner   Cleaner
	observer  Observer
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

func New(profiles ProfileLister, cleaner Cleaner, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		profiles:  profiles,
		cleaner:   cleaner,
		batchSize: batchSize,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) AttachObserver(observer Observer) {
	j.observer = observer
}

// Run reconciles every profile once. A failing owner is logged and the run
// moves on; listing failures and cancellation end the run.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	started := j.now()
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ids, err := j.profiles.IDs(ctx, after, j.batchSize)
		if err != nil {
			return stats, fmt.Errorf("list profiles after %q: %w", after, err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			report, err := j.cleaner.Clean(ctx, id)
			failed := err != nil && !errors.Is(err, errs.ErrNotFound)
			if j.observer != nil {
				j.observer.OwnerSwept(report.Removed, failed)
			}
			stats.Owners++
			stats.Removed += report.Total()
			if failed {
				stats.Failed++
				j.logger.Warn("sweep owner failed", zap.String("owner_id", id), zap.Error(err))
			}
		}

		after = ids[len(ids)-1]
		if len(ids) < j.batchSize {
			break
		}
	}

	j.logger.Info("sweep completed",
		zap.Int("owners", stats.Owners),
		zap.Int("failed", stats.Failed),
		zap.Int("removed", stats.Removed),
		zap.Duration("took", j.now().Sub(started)),
	)
	return stats, nil
}
