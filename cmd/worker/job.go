package main

import (
	"context"
	"time"

	"stockpulse/internal/core/apperror"
	appctx "stockpulse/internal/core/context"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/infrastructure/lock"
	"stockpulse/pkg/logger"
)

const syncLockKey = "invoicex-sync"

type syncRunner interface {
	Run(ctx context.Context) (lots.ImportSalesResult, error)
}

// syncJob runs one guarded InvoiceX pull.
type syncJob struct {
	syncer syncRunner
	locker lock.Locker
	ttl    time.Duration
}

func newSyncJob(syncer syncRunner, locker lock.Locker, ttl time.Duration) *syncJob {
	return &syncJob{syncer: syncer, locker: locker, ttl: ttl}
}

// Run imports one batch while holding the sync lock. The run is bounded by
// the lock ttl so a stuck run cannot outlive its lock.
func (j *syncJob) Run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())

	release, err := j.locker.Obtain(ctx, syncLockKey, j.ttl)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeLocked) {
			logger.Info(ctx, "invoicex sync already running elsewhere, skipping")
			return
		}
		logger.Error(ctx, "failed to obtain sync lock", "error", err)
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "failed to release sync lock", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, j.ttl)
	defer cancel()

	started := time.Now()
	res, err := j.syncer.Run(runCtx)
	if err != nil {
		logger.Error(ctx, "invoicex sync failed", "error", err)
		return
	}
	if res.Received == 0 {
		return
	}
	logger.Info(ctx, "invoicex sync finished",
		"batch_id", res.BatchID,
		"received", res.Received,
		"inserted", res.Inserted,
		"already_synced", res.AlreadySynced,
		"failed", len(res.Errors),
		"duration", time.Since(started),
	)
}
