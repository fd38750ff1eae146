package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiredFileDeleter is the part of FileService the cleanup job needs
type ExpiredFileDeleter interface {
	DeleteExpiredFiles(ctx context.Context) (int, error)
}

// ExpiryCleanup periodically purges files past their expiry window. It only goes
// through the public FileService API and shares no locks with request handlers
type ExpiryCleanup struct {
	deleter ExpiredFileDeleter
	timeout time.Duration
	cron    *cron.Cron
}

// NewExpiryCleanup schedules the cleanup. schedule is a standard 5 field cron
// expression or a descriptor such as @daily or @every 1h. A run is skipped if
// the previous one is still going
func NewExpiryCleanup(d ExpiredFileDeleter, schedule string, timeout time.Duration) (*ExpiryCleanup, error) {
	l := cronLogger{}

	e := &ExpiryCleanup{
		deleter: d,
		timeout: timeout,
		cron:    cron.New(cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
	}

	if _, err := e.cron.AddFunc(schedule, func() { e.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", schedule, err)
	}

	return e, nil
}

func (e *ExpiryCleanup) Start() {
	e.cron.Start()

	var next time.Time
	if entries := e.cron.Entries(); len(entries) > 0 {
		next = entries[0].Next
	}

	zap.L().Debug("Expiry cleanup attached", zap.Time("next_run", next))
}

// Stop prevents new runs and waits for a running one to finish or for ctx to end
func (e *ExpiryCleanup) Stop(ctx context.Context) error {
	done := e.cron.Stop().Done()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep under the configured timeout
func (e *ExpiryCleanup) RunOnce(ctx context.Context) (int, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	zap.L().Info("Deleting expired files")

	n, err := e.deleter.DeleteExpiredFiles(ctx)
	if err != nil {
		zap.L().Error("Expired file cleanup failed", zap.Error(err))
		return n, err
	}

	zap.L().Info("Expired file cleanup finished", zap.Int("deleted", n), zap.Duration("took", time.Since(start)))
	return n, nil
}

// cronLogger sends cron's own messages to zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	zap.L().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	zap.L().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
