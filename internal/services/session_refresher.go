package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads cached task sessions from the store.
type Refresher interface {
	Refresh(ctx context.Context) error
	Len() int
}

// SessionRefresher periodically reloads cached sessions so rows changed outside this
// process (another replica, manual fixes) reach local state.
type SessionRefresher struct {
	target   Refresher
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
}

func NewSessionRefresher(target Refresher, interval time.Duration, logger *zap.Logger) (*SessionRefresher, error) {
	if interval < time.Second {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sr := &SessionRefresher{
		target:   target,
		logger:   logger,
		interval: interval,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := sr.cron.AddFunc(schedule, sr.run); err != nil {
		return nil, err
	}
	return sr, nil
}

// Start launches the cron scheduler.
func (sr *SessionRefresher) Start() {
	if sr == nil || sr.cron == nil {
		return
	}
	sr.cron.Start()
	sr.logger.Info("session refresher started", zap.Duration("interval", sr.interval))
}

// Stop waits for a running refresh or ctx, whichever ends first.
func (sr *SessionRefresher) Stop(ctx context.Context) {
	if sr == nil || sr.cron == nil {
		return
	}
	stopCtx := sr.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sr.logger.Info("session refresher stopped")
}

func (sr *SessionRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sr.interval)
	defer cancel()
	sr.RefreshNow(ctx)
}

// RefreshNow reloads every cached session once.
func (sr *SessionRefresher) RefreshNow(ctx context.Context) {
	if sr.target.Len() == 0 {
		return
	}
	if err := sr.target.Refresh(ctx); err != nil {
		sr.logger.Warn("session refresh incomplete", zap.Error(err))
		return
	}
	sr.logger.Debug("sessions refreshed", zap.Int("sessions", sr.target.Len()))
}
