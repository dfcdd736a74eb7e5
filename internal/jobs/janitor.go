// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/repository"
)

// TokenJanitor purges refresh tokens that expired or were revoked.
type TokenJanitor struct {
	tokens repository.TokenStore
	log    *zap.Logger
	now    func() time.Time
}

func NewTokenJanitor(tokens repository.TokenStore, log *zap.Logger) *TokenJanitor {
	return &TokenJanitor{tokens: tokens, log: log, now: time.Now}
}

// RunOnce purges everything that stopped being valid before now.
func (j *TokenJanitor) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.tokens.PurgeExpired(ctx, j.now().UTC())
	if err != nil {
		j.log.Warn("token purge failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.log.Info("purged refresh tokens", zap.Int64("count", n))
	}
	return n, nil
}

// Start schedules RunOnce with the cron spec (e.g. "@hourly") and stops
// the scheduler when ctx is cancelled.  The returned channel is closed once
// the running job, if any, has finished.
func (j *TokenJanitor) Start(ctx context.Context, spec string) (<-chan struct{}, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_, _ = j.RunOnce(runCtx)
	}); err != nil {
		return nil, fmt.Errorf("schedule token purge %q: %w", spec, err)
	}
	c.Start()
	j.log.Info("token janitor started", zap.String("schedule", spec))

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		close(done)
	}()
	return done, nil
}
