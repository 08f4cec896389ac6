// Package jobs runs periodic maintenance on the database.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionPurger deletes sessions whose TTL has passed.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenPurger clears password reset tokens whose expiry has passed.
type TokenPurger interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Purge removes expired sessions and reset tokens.
type Purge struct {
	Sessions SessionPurger
	Tokens   TokenPurger
	Log      *logrus.Logger
	Now      func() time.Time // defaults to time.Now
}

// Run does one purge pass. Both steps run even if the first fails.
func (p *Purge) Run(ctx context.Context) error {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	sessions, sessErr := p.Sessions.PurgeExpired(ctx, now)
	if sessErr != nil {
		sessErr = fmt.Errorf("purge sessions: %w", sessErr)
	}
	tokens, tokErr := p.Tokens.ClearExpiredResetTokens(ctx, now)
	if tokErr != nil {
		tokErr = fmt.Errorf("purge reset tokens: %w", tokErr)
	}

	if err := errors.Join(sessErr, tokErr); err != nil {
		return err
	}
	p.Log.WithFields(logrus.Fields{"sessions": sessions, "reset_tokens": tokens}).Info("purged expired records")
	return nil
}

// Scheduler runs the purge on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// Start schedules purge on schedule ("@hourly", "*/15 * * * *", ...) and
// starts the scheduler. A pass still running when the next one is due is skipped.
func Start(schedule string, purge *Purge, log *logrus.Logger) (*Scheduler, error) {
	logger := cron.PrintfLogger(log)
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := purge.Run(ctx); err != nil {
			log.WithError(err).Error("purge failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule purge %q: %w", schedule, err)
	}

	c.Start()
	return &Scheduler{cron: c}, nil
}

// Stop stops scheduling and waits for a running pass or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
