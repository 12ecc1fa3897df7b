// Package scheduler wires up the cron job that sweeps pending invites
// past their expiry.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/metrics"
	"github.com/workmatch/workmatch/internal/repository"
)

// Scheduler wraps robfig/cron and manages the invite-expiry sweep.
type Scheduler struct {
	cron       *cron.Cron
	appCtx     *app.AppContext
	inviteRepo *repository.InviteRepository
	spec       string
}

// New creates a Scheduler firing on the configured cron spec.
func New(appCtx *app.AppContext) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		appCtx:     appCtx,
		inviteRepo: repository.NewInviteRepository(appCtx.DB),
		spec:       appCtx.Cfg.Invite.SweepSpec,
	}
}

// Start registers the sweep and starts the scheduler. Also runs one sweep
// immediately so restarts don't leave stale invites until the first tick.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.appCtx.Logger.Info("invite sweeper started", "spec", s.spec)

	go s.sweep()
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.appCtx.Logger.Info("invite sweeper stopped")
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.inviteRepo.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		s.appCtx.Logger.Error("invite sweep failed", "err", err)
		return
	}
	if n > 0 {
		metrics.InvitesCounter.WithLabelValues(db.InviteStatusExpired).Add(float64(n))
		s.appCtx.Logger.Info("expired stale invites", "count", n)
	}
}
