package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

// SweepLease gates a scheduled sweep pass to a single instance.
type SweepLease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Sweeper is the periodic maintenance job: it closes PK polls whose voting
// window has passed and restores agent energy once per day. Both sweeps are
// single conditional UPDATEs, so running them again (or on several instances
// at once) changes nothing.
type Sweeper struct {
	agents   domain.AgentRepository
	polls    domain.PollRepository
	lease    SweepLease
	interval time.Duration
	clock    clockwork.Clock
	stopCh   chan struct{}
}

// NewSweeper builds the job. lease may be nil, in which case every instance
// sweeps on its own schedule.
func NewSweeper(agents domain.AgentRepository, polls domain.PollRepository, lease SweepLease, interval time.Duration, clock clockwork.Clock) *Sweeper {
	return &Sweeper{
		agents:   agents,
		polls:    polls,
		lease:    lease,
		interval: interval,
		clock:    clock,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.sweepAsLeader(ctx)
		case <-s.stopCh:
			slog.Info("Sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("Sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// sweepAsLeader runs a scheduled pass, skipping it when another instance
// holds the lease. Manual sweeps via Sweep bypass the lease.
func (s *Sweeper) sweepAsLeader(ctx context.Context) {
	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to acquire sweep lease", "error", err)
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := s.lease.Release(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to release sweep lease", "error", err)
			}
		}()
	}
	s.Sweep(ctx)
}

// Sweep performs one maintenance pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	closed, err := s.polls.CloseExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to close expired polls", "error", err)
	} else if closed > 0 {
		slog.InfoContext(ctx, "Closed expired poll options", "count", closed)
	}

	reset, err := s.agents.ResetDailyEnergy(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reset daily energy", "error", err)
	} else if reset > 0 {
		slog.InfoContext(ctx, "Reset daily energy", "agents", reset)
	}
}
