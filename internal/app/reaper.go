package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/dkeye/WatchTogether/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reaper periodically deletes sessions older than a fixed age ceiling.
// Age is measured from creation; activity never extends a session.
type Reaper struct {
	store    core.SessionStore
	ttl      time.Duration
	interval time.Duration
	// OnExpired runs under the expired session's lock. Optional.
	OnExpired func(s *domain.Session)

	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewReaper(store core.SessionStore, ttl, interval time.Duration) *Reaper {
	return &Reaper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		log:      log.With().Str("module", "app.reaper").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background. Only the first call has effect.
func (r *Reaper) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.run(ctx)
		r.log.Info().Dur("ttl", r.ttl).Dur("interval", r.interval).Msg("reaper started")
	})
}

// Stop shuts the loop down and waits for it. Safe to call multiple times.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.log.Info().Msg("reaper stopped")
	})
}

func (r *Reaper) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Sweep removes every session expired at now and returns how many went away.
func (r *Reaper) Sweep(now time.Time) int {
	removed := r.store.RemoveExpired(now, r.ttl, r.OnExpired)
	for _, s := range removed {
		metrics.RecordSessionDeleted(metrics.ReasonExpired)
		r.log.Info().
			Str("session", string(s.ID)).
			Dur("age", now.Sub(s.CreatedAt)).
			Int("participants", s.ParticipantCount()).
			Msg("cleaning up old session")
	}
	return len(removed)
}
