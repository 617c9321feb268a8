package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout  = 300 * time.Second
	DefaultInterval = time.Minute
)

// Evictor disconnects guilds that have been idle for too long. Evict
// re-checks connection and activity against idleBefore under its own lock
// and reports false when the guild no longer qualifies.
type Evictor interface {
	Evict(ctx context.Context, guildID string, idleBefore time.Time) (bool, error)
}

// Reaper disconnects guilds whose last activity is older than the timeout.
type Reaper struct {
	store   *queue.Store
	evictor Evictor
	timeout time.Duration
	log     zerolog.Logger
}

func New(store *queue.Store, evictor Evictor, timeout time.Duration, logger zerolog.Logger) *Reaper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reaper{
		store:   store,
		evictor: evictor,
		timeout: timeout,
		log:     logger.With().Str("component", "reaper").Logger(),
	}
}

// Sweep evicts every idle guild that still holds a voice connection and
// returns the IDs it evicted. Guilds with no recorded activity are skipped.
func (r *Reaper) Sweep(ctx context.Context) []string {
	deadline := r.store.Now().Add(-r.timeout)

	var evicted []string
	for _, guildID := range r.store.IdleSince(deadline) {
		ok, err := r.evict(ctx, guildID, deadline)
		if err != nil {
			r.log.Error().Err(err).Str("guild", guildID).Msg("Failed to disconnect idle guild")
			continue
		}
		if !ok {
			continue
		}
		r.log.Info().Str("guild", guildID).Dur("timeout", r.timeout).Msg("Disconnected due to inactivity")
		evicted = append(evicted, guildID)
	}
	return evicted
}

func (r *Reaper) evict(ctx context.Context, guildID string, deadline time.Time) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok, err = false, fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.evictor.Evict(ctx, guildID, deadline)
}

// Run sweeps on every tick until ctx is done.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", interval).Dur("timeout", r.timeout).Msg("Inactivity reaper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
