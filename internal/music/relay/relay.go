// Package relay hands "song finished" signals from transport goroutines over
// to the coordinator. Signals are recorded as per-guild flags and consumed by
// a periodic drain, so the callback side never touches queue state.
package relay

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is how often pending flags are drained.
const DefaultInterval = 500 * time.Millisecond

// Handler advances one guild after its song finished.
type Handler func(ctx context.Context, guildID string) error

type Relay struct {
	mu      sync.Mutex
	pending map[string]struct{}
	log     zerolog.Logger
}

func New(logger zerolog.Logger) *Relay {
	return &Relay{
		pending: make(map[string]struct{}),
		log:     logger.With().Str("component", "relay").Logger(),
	}
}

// Signal marks the guild's current song as finished. Safe from any goroutine.
func (r *Relay) Signal(guildID string) {
	r.mu.Lock()
	r.pending[guildID] = struct{}{}
	r.mu.Unlock()
}

// Drain returns every flagged guild and clears the set in one step.
// A flag set after Drain returns is left for the next call.
func (r *Relay) Drain() []string {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return nil
	}
	flagged := make([]string, 0, len(r.pending))
	for id := range r.pending {
		flagged = append(flagged, id)
	}
	r.pending = make(map[string]struct{})
	r.mu.Unlock()

	slices.Sort(flagged)
	return flagged
}

// Pending reports how many guilds are waiting for the next drain.
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// DrainOnce runs handle for each flagged guild. Errors and panics are
// logged per guild and never stop the remaining guilds.
func (r *Relay) DrainOnce(ctx context.Context, handle Handler) {
	for _, guildID := range r.Drain() {
		if err := r.safeHandle(ctx, handle, guildID); err != nil {
			r.log.Error().Err(err).Str("guild", guildID).Msg("Failed to process finished song")
		}
	}
}

func (r *Relay) safeHandle(ctx context.Context, handle Handler, guildID string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handle(ctx, guildID)
}

// Run drains on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration, handle Handler) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", interval).Msg("Completion relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Completion relay stopped")
			return nil
		case <-ticker.C:
			r.DrainOnce(ctx, handle)
		}
	}
}
