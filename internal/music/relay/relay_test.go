package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainSnapshotsAndClears(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	r.Signal("b")
	r.Signal("a")
	r.Signal("b")

	assert.Equal(t, 2, r.Pending())
	assert.Equal(t, []string{"a", "b"}, r.Drain())
	assert.Equal(t, 0, r.Pending())
	assert.Nil(t, r.Drain())
}

func TestDrainOnceConsumesEachFlagOnce(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	r.Signal("g1")
	r.Signal("g2")

	calls := map[string]int{}
	r.DrainOnce(context.Background(), func(_ context.Context, guildID string) error {
		calls[guildID]++
		return nil
	})
	r.DrainOnce(context.Background(), func(_ context.Context, guildID string) error {
		calls[guildID]++
		return nil
	})

	assert.Equal(t, map[string]int{"g1": 1, "g2": 1}, calls)
}

func TestDrainOnceIsolatesFailures(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	for _, id := range []string{"err", "ok", "panic"} {
		r.Signal(id)
	}

	var handled []string
	r.DrainOnce(context.Background(), func(_ context.Context, guildID string) error {
		handled = append(handled, guildID)
		switch guildID {
		case "err":
			return errors.New("boom")
		case "panic":
			panic("transport exploded")
		}
		return nil
	})

	assert.Equal(t, []string{"err", "ok", "panic"}, handled)
}

func TestSignalDuringDrainIsSeenNextCycle(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	r.Signal("g1")

	var second []string
	r.DrainOnce(context.Background(), func(_ context.Context, guildID string) error {
		r.Signal(guildID)
		return nil
	})
	r.DrainOnce(context.Background(), func(_ context.Context, guildID string) error {
		second = append(second, guildID)
		return nil
	})

	assert.Equal(t, []string{"g1"}, second)
}

func TestConcurrentSignalsAreNotLost(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Signal(string(rune('A' + i%26)))
		}(i)
	}

	seen := map[string]bool{}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	collect := func() {
		for _, id := range r.Drain() {
			seen[id] = true
		}
	}
	for {
		select {
		case <-done:
			collect()
			assert.Len(t, seen, 26)
			return
		default:
			collect()
		}
	}
}

func TestRunDrainsUntilCancelled(t *testing.T) {
	t.Parallel()

	r := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	handled := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx, 5*time.Millisecond, func(_ context.Context, guildID string) error {
			handled <- guildID
			return nil
		})
	}()

	r.Signal("g1")
	select {
	case id := <-handled:
		assert.Equal(t, "g1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("flag was not drained")
	}

	cancel()
	require.NoError(t, <-errCh)
}
