package queue

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func song(title string) Song {
	return NewSong("https://cdn.example/"+title, title, 3*time.Minute, "", "", Requester{ID: "u1", Name: "tester"})
}

func TestStoreDequeueIsFIFO(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var want []string
	for i := 0; i < 25; i++ {
		title := fmt.Sprintf("track-%02d", i)
		want = append(want, title)
		assert.Equal(t, i+1, s.Enqueue("g1", song(title)))
	}

	var got []string
	for {
		next, ok := s.Dequeue("g1")
		if !ok {
			break
		}
		got = append(got, next.Title)
	}
	assert.Equal(t, want, got)
}

func TestStoreDequeueUnknownGuildDoesNotCreateQueue(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, ok := s.Dequeue("nobody")
	assert.False(t, ok)
	assert.Empty(t, s.Guilds())
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pos       int
		wantTitle string
		wantErr   bool
	}{
		{name: "zero", pos: 0, wantErr: true},
		{name: "negative", pos: -1, wantErr: true},
		{name: "past end", pos: 4, wantErr: true},
		{name: "first", pos: 1, wantTitle: "a"},
		{name: "middle", pos: 2, wantTitle: "b"},
		{name: "last", pos: 3, wantTitle: "c"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore()
			for _, title := range []string{"a", "b", "c"} {
				s.Enqueue("g1", song(title))
			}

			removed, err := s.Remove("g1", tc.pos)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRange)
				assert.Equal(t, 3, s.Len("g1"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTitle, removed.Title)
			assert.Equal(t, 2, s.Len("g1"))
			for _, left := range s.Snapshot("g1").Pending {
				assert.NotEqual(t, tc.wantTitle, left.Title)
			}
		})
	}
}

func TestStoreClearKeepsCurrent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Enqueue("g1", song("a"))
	s.Enqueue("g1", song("b"))
	s.SetCurrent("g1", song("playing"))

	s.Clear("g1")

	assert.Equal(t, 0, s.Len("g1"))
	current, ok := s.Current("g1")
	require.True(t, ok)
	assert.Equal(t, "playing", current.Title)
	assert.True(t, s.HasWork("g1"))

	s.ClearCurrent("g1")
	assert.False(t, s.HasWork("g1"))
}

func TestStoreSetVolume(t *testing.T) {
	t.Parallel()

	s := NewStore()
	assert.Equal(t, DefaultVolume, s.Volume("g1"))

	require.NoError(t, s.SetVolume("g1", 0))
	require.NoError(t, s.SetVolume("g1", 1))
	assert.ErrorIs(t, s.SetVolume("g1", 1.5), ErrOutOfRange)
	assert.ErrorIs(t, s.SetVolume("g1", -0.1), ErrOutOfRange)
	assert.ErrorIs(t, s.SetVolume("g1", math.NaN()), ErrOutOfRange)
	assert.Equal(t, 1.0, s.Volume("g1"))
}

func TestStoreDefaultVolumeOption(t *testing.T) {
	t.Parallel()

	s := NewStore(WithDefaultVolume(0.8))
	s.Enqueue("g1", song("a"))
	assert.Equal(t, 0.8, s.Volume("g1"))

	ignored := NewStore(WithDefaultVolume(3))
	assert.Equal(t, DefaultVolume, ignored.Volume("g1"))
}

func TestStoreIdleSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	s := NewStore(WithClock(func() time.Time { return clock }))

	clock = now.Add(-10 * time.Minute)
	s.TouchActivity("stale")
	clock = now.Add(-time.Minute)
	s.TouchActivity("fresh")
	s.Enqueue("untouched", song("a"))

	assert.Equal(t, []string{"stale"}, s.IdleSince(now.Add(-5*time.Minute)))
	assert.Equal(t, []string{"fresh", "stale", "untouched"}, s.Guilds())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Enqueue("g1", song("a"))
	snap := s.Snapshot("g1")
	snap.Pending[0].Title = "changed"

	again := s.Snapshot("g1")
	assert.Equal(t, "a", again.Pending[0].Title)
}

func TestStoreLastActivity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))

	_, ok := s.LastActivity("g1")
	assert.False(t, ok)

	s.Enqueue("g1", song("a"))
	_, ok = s.LastActivity("g1")
	assert.False(t, ok, "enqueue alone does not count as activity")

	s.TouchActivity("g1")
	last, ok := s.LastActivity("g1")
	require.True(t, ok)
	assert.Equal(t, now, last)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, UnknownDuration, FormatDuration(0))
	assert.Equal(t, "0:05", FormatDuration(5*time.Second))
	assert.Equal(t, "3:07", FormatDuration(3*time.Minute+7*time.Second))
	assert.Equal(t, "1:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestNewSongDefaults(t *testing.T) {
	t.Parallel()

	a := NewSong("https://radio.example/live", "", 0, "", "", Requester{})
	b := NewSong("https://radio.example/live", "", 0, "", "", Requester{})

	assert.Equal(t, "Unknown Title", a.Title)
	assert.Equal(t, "https://radio.example/live", a.URL)
	assert.Equal(t, UnknownDuration, a.Duration)
	assert.NotEqual(t, a.ID, b.ID)
}
