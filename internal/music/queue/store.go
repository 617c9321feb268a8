package queue

import (
	"slices"
	"sync"
	"time"
)

// Store is the registry of per-guild queues. Mutating calls create the
// guild's queue on first use; read calls never do.
type Store struct {
	mu            sync.RWMutex
	queues        map[string]*Queue
	defaultVolume float64
	now           func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDefaultVolume sets the volume new queues start with.
func WithDefaultVolume(v float64) Option {
	return func(s *Store) {
		if v >= 0 && v <= 1 {
			s.defaultVolume = v
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		queues:        make(map[string]*Queue),
		defaultVolume: DefaultVolume,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) getOrCreate(guildID string) *Queue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.queues[guildID]; ok {
		return q
	}
	q := newQueue(s.defaultVolume)
	s.queues[guildID] = q
	return q
}

func (s *Store) get(guildID string) (*Queue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.queues[guildID]
	return q, ok
}

// Enqueue appends a song and returns its 1-based position in the pending list.
func (s *Store) Enqueue(guildID string, song Song) int {
	return s.getOrCreate(guildID).push(song)
}

// Dequeue pops the oldest pending song.
func (s *Store) Dequeue(guildID string) (Song, bool) {
	q, ok := s.get(guildID)
	if !ok {
		return Song{}, false
	}
	return q.pop()
}

// Remove deletes the song at the 1-based position pos.
func (s *Store) Remove(guildID string, pos int) (Song, error) {
	return s.getOrCreate(guildID).remove(pos)
}

// Clear drops every pending song. The current song is left alone.
func (s *Store) Clear(guildID string) {
	s.getOrCreate(guildID).clear()
}

func (s *Store) SetVolume(guildID string, v float64) error {
	return s.getOrCreate(guildID).setVolume(v)
}

func (s *Store) Volume(guildID string) float64 {
	q, ok := s.get(guildID)
	if !ok {
		return s.defaultVolume
	}
	return q.snapshot().Volume
}

func (s *Store) TouchActivity(guildID string) {
	s.getOrCreate(guildID).touch(s.now())
}

func (s *Store) Current(guildID string) (Song, bool) {
	q, ok := s.get(guildID)
	if !ok {
		return Song{}, false
	}
	snap := q.snapshot()
	if snap.Current == nil {
		return Song{}, false
	}
	return *snap.Current, true
}

func (s *Store) SetCurrent(guildID string, song Song) {
	s.getOrCreate(guildID).setCurrent(&song)
}

func (s *Store) ClearCurrent(guildID string) {
	if q, ok := s.get(guildID); ok {
		q.setCurrent(nil)
	}
}

// Len reports the number of pending songs.
func (s *Store) Len(guildID string) int {
	q, ok := s.get(guildID)
	if !ok {
		return 0
	}
	return len(q.snapshot().Pending)
}

// HasWork reports whether the guild has a current or pending song.
func (s *Store) HasWork(guildID string) bool {
	q, ok := s.get(guildID)
	if !ok {
		return false
	}
	snap := q.snapshot()
	return snap.Current != nil || len(snap.Pending) > 0
}

func (s *Store) Snapshot(guildID string) Snapshot {
	q, ok := s.get(guildID)
	if !ok {
		return Snapshot{Volume: s.defaultVolume}
	}
	return q.snapshot()
}

// Delete discards the guild's queue entirely.
func (s *Store) Delete(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, guildID)
}

// Guilds returns the IDs of every guild with a queue, sorted.
func (s *Store) Guilds() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.queues))
	for id := range s.queues {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// IdleSince returns guilds whose last recorded activity is before deadline.
// Guilds that were never touched are skipped.
func (s *Store) IdleSince(deadline time.Time) []string {
	s.mu.RLock()
	queues := make(map[string]*Queue, len(s.queues))
	for id, q := range s.queues {
		queues[id] = q
	}
	s.mu.RUnlock()

	var idle []string
	for id, q := range queues {
		last := q.snapshot().LastActivity
		if last.IsZero() {
			continue
		}
		if last.Before(deadline) {
			idle = append(idle, id)
		}
	}
	slices.Sort(idle)
	return idle
}

// LastActivity returns when the guild was last touched. ok is false when
// the guild has no queue or was never touched.
func (s *Store) LastActivity(guildID string) (time.Time, bool) {
	q, ok := s.get(guildID)
	if !ok {
		return time.Time{}, false
	}
	last := q.snapshot().LastActivity
	return last, !last.IsZero()
}

// Now exposes the store clock so collaborators share one notion of time.
func (s *Store) Now() time.Time {
	return s.now()
}
