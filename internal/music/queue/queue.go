package queue

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// DefaultVolume is the playback volume of a fresh queue.
const DefaultVolume = 0.5

var ErrOutOfRange = errors.New("value out of range")

// Queue holds one guild's pending songs and the song currently playing.
type Queue struct {
	mu           sync.Mutex
	pending      []Song
	current      *Song
	volume       float64
	lastActivity time.Time
}

func newQueue(volume float64) *Queue {
	return &Queue{
		pending: make([]Song, 0),
		volume:  volume,
	}
}

func (q *Queue) push(s Song) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, s)
	return len(q.pending)
}

func (q *Queue) pop() (Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Song{}, false
	}
	s := q.pending[0]
	q.pending = q.pending[1:]
	return s, true
}

func (q *Queue) remove(pos int) (Song, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if pos < 1 || pos > len(q.pending) {
		return Song{}, ErrOutOfRange
	}
	s := q.pending[pos-1]
	q.pending = slices.Delete(q.pending, pos-1, pos)
	return s, nil
}

func (q *Queue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = make([]Song, 0)
}

func (q *Queue) setVolume(v float64) error {
	if !(v >= 0 && v <= 1) {
		return ErrOutOfRange
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = v
	return nil
}

func (q *Queue) touch(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastActivity = now
}

func (q *Queue) setCurrent(s *Song) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = s
}

func (q *Queue) snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	snap := Snapshot{
		Pending:      slices.Clone(q.pending),
		Volume:       q.volume,
		LastActivity: q.lastActivity,
	}
	if q.current != nil {
		c := *q.current
		snap.Current = &c
	}
	return snap
}

// Snapshot is a point-in-time copy of a queue for display.
type Snapshot struct {
	Current      *Song
	Pending      []Song
	Volume       float64
	LastActivity time.Time
}
