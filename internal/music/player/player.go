package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/util"
	"github.com/rs/zerolog"
)

const shutdownWorkers = 4

var (
	ErrNotInVoice     = errors.New("you need to be in a voice channel")
	ErrNothingPlaying = errors.New("nothing is playing right now")
	ErrNotConnected   = errors.New("not connected to a voice channel")
	ErrNotPaused      = errors.New("the music is not paused")
	ErrTransport      = errors.New("voice transport error")
	ErrNoPlayable     = errors.New("no song in the queue could be played")
)

// EnqueueResult tells the command layer what happened to an enqueued song.
type EnqueueResult struct {
	Song     queue.Song
	Started  bool
	Position int
	QueueLen int
}

// Snapshot is the display view of a guild.
type Snapshot struct {
	GuildID string
	State   State
	queue.Snapshot
}

type guild struct {
	mu      sync.Mutex
	voice   Voice
	binding string
}

// Coordinator owns playback for every guild. Each guild is driven under its
// own lock, so guilds never wait on each other.
type Coordinator struct {
	mu     sync.Mutex
	guilds map[string]*guild

	store     *queue.Store
	connector Connector
	notifier  Notifier
	signals   Signaler
	log       zerolog.Logger
}

func New(store *queue.Store, connector Connector, notifier Notifier, signals Signaler, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		guilds:    make(map[string]*guild),
		store:     store,
		connector: connector,
		notifier:  notifier,
		signals:   signals,
		log:       logger.With().Str("component", "player").Logger(),
	}
}

// lock returns the guild's state locked, creating it if needed.
func (c *Coordinator) lock(guildID string) *guild {
	for {
		c.mu.Lock()
		g, ok := c.guilds[guildID]
		if !ok {
			g = &guild{}
			c.guilds[guildID] = g
		}
		c.mu.Unlock()

		g.mu.Lock()
		c.mu.Lock()
		live := c.guilds[guildID] == g
		c.mu.Unlock()
		if live {
			return g
		}
		g.mu.Unlock()
	}
}

// peek locks existing guild state without creating it.
func (c *Coordinator) peek(guildID string) (*guild, bool) {
	c.mu.Lock()
	g, ok := c.guilds[guildID]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	c.mu.Lock()
	live := c.guilds[guildID] == g
	c.mu.Unlock()
	if !live {
		g.mu.Unlock()
		return nil, false
	}
	return g, true
}

// forget drops the guild's entry. The caller holds g.mu.
func (c *Coordinator) forget(guildID string, g *guild) {
	c.mu.Lock()
	if c.guilds[guildID] == g {
		delete(c.guilds, guildID)
	}
	c.mu.Unlock()
}

// JoinVoice connects to channelID, or moves the existing connection there.
func (c *Coordinator) JoinVoice(ctx context.Context, guildID, channelID string) error {
	if channelID == "" {
		return ErrNotInVoice
	}

	g := c.lock(guildID)
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsConnected() {
		v, err := c.connector.Connect(ctx, guildID, channelID)
		if err != nil {
			return fmt.Errorf("%w: join %s: %w", ErrTransport, channelID, err)
		}
		g.voice = v
		c.store.TouchActivity(guildID)
		c.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("Joined voice channel")
		return nil
	}

	if g.voice.ChannelID() != channelID {
		if err := g.voice.Move(ctx, channelID); err != nil {
			return fmt.Errorf("%w: move to %s: %w", ErrTransport, channelID, err)
		}
		c.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("Moved to voice channel")
	}
	c.store.TouchActivity(guildID)
	return nil
}

// Bind remembers where system messages for the guild should go.
func (c *Coordinator) Bind(guildID, channelID string) {
	g := c.lock(guildID)
	defer g.mu.Unlock()
	g.binding = channelID
}

// Binding returns the last command channel recorded for the guild.
func (c *Coordinator) Binding(guildID string) (string, bool) {
	g, ok := c.peek(guildID)
	if !ok {
		return "", false
	}
	defer g.mu.Unlock()
	return g.binding, g.binding != ""
}

// AdvanceQueue starts the next pending song unless something is already
// playing. channelID receives the notifications.
func (c *Coordinator) AdvanceQueue(ctx context.Context, guildID, channelID string) error {
	g := c.lock(guildID)
	defer g.mu.Unlock()
	return c.advance(ctx, guildID, g, channelID)
}

func (c *Coordinator) advance(ctx context.Context, guildID string, g *guild, channelID string) error {
	if g.voice == nil || !g.voice.IsConnected() {
		c.log.Info().Str("guild", guildID).Msg("Voice client disconnected, not playing next song")
		return nil
	}
	if g.voice.IsPlaying() || g.voice.IsPaused() {
		c.log.Debug().Str("guild", guildID).Msg("Already playing something, not starting a new song")
		return nil
	}

	c.store.TouchActivity(guildID)
	previous, hadPrevious := c.store.Current(guildID)

	for {
		song, ok := c.store.Dequeue(guildID)
		if !ok {
			return c.finish(ctx, guildID, g, channelID)
		}

		c.store.SetCurrent(guildID, song)
		volume := c.store.Volume(guildID)

		err := g.voice.Play(song, volume, func() { c.signals.Signal(guildID) })
		if err != nil {
			c.log.Error().Err(err).Str("guild", guildID).Str("title", song.Title).Msg("Skipping song, playback failed to start")
			continue
		}

		c.log.Info().Str("guild", guildID).Str("title", song.Title).Int("queue_len", c.store.Len(guildID)).Msg("Now playing")
		if (!hadPrevious || previous.ID != song.ID) && channelID != "" {
			c.notifier.NowPlaying(channelID, song)
		}
		return nil
	}
}

// finish tears the guild down once the queue has run dry.
func (c *Coordinator) finish(ctx context.Context, guildID string, g *guild, channelID string) error {
	c.log.Info().Str("guild", guildID).Msg("Queue is empty, stopping playback")
	if channelID != "" {
		c.notifier.QueueEmpty(channelID)
	}

	c.store.ClearCurrent(guildID)
	g.binding = ""

	v := g.voice
	g.voice = nil
	c.store.Delete(guildID)
	c.forget(guildID, g)

	if v != nil && v.IsConnected() {
		if err := v.Disconnect(ctx); err != nil {
			c.log.Error().Err(err).Str("guild", guildID).Msg("Error disconnecting")
			return fmt.Errorf("%w: disconnect: %w", ErrTransport, err)
		}
	}
	return nil
}

// EnqueueAndMaybeStart queues song and starts playback if the guild is silent.
// Without a voice connection nothing is queued. Started is set only when song
// itself is now playing; ErrNoPlayable means every queued song failed to start
// and the guild was torn down.
func (c *Coordinator) EnqueueAndMaybeStart(ctx context.Context, guildID, channelID string, song queue.Song) (EnqueueResult, error) {
	g := c.lock(guildID)
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsConnected() {
		return EnqueueResult{Song: song}, ErrNotConnected
	}

	c.store.TouchActivity(guildID)
	pos := c.store.Enqueue(guildID, song)
	c.log.Info().Str("guild", guildID).Str("title", song.Title).Int("position", pos).Msg("Song added to queue")

	if g.voice.IsPlaying() || g.voice.IsPaused() {
		return EnqueueResult{Song: song, Position: pos, QueueLen: c.store.Len(guildID)}, nil
	}

	if err := c.advance(ctx, guildID, g, channelID); err != nil {
		return EnqueueResult{Song: song}, err
	}
	if g.voice == nil {
		return EnqueueResult{Song: song}, ErrNoPlayable
	}

	snap := c.store.Snapshot(guildID)
	res := EnqueueResult{Song: song, QueueLen: len(snap.Pending)}
	if snap.Current != nil && snap.Current.ID == song.ID {
		res.Started = true
		return res, nil
	}
	for i, s := range snap.Pending {
		if s.ID == song.ID {
			res.Position = i + 1
			return res, nil
		}
	}
	return res, ErrNoPlayable
}

// Skip stops the current song. The completion signal advances the queue.
func (c *Coordinator) Skip(guildID string) (queue.Song, error) {
	g, ok := c.peek(guildID)
	if !ok {
		return queue.Song{}, ErrNothingPlaying
	}
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsPlaying() {
		return queue.Song{}, ErrNothingPlaying
	}

	c.store.TouchActivity(guildID)
	current, ok := c.store.Current(guildID)
	if !ok {
		current = queue.Song{Title: "Unknown"}
	}
	g.voice.Stop()
	c.log.Info().Str("guild", guildID).Str("title", current.Title).Msg("Song skipped")
	return current, nil
}

// Stop clears the queue and stops playback, staying in the voice channel.
func (c *Coordinator) Stop(guildID string) error {
	g, ok := c.peek(guildID)
	if !ok {
		return ErrNothingPlaying
	}
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsPlaying() {
		return ErrNothingPlaying
	}

	c.store.TouchActivity(guildID)
	c.store.Clear(guildID)
	c.store.ClearCurrent(guildID)
	g.voice.Stop()
	c.log.Info().Str("guild", guildID).Msg("Playback stopped and queue cleared")
	return nil
}

func (c *Coordinator) Pause(guildID string) error {
	g, ok := c.peek(guildID)
	if !ok {
		return ErrNothingPlaying
	}
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsPlaying() {
		return ErrNothingPlaying
	}
	c.store.TouchActivity(guildID)
	g.voice.Pause()
	return nil
}

func (c *Coordinator) Resume(guildID string) error {
	g, ok := c.peek(guildID)
	if !ok {
		return ErrNotConnected
	}
	defer g.mu.Unlock()

	if g.voice == nil {
		return ErrNotConnected
	}
	c.store.TouchActivity(guildID)
	if !g.voice.IsPaused() {
		return ErrNotPaused
	}
	g.voice.Resume()
	return nil
}

// SetVolume sets the guild volume (0..1) for the current and future songs.
func (c *Coordinator) SetVolume(guildID string, v float64) error {
	g, ok := c.peek(guildID)
	if !ok {
		return ErrNotConnected
	}
	defer g.mu.Unlock()

	if g.voice == nil {
		return ErrNotConnected
	}
	c.store.TouchActivity(guildID)
	if err := c.store.SetVolume(guildID, v); err != nil {
		return err
	}
	g.voice.SetVolume(v)
	return nil
}

// Remove drops the pending song at the 1-based position pos.
func (c *Coordinator) Remove(guildID string, pos int) (queue.Song, error) {
	g := c.lock(guildID)
	defer g.mu.Unlock()

	c.store.TouchActivity(guildID)
	return c.store.Remove(guildID, pos)
}

func (c *Coordinator) Clear(guildID string) {
	g := c.lock(guildID)
	defer g.mu.Unlock()

	c.store.TouchActivity(guildID)
	c.store.Clear(guildID)
}

// Disconnect leaves voice and discards the guild's queue.
func (c *Coordinator) Disconnect(ctx context.Context, guildID string) error {
	g, ok := c.peek(guildID)
	if !ok {
		return ErrNotConnected
	}
	defer g.mu.Unlock()

	if g.voice == nil {
		return ErrNotConnected
	}
	return c.teardown(ctx, guildID, g)
}

func (c *Coordinator) teardown(ctx context.Context, guildID string, g *guild) error {
	v := g.voice
	g.voice = nil
	g.binding = ""
	c.store.Delete(guildID)
	c.forget(guildID, g)

	if v == nil {
		return nil
	}
	if err := v.Disconnect(ctx); err != nil {
		return fmt.Errorf("%w: disconnect: %w", ErrTransport, err)
	}
	c.log.Info().Str("guild", guildID).Msg("Disconnected from voice channel")
	return nil
}

// HandleCompletion is run by the completion relay for each finished song.
func (c *Coordinator) HandleCompletion(ctx context.Context, guildID string) error {
	g, ok := c.peek(guildID)
	if !ok {
		return nil
	}
	defer g.mu.Unlock()

	target, ok := c.target(guildID, g)
	if !ok {
		c.log.Warn().Str("guild", guildID).Msg("No text channel to report to, ignoring finished song")
		return nil
	}
	if g.voice == nil || g.voice.IsPlaying() {
		return nil
	}

	if c.store.HasWork(guildID) {
		return c.advance(ctx, guildID, g, target)
	}
	g.binding = ""
	return nil
}

func (c *Coordinator) target(guildID string, g *guild) (string, bool) {
	if g.binding != "" && c.notifier.CanSend(guildID, g.binding) {
		return g.binding, true
	}
	return c.notifier.FallbackChannel(guildID)
}

// Connected reports whether the guild has a live voice connection.
func (c *Coordinator) Connected(guildID string) bool {
	g, ok := c.peek(guildID)
	if !ok {
		return false
	}
	defer g.mu.Unlock()
	return g.voice != nil && g.voice.IsConnected()
}

// Evict disconnects the guild and discards its state if it is connected and
// its last activity is still before idleBefore. The check and the teardown
// happen under the guild lock, so a command that lands after the reaper's
// scan keeps the guild alive. It reports whether the guild was evicted.
func (c *Coordinator) Evict(ctx context.Context, guildID string, idleBefore time.Time) (bool, error) {
	g, ok := c.peek(guildID)
	if !ok {
		return false, nil
	}
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsConnected() {
		return false, nil
	}
	last, ok := c.store.LastActivity(guildID)
	if !ok || !last.Before(idleBefore) {
		return false, nil
	}
	c.log.Info().Str("guild", guildID).Time("last_activity", last).Msg("Disconnecting idle guild")
	return true, c.teardown(ctx, guildID, g)
}

func (c *Coordinator) State(guildID string) State {
	g, ok := c.peek(guildID)
	if !ok {
		return StateIdle
	}
	defer g.mu.Unlock()
	return stateOf(g)
}

func stateOf(g *guild) State {
	switch {
	case g.voice == nil || !g.voice.IsConnected():
		return StateIdle
	case g.voice.IsPaused():
		return StatePaused
	case g.voice.IsPlaying():
		return StatePlaying
	default:
		return StateConnectedSilent
	}
}

// Snapshot returns the current song and pending songs in order.
func (c *Coordinator) Snapshot(guildID string) Snapshot {
	state := StateIdle
	if g, ok := c.peek(guildID); ok {
		state = stateOf(g)
		g.mu.Unlock()
	}
	return Snapshot{
		GuildID:  guildID,
		State:    state,
		Snapshot: c.store.Snapshot(guildID),
	}
}

// NowPlaying returns the song being played. Playback position is not tracked.
func (c *Coordinator) NowPlaying(guildID string) (queue.Song, error) {
	g, ok := c.peek(guildID)
	if !ok {
		return queue.Song{}, ErrNothingPlaying
	}
	defer g.mu.Unlock()

	if g.voice == nil || !g.voice.IsPlaying() {
		return queue.Song{}, ErrNothingPlaying
	}
	c.store.TouchActivity(guildID)
	current, ok := c.store.Current(guildID)
	if !ok {
		return queue.Song{}, ErrNothingPlaying
	}
	return current, nil
}

// Guilds lists every guild with playback state or a queue.
func (c *Coordinator) Guilds() []string {
	seen := map[string]struct{}{}
	ids := c.store.Guilds()
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	c.mu.Lock()
	for id := range c.guilds {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()
	return ids
}

// Shutdown disconnects every guild.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.guilds))
	for id := range c.guilds {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	_ = util.Parallel(ctx, ids, shutdownWorkers, func(ctx context.Context, id string) error {
		g, ok := c.peek(id)
		if !ok {
			return nil
		}
		defer g.mu.Unlock()
		if g.voice != nil {
			if err := c.teardown(ctx, id, g); err != nil {
				c.log.Warn().Err(err).Str("guild", id).Msg("Failed to disconnect on shutdown")
			}
		}
		return nil
	})
}
