package player

import (
	"context"

	"github.com/keshon/fzmusic/internal/music/queue"
)

// Voice is a live voice connection for one guild.
type Voice interface {
	ChannelID() string
	Move(ctx context.Context, channelID string) error
	// Play starts song and returns once playback is running. onComplete is
	// called from the transport's own goroutine after the song ends or is
	// stopped, and after IsPlaying has turned false.
	Play(song queue.Song, volume float64, onComplete func()) error
	Stop()
	Pause()
	Resume()
	SetVolume(v float64)
	Disconnect(ctx context.Context) error
	IsConnected() bool
	IsPlaying() bool
	IsPaused() bool
}

// Connector opens voice connections.
type Connector interface {
	Connect(ctx context.Context, guildID, channelID string) (Voice, error)
}

// Notifier renders system-initiated messages into a text channel.
type Notifier interface {
	CanSend(guildID, channelID string) bool
	FallbackChannel(guildID string) (string, bool)
	NowPlaying(channelID string, song queue.Song)
	QueueEmpty(channelID string)
}

// Signaler receives completion signals; see relay.Relay.
type Signaler interface {
	Signal(guildID string)
}
