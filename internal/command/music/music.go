package music

import (
	"context"

	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/cmd"
	"github.com/rs/zerolog"
)

// Player is the playback surface the commands drive. *player.Coordinator
// implements it.
type Player interface {
	JoinVoice(ctx context.Context, guildID, channelID string) error
	Bind(guildID, channelID string)
	EnqueueAndMaybeStart(ctx context.Context, guildID, channelID string, song queue.Song) (player.EnqueueResult, error)
	Skip(guildID string) (queue.Song, error)
	Stop(guildID string) error
	Pause(guildID string) error
	Resume(guildID string) error
	SetVolume(guildID string, v float64) error
	Remove(guildID string, pos int) (queue.Song, error)
	Clear(guildID string)
	Disconnect(ctx context.Context, guildID string) error
	Snapshot(guildID string) player.Snapshot
	NowPlaying(guildID string) (queue.Song, error)
	Connected(guildID string) bool
}

// VoiceLocator finds the voice channel a user sits in. It returns
// player.ErrNotInVoice when there is none.
type VoiceLocator interface {
	UserVoiceChannel(guildID, userID string) (string, error)
}

type Resolver interface {
	Resolve(ctx context.Context, input string, requester queue.Requester) (queue.Song, error)
}

// Deps are shared by every music command.
type Deps struct {
	Player   Player
	Voice    VoiceLocator
	Resolver Resolver
	PageSize int
	Registry *cmd.Registry
}

// Register adds every music command to deps.Registry, wrapped in mws.
func Register(deps *Deps, logger zerolog.Logger) {
	mws := command.Defaults(logger)
	deps.Registry.MustRegister(
		cmd.Apply(&PlayCommand{deps}, mws...),
		cmd.Apply(&SkipCommand{deps}, mws...),
		cmd.Apply(&QueueCommand{deps}, mws...),
		cmd.Apply(&NowPlayingCommand{deps}, mws...),
		cmd.Apply(&StopCommand{deps}, mws...),
		cmd.Apply(&PauseCommand{deps}, mws...),
		cmd.Apply(&ResumeCommand{deps}, mws...),
		cmd.Apply(&VolumeCommand{deps}, mws...),
		cmd.Apply(&RemoveCommand{deps}, mws...),
		cmd.Apply(&ClearCommand{deps}, mws...),
		cmd.Apply(&DisconnectCommand{deps}, mws...),
		cmd.Apply(&HelpCommand{deps}, mws...),
	)
}

const (
	msgNotInVoice     = "You need to be in a voice channel to use this command."
	msgNothingPlaying = "Nothing is playing right now."
	msgNotConnected   = "Not connected to a voice channel."
)
