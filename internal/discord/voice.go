package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/internal/music/stream"
	"github.com/keshon/fzmusic/pkg/retrylimit"
	"github.com/rs/zerolog"
)

// voiceLink is the part of a discordgo voice connection a session drives.
type voiceLink interface {
	ChannelID() string
	ChangeChannel(channelID string) error
	Speaking(on bool) error
	Send() chan<- []byte
	Ready() bool
	Disconnect() error
}

type dgLink struct{ vc *discordgo.VoiceConnection }

func (l dgLink) ChannelID() string {
	l.vc.RLock()
	defer l.vc.RUnlock()
	return l.vc.ChannelID
}

func (l dgLink) ChangeChannel(channelID string) error { return l.vc.ChangeChannel(channelID, false, true) }
func (l dgLink) Speaking(on bool) error               { return l.vc.Speaking(on) }
func (l dgLink) Send() chan<- []byte                  { return l.vc.OpusSend }
func (l dgLink) Disconnect() error                    { return l.vc.Disconnect() }

func (l dgLink) Ready() bool {
	l.vc.RLock()
	defer l.vc.RUnlock()
	return l.vc.Ready
}

// restError lets retrylimit see the HTTP status of a failed gateway call.
type restError struct{ *discordgo.RESTError }

func (e restError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func (e restError) Unwrap() error { return e.RESTError }

func classify(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
			return retrylimit.Fatal(err)
		}
		return restError{rest}
	}
	return err
}

// VoiceConnector joins voice channels through the gateway. Joins are
// throttled across guilds and retried.
type VoiceConnector struct {
	join    func(guildID, channelID string) (voiceLink, error)
	open    stream.Opener
	encoder func() (stream.Encoder, error)
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
	log     zerolog.Logger
}

func NewVoiceConnector(s *discordgo.Session, ffmpegPath string, attempts int, logger zerolog.Logger) *VoiceConnector {
	retry := retrylimit.DefaultRetryConfig()
	retry.MaxAttempts = attempts
	retry.InitialDelay = time.Second

	return &VoiceConnector{
		join: func(guildID, channelID string) (voiceLink, error) {
			vc, err := s.ChannelVoiceJoin(guildID, channelID, false, true)
			if err != nil {
				return nil, err
			}
			return dgLink{vc}, nil
		},
		open:    stream.FFmpeg(ffmpegPath),
		encoder: stream.NewOpusEncoder,
		limiter: retrylimit.NewAdaptiveLimiter(2, 0.5, 5, 0.5, 0.5),
		retry:   retry,
		log:     logger,
	}
}

func (c *VoiceConnector) Connect(ctx context.Context, guildID, channelID string) (player.Voice, error) {
	cfg := c.retry
	logger := c.log.With().Str("guild", guildID).Str("channel", channelID).Logger()
	cfg.Logger = &logger

	var link voiceLink
	err := retrylimit.WithRetryConfig(ctx, func() error {
		l, err := c.join(guildID, channelID)
		if err != nil {
			return classify(err)
		}
		link = l
		return nil
	}, c.limiter, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	logger.Info().Msg("Joined voice channel")
	return &voiceSession{
		guildID:   guildID,
		link:      link,
		open:      c.open,
		encoder:   c.encoder,
		log:       logger,
		connected: true,
	}, nil
}

// voiceSession plays one song at a time over a voice link.
type voiceSession struct {
	guildID string
	link    voiceLink
	open    stream.Opener
	encoder func() (stream.Encoder, error)
	log     zerolog.Logger

	mu        sync.Mutex
	playback  *stream.Playback
	connected bool
}

func (v *voiceSession) ChannelID() string { return v.link.ChannelID() }

func (v *voiceSession) Move(_ context.Context, channelID string) error {
	if err := v.link.ChangeChannel(channelID); err != nil {
		return fmt.Errorf("failed to move to channel %s: %w", channelID, err)
	}
	return nil
}

func (v *voiceSession) Play(song queue.Song, volume float64, onComplete func()) error {
	src := stream.NewRecoveryStream(v.open, song.StreamURL, v.log)
	if err := src.Open(); err != nil {
		return fmt.Errorf("failed to open stream for %q: %w", song.Title, err)
	}
	enc, err := v.encoder()
	if err != nil {
		src.Close()
		return err
	}

	v.mu.Lock()
	if v.playback != nil {
		v.playback.Stop()
	}
	pb := stream.Start(src, enc, v.link.Send(), volume)
	v.playback = pb
	v.mu.Unlock()

	if err := v.link.Speaking(true); err != nil {
		v.log.Debug().Err(err).Msg("Speaking(true) failed")
	}
	v.log.Info().Str("title", song.Title).Msg("Streaming to voice channel")

	go v.watch(pb, song, onComplete)
	return nil
}

func (v *voiceSession) watch(pb *stream.Playback, song queue.Song, onComplete func()) {
	<-pb.Done()
	if err := pb.Err(); err != nil {
		v.log.Warn().Err(err).Str("title", song.Title).Msg("Playback ended with error")
	} else {
		v.log.Debug().Str("title", song.Title).Msg("Playback finished")
	}

	v.mu.Lock()
	if v.playback == pb {
		v.playback = nil
	}
	v.mu.Unlock()

	if err := v.link.Speaking(false); err != nil {
		v.log.Debug().Err(err).Msg("Speaking(false) failed")
	}
	if onComplete != nil {
		onComplete()
	}
}

func (v *voiceSession) current() *stream.Playback {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playback == nil {
		return nil
	}
	select {
	case <-v.playback.Done():
		return nil
	default:
		return v.playback
	}
}

func (v *voiceSession) Stop() {
	if pb := v.current(); pb != nil {
		pb.Stop()
	}
}

func (v *voiceSession) Pause() {
	if pb := v.current(); pb != nil {
		pb.Pause()
	}
}

func (v *voiceSession) Resume() {
	if pb := v.current(); pb != nil {
		pb.Resume()
	}
}

func (v *voiceSession) SetVolume(vol float64) {
	if pb := v.current(); pb != nil {
		pb.SetVolume(vol)
	}
}

func (v *voiceSession) Disconnect(ctx context.Context) error {
	v.mu.Lock()
	pb := v.playback
	v.connected = false
	v.mu.Unlock()

	if pb != nil {
		pb.Stop()
		select {
		case <-pb.Done():
		case <-ctx.Done():
		}
	}
	if err := v.link.Disconnect(); err != nil {
		return fmt.Errorf("voice disconnect: %w", err)
	}
	v.log.Info().Msg("Left voice channel")
	return nil
}

func (v *voiceSession) IsConnected() bool {
	v.mu.Lock()
	connected := v.connected
	v.mu.Unlock()
	return connected && v.link.Ready()
}

func (v *voiceSession) IsPlaying() bool {
	pb := v.current()
	return pb != nil && !pb.Paused()
}

func (v *voiceSession) IsPaused() bool {
	pb := v.current()
	return pb != nil && pb.Paused()
}

// VoiceLocator reads voice states from the gateway cache.
type VoiceLocator struct{ state *discordgo.State }

func NewVoiceLocator(state *discordgo.State) VoiceLocator { return VoiceLocator{state: state} }

func (l VoiceLocator) UserVoiceChannel(guildID, userID string) (string, error) {
	vs, err := l.state.VoiceState(guildID, userID)
	if err != nil || vs.ChannelID == "" {
		return "", player.ErrNotInVoice
	}
	return vs.ChannelID, nil
}
