package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/command/music"
	"github.com/keshon/fzmusic/internal/config"
	"github.com/keshon/fzmusic/internal/logging"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/internal/music/reaper"
	"github.com/keshon/fzmusic/internal/music/relay"
	"github.com/keshon/fzmusic/internal/music/source_resolver"
	"github.com/keshon/fzmusic/internal/statusapi"
	"github.com/keshon/fzmusic/pkg/cmd"
	"github.com/keshon/fzmusic/pkg/jobmgr"
	"github.com/rs/zerolog"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

// Bot is a Discord bot
type Bot struct {
	cfg  *config.Config
	root zerolog.Logger
	log  zerolog.Logger
	ctx  context.Context

	dg     *discordgo.Session
	router *Router
	store  *queue.Store
	relay  *relay.Relay
	coord  *player.Coordinator
	jobs   *jobmgr.Manager
}

func New(cfg *config.Config, logger zerolog.Logger) *Bot {
	return &Bot{cfg: cfg, root: logger, log: logging.Component(logger, "bot")}
}

// Run connects to Discord and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents
	b.dg = dg
	b.ctx = ctx

	if err := b.wire(); err != nil {
		return err
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	if err := b.startJobs(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	b.log.Info().Msg("Shutdown signal received. Cleaning up...")
	b.shutdown()
	return nil
}

// wire builds the playback core and the command layer on top of the session.
func (b *Bot) wire() error {
	yt, err := source_resolver.NewClient(b.cfg.YouTubeProxy, b.root)
	if err != nil {
		return fmt.Errorf("youtube client: %w", err)
	}
	resolver := source_resolver.New(yt, b.root)

	b.store = queue.NewStore(queue.WithDefaultVolume(b.cfg.DefaultVolume))
	b.relay = relay.New(b.root)
	b.coord = player.New(
		b.store,
		NewVoiceConnector(b.dg, b.cfg.FFmpegPath, b.cfg.VoiceJoinAttempts, logging.Component(b.root, "voice")),
		NewNotifier(b.dg.State, b.dg, logging.Component(b.root, "notifier")),
		b.relay,
		b.root,
	)

	registry := cmd.NewRegistry()
	music.Register(&music.Deps{
		Player:   b.coord,
		Voice:    NewVoiceLocator(b.dg.State),
		Resolver: resolver,
		PageSize: b.cfg.QueuePageSize,
		Registry: registry,
	}, b.root)
	b.router = NewRouter(b.cfg.CommandPrefix, registry, logging.Component(b.root, "router"))
	return nil
}

func (b *Bot) startJobs(ctx context.Context) error {
	jobLog := logging.Component(b.root, "jobs")
	b.jobs = jobmgr.NewManager(ctx, func(status string) {
		jobLog.Debug().Str("status", status).Msg("Job status")
	})

	if err := b.jobs.StartAsync("completion-relay", func(ctx context.Context) error {
		return b.relay.Run(ctx, b.cfg.CompletionDrainInterval, b.coord.HandleCompletion)
	}); err != nil {
		return err
	}

	reap := reaper.New(b.store, b.coord, b.cfg.InactivityTimeout, b.root)
	if err := b.jobs.StartAsync("inactivity-reaper", func(ctx context.Context) error {
		return reap.Run(ctx, b.cfg.InactivityCheckInterval)
	}); err != nil {
		return err
	}

	if b.cfg.StatusAddr != "" {
		srv := statusapi.New(b.cfg.StatusAddr, b.coord, logging.Component(b.root, "statusapi"))
		if err := b.jobs.StartAsync("status-api", srv.Run); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b.coord.Shutdown(ctx)
	b.jobs.StopAll()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.String()).
		Str("id", r.User.ID).
		Int("guilds", len(r.Guilds)).
		Msg("Logged in")

	if err := s.UpdateGameStatus(0, b.cfg.CommandPrefix+"help"); err != nil {
		b.log.Warn().Err(err).Msg("Failed to set status")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.router.Dispatch(b.ctx, m.GuildID, m.ChannelID, requesterOf(m), m.Content, channelResponder{send: s, channelID: m.ChannelID})
}
