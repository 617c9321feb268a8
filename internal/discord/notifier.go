package discord

import (
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/embed"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/rs/zerolog"
)

// sender is the slice of *discordgo.Session used to post messages.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts playback announcements into text channels.
type Notifier struct {
	state *discordgo.State
	send  sender
	log   zerolog.Logger
}

func NewNotifier(state *discordgo.State, send sender, logger zerolog.Logger) *Notifier {
	return &Notifier{state: state, send: send, log: logger}
}

// CanSend reports whether the bot may post in channelID.
func (n *Notifier) CanSend(_, channelID string) bool {
	if channelID == "" || n.state.User == nil {
		return false
	}
	perms, err := n.state.UserChannelPermissions(n.state.User.ID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0
}

// FallbackChannel picks the top-most text channel the bot can post in.
func (n *Notifier) FallbackChannel(guildID string) (string, bool) {
	guild, err := n.state.Guild(guildID)
	if err != nil {
		return "", false
	}

	n.state.RLock()
	var text []*discordgo.Channel
	for _, ch := range guild.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			text = append(text, ch)
		}
	}
	n.state.RUnlock()

	slices.SortStableFunc(text, func(a, b *discordgo.Channel) int { return a.Position - b.Position })
	for _, ch := range text {
		if n.CanSend(guildID, ch.ID) {
			return ch.ID, true
		}
	}
	return "", false
}

func (n *Notifier) NowPlaying(channelID string, song queue.Song) {
	if _, err := n.send.ChannelMessageSendEmbed(channelID, embed.NowPlaying(song)); err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("Failed to send now playing")
	}
}

func (n *Notifier) QueueEmpty(channelID string) {
	if _, err := n.send.ChannelMessageSend(channelID, "Queue is empty. Stopping playback."); err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("Failed to send queue empty notice")
	}
}

// channelResponder answers commands in the channel they came from.
type channelResponder struct {
	send      sender
	channelID string
}

func (r channelResponder) Reply(content string) error {
	_, err := r.send.ChannelMessageSend(r.channelID, content)
	return err
}

func (r channelResponder) ReplyEmbed(e *discordgo.MessageEmbed) error {
	_, err := r.send.ChannelMessageSendEmbed(r.channelID, e)
	return err
}
