package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/music/queue"
)

const (
	Footer = "FzMusic Bot"

	ColorBasic      = 0x3498db
	ColorNowPlaying = 0x1DB954
	ColorQueue      = 0x9B59B6
	ColorHelp       = 0x9B59B6
)

// Now is the clock used for embed timestamps.
var Now = time.Now

func timestamp() string {
	return Now().Format(time.RFC3339)
}

func Basic(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorBasic,
		Footer:      &discordgo.MessageEmbedFooter{Text: Footer},
		Timestamp:   timestamp(),
	}
}

// NowPlaying describes song. Playback position is not tracked, so only the
// total duration is shown, and only when known.
func NowPlaying(song queue.Song) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		Description: fmt.Sprintf("[%s](%s)", song.Title, song.URL),
		Color:       ColorNowPlaying,
		Footer:      &discordgo.MessageEmbedFooter{Text: Footer},
		Timestamp:   timestamp(),
	}

	if song.Duration != "" && song.Duration != queue.UnknownDuration {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Duration",
			Value:  fmt.Sprintf("`%s`", song.Duration),
			Inline: true,
		})
	}

	requester := song.Requester.Mention
	if requester == "" {
		requester = song.Requester.Name
	}
	if requester != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Requested by",
			Value:  requester,
			Inline: true,
		})
	}

	if song.Thumbnail != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.Thumbnail}
	}
	return e
}

// QueuePage is one page of the queue listing. Position 0 is the current
// song, pending songs follow from 1.
type QueuePage struct {
	Page   int
	Pages  int
	Total  int
	Lines  []string
	Status string
}

// Paginate lays out current and pending into pages of size entries. A page
// outside the valid range falls back to the first one.
func Paginate(current *queue.Song, pending []queue.Song, page, size int) (QueuePage, bool) {
	if size <= 0 {
		size = 10
	}

	var lines []string
	if current != nil {
		lines = append(lines, fmt.Sprintf("**🔊 Now:** %s [%s] (requested by %s)", current.Title, current.Duration, requesterName(current.Requester)))
	}
	for i, s := range pending {
		lines = append(lines, fmt.Sprintf("**%d.** %s [%s] (requested by %s)", i+1, s.Title, s.Duration, requesterName(s.Requester)))
	}
	if len(lines) == 0 {
		return QueuePage{}, false
	}

	pages := (len(lines) + size - 1) / size
	idx := page - 1
	if idx < 0 || idx >= pages {
		idx = 0
	}
	start := idx * size
	end := min(start+size, len(lines))

	return QueuePage{
		Page:  idx + 1,
		Pages: pages,
		Total: len(lines),
		Lines: lines[start:end],
	}, true
}

func requesterName(r queue.Requester) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Mention != "" {
		return r.Mention
	}
	return "unknown"
}

func Queue(p QueuePage) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎵 Playback Queue",
		Description: strings.Join(p.Lines, "\n\n"),
		Color:       ColorQueue,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d | %d song(s) in total", p.Page, p.Pages, p.Total),
		},
		Timestamp: timestamp(),
	}
	if p.Status != "" {
		e.Fields = []*discordgo.MessageEmbedField{{Name: "Status", Value: p.Status, Inline: true}}
	}
	return e
}

// HelpEntry is one line of the help embed.
type HelpEntry struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
}

func Help(prefix string, entries []HelpEntry) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("`" + prefix + e.Name)
		if e.Usage != "" {
			sb.WriteString(" " + e.Usage)
		}
		sb.WriteString("`")
		for _, a := range e.Aliases {
			sb.WriteString(" or `" + prefix + a + "`")
		}
		sb.WriteString(" - " + e.Description + "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "🎵 FzMusic - Commands",
		Description: "Available commands:",
		Color:       ColorHelp,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Commands", Value: sb.String()},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: Footer},
		Timestamp: timestamp(),
	}
}
