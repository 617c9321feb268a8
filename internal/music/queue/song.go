package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnknownDuration is shown when the source did not report a length.
const UnknownDuration = "Unknown duration"

// Requester identifies the user who asked for a song.
type Requester struct {
	ID      string
	Name    string
	Mention string
}

// Song is one resolved, playable unit. It is never mutated after creation.
type Song struct {
	ID        string
	StreamURL string
	Title     string
	Duration  string
	URL       string
	Thumbnail string
	Requester Requester
}

// NewSong builds a Song with a fresh identity.
func NewSong(streamURL, title string, duration time.Duration, pageURL, thumbnail string, requester Requester) Song {
	if title == "" {
		title = "Unknown Title"
	}
	if pageURL == "" {
		pageURL = streamURL
	}
	return Song{
		ID:        uuid.NewString(),
		StreamURL: streamURL,
		Title:     title,
		Duration:  FormatDuration(duration),
		URL:       pageURL,
		Thumbnail: thumbnail,
		Requester: requester,
	}
}

func (s Song) String() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Duration)
}

// FormatDuration renders d as H:MM:SS, or M:SS under an hour.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total <= 0 {
		return UnknownDuration
	}

	minutes, seconds := total/60, total%60
	hours, minutes := minutes/60, minutes%60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
