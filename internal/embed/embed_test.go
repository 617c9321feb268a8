package embed

import (
	"fmt"
	"testing"
	"time"

	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowPlaying(t *testing.T) {
	song := queue.NewSong("https://cdn/a", "Song A", 3*time.Minute, "https://youtu.be/a", "https://img/a.jpg",
		queue.Requester{ID: "1", Name: "alice", Mention: "<@1>"})

	e := NowPlaying(song)
	assert.Equal(t, "[Song A](https://youtu.be/a)", e.Description)
	assert.Equal(t, ColorNowPlaying, e.Color)
	assert.Equal(t, Footer, e.Footer.Text)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "`3:00`", e.Fields[0].Value)
	assert.Equal(t, "<@1>", e.Fields[1].Value)
	assert.Equal(t, "https://img/a.jpg", e.Thumbnail.URL)
}

func TestNowPlayingOmitsUnknownDuration(t *testing.T) {
	song := queue.NewSong("https://radio/live", "live", 0, "", "", queue.Requester{Mention: "<@1>"})

	e := NowPlaying(song)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "Requested by", e.Fields[0].Name)
	assert.Nil(t, e.Thumbnail)
}

func TestPaginate(t *testing.T) {
	current := queue.Song{Title: "Now", Duration: "1:00", Requester: queue.Requester{Name: "alice"}}
	var pending []queue.Song
	for i := 1; i <= 12; i++ {
		pending = append(pending, queue.Song{Title: fmt.Sprintf("S%d", i), Duration: "2:00"})
	}

	p, ok := Paginate(&current, pending, 1, 10)
	require.True(t, ok)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 2, p.Pages)
	assert.Equal(t, 13, p.Total)
	assert.Len(t, p.Lines, 10)
	assert.Contains(t, p.Lines[0], "Now")
	assert.Contains(t, p.Lines[1], "**1.** S1")

	p, _ = Paginate(&current, pending, 2, 10)
	assert.Equal(t, []string{
		"**10.** S10 [2:00] (requested by unknown)",
		"**11.** S11 [2:00] (requested by unknown)",
		"**12.** S12 [2:00] (requested by unknown)",
	}, p.Lines)

	p, _ = Paginate(&current, pending, 9, 10)
	assert.Equal(t, 1, p.Page)

	_, ok = Paginate(nil, nil, 1, 10)
	assert.False(t, ok)
}

func TestQueueFooter(t *testing.T) {
	e := Queue(QueuePage{Page: 2, Pages: 3, Total: 25, Lines: []string{"a", "b"}})
	assert.Equal(t, "Page 2 of 3 | 25 song(s) in total", e.Footer.Text)
	assert.Equal(t, "a\n\nb", e.Description)
	assert.Empty(t, e.Fields)

	e = Queue(QueuePage{Page: 1, Pages: 1, Total: 1, Lines: []string{"a"}, Status: "⏸ Paused"})
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "⏸ Paused", e.Fields[0].Value)
}

func TestHelp(t *testing.T) {
	e := Help("fz!", []HelpEntry{
		{Name: "play", Aliases: []string{"p"}, Usage: "<url>", Description: "Play a song"},
		{Name: "pause", Description: "Pause playback"},
	})
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "`fz!play <url>` or `fz!p` - Play a song\n`fz!pause` - Pause playback\n", e.Fields[0].Value)
}
