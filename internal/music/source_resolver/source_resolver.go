package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
)

var (
	ErrResolveFailed = errors.New("could not resolve audio source")
	ErrNoAudio       = errors.New("no audio formats found")
	ErrNotURL        = errors.New("input is not an http(s) URL")
)

// YouTubeClient is the part of the kkdai client the resolver uses.
type YouTubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
}

// SourceResolver turns user input into a playable song.
type SourceResolver struct {
	yt  YouTubeClient
	log zerolog.Logger
}

func New(yt YouTubeClient, logger zerolog.Logger) *SourceResolver {
	return &SourceResolver{
		yt:  yt,
		log: logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve accepts YouTube links (videos and playlists) and direct stream URLs.
func (r *SourceResolver) Resolve(ctx context.Context, input string, requester queue.Requester) (queue.Song, error) {
	input = strings.TrimSpace(input)
	if !isURL(input) {
		return queue.Song{}, ErrNotURL
	}

	if !isYouTubeURL(input) {
		return r.resolveDirect(input, requester), nil
	}

	if isPlaylistOnlyURL(input) {
		first, err := r.firstPlaylistEntry(ctx, input)
		if err != nil {
			return queue.Song{}, err
		}
		input = first
	}

	return r.resolveVideo(ctx, CleanVideoURL(input), requester)
}

func (r *SourceResolver) resolveVideo(ctx context.Context, pageURL string, requester queue.Requester) (queue.Song, error) {
	video, err := r.yt.GetVideoContext(ctx, pageURL)
	if err != nil {
		r.log.Warn().Err(err).Str("url", pageURL).Msg("Failed to fetch video")
		return queue.Song{}, fmt.Errorf("%w: %w", ErrResolveFailed, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return queue.Song{}, fmt.Errorf("%w: %s", ErrNoAudio, pageURL)
	}

	link, err := r.yt.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return queue.Song{}, fmt.Errorf("%w: stream url: %w", ErrResolveFailed, err)
	}

	var thumbnail string
	if len(video.Thumbnails) > 0 {
		thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	r.log.Debug().Str("url", pageURL).Str("title", video.Title).Dur("duration", video.Duration).Msg("Resolved video")
	return queue.NewSong(link, video.Title, video.Duration, pageURL, thumbnail, requester), nil
}

func (r *SourceResolver) firstPlaylistEntry(ctx context.Context, playlistURL string) (string, error) {
	playlist, err := r.yt.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return "", fmt.Errorf("%w: playlist: %w", ErrResolveFailed, err)
	}
	for _, entry := range playlist.Videos {
		if entry != nil && entry.ID != "" {
			return "https://www.youtube.com/watch?v=" + entry.ID, nil
		}
	}
	return "", fmt.Errorf("%w: playlist %q is empty", ErrResolveFailed, playlist.Title)
}

// resolveDirect treats any other URL as a stream ffmpeg can open itself.
func (r *SourceResolver) resolveDirect(input string, requester queue.Requester) queue.Song {
	title := input
	if u, err := url.Parse(input); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			title = base
		} else {
			title = u.Host
		}
	}
	return queue.NewSong(input, title, 0, input, "", requester)
}
