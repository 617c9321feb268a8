package statusapi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/rs/zerolog"
)

// Source is the read-only view of playback the API serves.
type Source interface {
	Guilds() []string
	State(guildID string) player.State
	Snapshot(guildID string) player.Snapshot
}

type Server struct {
	addr   string
	source Source
	log    zerolog.Logger
	engine *gin.Engine
}

func New(addr string, source Source, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{addr: addr, source: source, log: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.GET("/healthz", s.health)
	r.GET("/guilds", s.guilds)
	r.GET("/guilds/:guildID/queue", s.queue)
	s.engine = r
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("Shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("Status server shutdown")
		}
	}()

	s.log.Info().Str("addr", s.addr).Msg("Status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type guildSummary struct {
	GuildID string `json:"guild_id"`
	State   string `json:"state"`
}

func (s *Server) guilds(c *gin.Context) {
	ids := s.source.Guilds()
	slices.Sort(ids)

	out := make([]guildSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, guildSummary{GuildID: id, State: string(s.source.State(id))})
	}
	c.JSON(http.StatusOK, gin.H{"guilds": out})
}

type songView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	URL       string `json:"url"`
	Requester string `json:"requester"`
}

type queueView struct {
	GuildID      string     `json:"guild_id"`
	State        string     `json:"state"`
	Volume       float64    `json:"volume"`
	Current      *songView  `json:"current"`
	Pending      []songView `json:"pending"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func (s *Server) queue(c *gin.Context) {
	snap := s.source.Snapshot(c.Param("guildID"))

	view := queueView{
		GuildID: snap.GuildID,
		State:   string(snap.State),
		Volume:  snap.Volume,
		Pending: make([]songView, 0, len(snap.Pending)),
	}
	if snap.Current != nil {
		cur := toView(*snap.Current)
		view.Current = &cur
	}
	for _, song := range snap.Pending {
		view.Pending = append(view.Pending, toView(song))
	}
	if !snap.LastActivity.IsZero() {
		t := snap.LastActivity
		view.LastActivity = &t
	}
	c.JSON(http.StatusOK, view)
}

func toView(s queue.Song) songView {
	return songView{
		ID:        s.ID,
		Title:     s.Title,
		Duration:  s.Duration,
		URL:       s.URL,
		Requester: s.Requester.Name,
	}
}
