package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snaps map[string]player.Snapshot
}

func (f fakeSource) Guilds() []string {
	ids := make([]string, 0, len(f.snaps))
	for id := range f.snaps {
		ids = append(ids, id)
	}
	return ids
}

func (f fakeSource) State(id string) player.State {
	if s, ok := f.snaps[id]; ok {
		return s.State
	}
	return player.StateIdle
}

func (f fakeSource) Snapshot(id string) player.Snapshot {
	if s, ok := f.snaps[id]; ok {
		return s
	}
	return player.Snapshot{GuildID: id, State: player.StateIdle, Snapshot: queue.Snapshot{Volume: queue.DefaultVolume}}
}

func newTestServer() *Server {
	alice := queue.Requester{ID: "1", Name: "alice"}
	cur := queue.NewSong("https://a", "First", 0, "", "", alice)
	return New(":0", fakeSource{snaps: map[string]player.Snapshot{
		"g2": {GuildID: "g2", State: player.StatePlaying, Snapshot: queue.Snapshot{
			Current: &cur,
			Pending: []queue.Song{queue.NewSong("https://b", "Second", 0, "", "", alice)},
			Volume:  0.3,
		}},
		"g1": {GuildID: "g1", State: player.StateConnectedSilent, Snapshot: queue.Snapshot{Volume: 0.5}},
	}}, zerolog.Nop())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGuildsSorted(t *testing.T) {
	rec := get(t, newTestServer(), "/guilds")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"guilds":[{"guild_id":"g1","state":"Connected"},{"guild_id":"g2","state":"Playing"}]}`, rec.Body.String())
}

func TestQueue(t *testing.T) {
	rec := get(t, newTestServer(), "/guilds/g2/queue")
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Playing", body.State)
	assert.Equal(t, 0.3, body.Volume)
	require.NotNil(t, body.Current)
	assert.Equal(t, "First", body.Current.Title)
	require.Len(t, body.Pending, 1)
	assert.Equal(t, "Second", body.Pending[0].Title)
	assert.Equal(t, "alice", body.Pending[0].Requester)
	assert.Nil(t, body.LastActivity)
}

func TestQueueUnknownGuild(t *testing.T) {
	rec := get(t, newTestServer(), "/guilds/nope/queue")
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Idle", body.State)
	assert.Nil(t, body.Current)
	assert.Empty(t, body.Pending)
}
