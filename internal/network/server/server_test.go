package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/red-tetris/internal/config"
	"github.com/palemoky/red-tetris/internal/game"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()

	return &Server{
		config:    cfg,
		redis:     rdb,
		store:     storage.NewRedisStore(rdb),
		directory: game.NewDirectory(cfg.Game),
		clients:   make(map[string]*Client),
	}
}

func TestServer_RegisterUnregister_Concurrency(t *testing.T) {
	t.Parallel()

	s := &Server{
		clients: make(map[string]*Client),
	}

	var wg sync.WaitGroup
	count := 100

	// Concurrent register
	clients := make([]*Client, count)
	for i := range clients {
		clients[i] = &Client{ID: fmt.Sprintf("conn-%d", i), send: make(chan []byte, 1)}
	}

	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			s.registerClient(clients[i])
		}(i)
	}
	wg.Wait()
	assert.Equal(t, count, s.GetOnlineCount())

	// Concurrent unregister
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			s.unregisterClient(clients[i])
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, s.GetOnlineCount())
}

func TestServer_Broadcast(t *testing.T) {
	t.Parallel()

	s := &Server{clients: make(map[string]*Client)}
	a := &Client{ID: "conn-1", send: make(chan []byte, 4)}
	b := &Client{ID: "conn-2", send: make(chan []byte, 4)}
	s.registerClient(a)
	s.registerClient(b)

	s.Broadcast(protocol.MustNewMessage(protocol.MsgPong, nil))

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}

func TestServer_HandleHealth(t *testing.T) {
	t.Parallel()

	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestServer_HandleRooms_TopsUp(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()

	s.handleRooms(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload protocol.RoomListResultPayload
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Len(t, payload.Rooms, s.config.Game.MinOpenRooms)
}

func TestServer_HandleSolo(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/solo", nil)
	w := httptest.NewRecorder()

	s.handleSolo(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.True(t, strings.HasPrefix(payload["room"], "solo_"))

	room := s.directory.Get(payload["room"])
	require.NotNil(t, room)
	assert.Equal(t, protocol.ModeSolo, room.Mode)
}

func TestServer_HandleScore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	// Unknown player reads as zero
	w := httptest.NewRecorder()
	s.handleScore(w, httptest.NewRequest(http.MethodGet, "/score/alice", nil))
	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&got))
	assert.Equal(t, float64(0), got["score"])

	// Save then read back
	w = httptest.NewRecorder()
	body := strings.NewReader(`{"score": 800}`)
	s.handleScore(w, httptest.NewRequest(http.MethodPost, "/score/alice", body))
	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	w = httptest.NewRecorder()
	s.handleScore(w, httptest.NewRequest(http.MethodGet, "/score/alice", nil))
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&got))
	assert.Equal(t, float64(800), got["score"])
}

func TestServer_HandleScore_BadRequests(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.handleScore(w, httptest.NewRequest(http.MethodGet, "/score/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)

	w = httptest.NewRecorder()
	s.handleScore(w, httptest.NewRequest(http.MethodPost, "/score/alice", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)

	w = httptest.NewRecorder()
	s.handleScore(w, httptest.NewRequest(http.MethodDelete, "/score/alice", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode)
}
