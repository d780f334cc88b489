package handlers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/red-tetris/internal/config"
	"github.com/palemoky/red-tetris/internal/game"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/storage"
	"github.com/palemoky/red-tetris/internal/testutil"
)

// recordingBroadcaster captures lobby-wide pushes
type recordingBroadcaster struct {
	messages []*protocol.Message
}

func (b *recordingBroadcaster) Broadcast(msg *protocol.Message) {
	b.messages = append(b.messages, msg)
}

func newTestHandler(t *testing.T) (*Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := storage.NewRedisStore(rdb)
	directory := game.NewDirectory(config.GameConfig{
		RoomCapacity:   2,
		SequenceLength: 20,
		MinOpenRooms:   3,
	})
	return NewHandler(directory, store, nil), mr
}

func joinRoom(t *testing.T, h *Handler, c *testutil.SimpleClient, room, name string) {
	t.Helper()

	h.Handle(c, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Room:       room,
		PlayerName: name,
	}))
	require.Empty(t, c.MessagesOfType(protocol.MsgError))
}

func errorCode(t *testing.T, msg *protocol.Message) int {
	t.Helper()

	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	return payload.Code
}

func TestHandler_Ping(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, protocol.MustNewMessage(protocol.MsgPing, nil))

	assert.Len(t, c.MessagesOfType(protocol.MsgPong), 1)
}

func TestHandler_UnknownType(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, &protocol.Message{Type: "no_such_type"})

	errs := c.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, errs[0]))
}

func TestHandler_JoinRoom(t *testing.T) {
	t.Parallel()

	h, mr := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	joinRoom(t, h, c, "tetris", "Alice")

	// Handler binds the client to the room and the first joiner leads
	assert.Equal(t, "tetris", c.GetRoom())
	assert.Equal(t, "Alice", c.GetName())
	assert.Len(t, c.MessagesOfType(protocol.MsgYouAreLeader), 1)

	// Room snapshot persisted on join
	assert.True(t, mr.Exists("room:tetris"))
}

func TestHandler_JoinRoom_InvalidPayload(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, &protocol.Message{Type: protocol.MsgJoinRoom, Payload: []byte(`{"room":""}`)})

	errs := c.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, errs[0]))
}

func TestHandler_JoinRoom_UnsupportedMode(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Room:       "tetris",
		PlayerName: "Alice",
		Mode:       "battle-royale",
	}))

	errs := c.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeUnsupportedMode, errorCode(t, errs[0]))
	assert.Empty(t, c.GetRoom())
}

func TestHandler_JoinRoom_SoloStartsImmediately(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Room:       "solo_abc",
		PlayerName: "Alice",
		Mode:       protocol.ModeSolo,
	}))

	require.Empty(t, c.MessagesOfType(protocol.MsgError))
	assert.Len(t, c.MessagesOfType(protocol.MsgGameStarted), 1)
}

func TestHandler_JoinRoom_SwitchesRoom(t *testing.T) {
	t.Parallel()

	h, mr := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	joinRoom(t, h, c, "first", "Alice")
	joinRoom(t, h, c, "second", "Alice")

	assert.Equal(t, "second", c.GetRoom())
	// The abandoned room was empty, so it is retired and its snapshot removed
	assert.Nil(t, h.directory.Get("first"))
	assert.False(t, mr.Exists("room:first"))
}

func TestHandler_LeaveRoom(t *testing.T) {
	t.Parallel()

	h, mr := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}
	joinRoom(t, h, c, "tetris", "Alice")

	h.Handle(c, protocol.MustNewMessage(protocol.MsgLeaveRoom, protocol.LeaveRoomPayload{Room: "tetris"}))

	assert.Empty(t, c.GetRoom())
	assert.Nil(t, h.directory.Get("tetris"))
	assert.False(t, mr.Exists("room:tetris"))
}

func TestHandler_LeaveRoom_NotInRoom(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))

	errs := c.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, errs[0]))
}

func TestHandler_GetRoomList(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	joinRoom(t, h, a, "tetris", "Alice")

	c := &testutil.SimpleClient{ID: "conn-2"}
	h.Handle(c, protocol.MustNewMessage(protocol.MsgGetRoomList, nil))

	results := c.MessagesOfType(protocol.MsgRoomListResult)
	require.Len(t, results, 1)
	payload, err := protocol.ParsePayload[protocol.RoomListResultPayload](results[0])
	require.NoError(t, err)
	require.Len(t, payload.Rooms, 1)
	assert.Equal(t, "tetris", payload.Rooms[0].RoomName)
}

func TestHandler_StartGame(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	b := &testutil.SimpleClient{ID: "conn-2"}
	joinRoom(t, h, a, "tetris", "Alice")
	joinRoom(t, h, b, "tetris", "Bob")

	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGame, nil))

	require.Empty(t, a.MessagesOfType(protocol.MsgError))
	assert.Len(t, a.MessagesOfType(protocol.MsgGameStarted), 1)
	assert.Len(t, b.MessagesOfType(protocol.MsgGameStarted), 1)
}

func TestHandler_StartGame_NotInRoom(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	c := &testutil.SimpleClient{ID: "conn-1"}

	h.Handle(c, protocol.MustNewMessage(protocol.MsgStartGame, nil))

	errs := c.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, errs[0]))
}

func TestHandler_StartGameMulti_Ack(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	b := &testutil.SimpleClient{ID: "conn-2"}
	joinRoom(t, h, a, "tetris", "Alice")
	joinRoom(t, h, b, "tetris", "Bob")

	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGameMulti, nil))

	acks := a.MessagesOfType(protocol.MsgStartAck)
	require.Len(t, acks, 1)
	payload, err := protocol.ParsePayload[protocol.StartAckPayload](acks[0])
	require.NoError(t, err)
	assert.True(t, payload.Success)
}

func TestHandler_StartGameMulti_FailureAck(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	joinRoom(t, h, a, "tetris", "Alice")

	// Alone in a multiplayer room: the start is refused and the ack carries the failure
	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGameMulti, nil))

	acks := a.MessagesOfType(protocol.MsgStartAck)
	require.Len(t, acks, 1)
	payload, err := protocol.ParsePayload[protocol.StartAckPayload](acks[0])
	require.NoError(t, err)
	assert.False(t, payload.Success)
	assert.NotEmpty(t, payload.Error)

	errs := a.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeNotEnoughPlayers, errorCode(t, errs[0]))
}

func TestHandler_LineComplete(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	b := &testutil.SimpleClient{ID: "conn-2"}
	joinRoom(t, h, a, "tetris", "Alice")
	joinRoom(t, h, b, "tetris", "Bob")
	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGame, nil))

	h.Handle(a, protocol.MustNewMessage(protocol.MsgLineComplete, protocol.LineCompletePayload{
		Room:  "tetris",
		Lines: 2,
	}))

	require.Empty(t, a.MessagesOfType(protocol.MsgError))
	scores := a.MessagesOfType(protocol.MsgScoreUpdated)
	require.Len(t, scores, 1)
	payload, err := protocol.ParsePayload[protocol.ScoreUpdatedPayload](scores[0])
	require.NoError(t, err)
	assert.Equal(t, 300, payload.Score)

	// Opponent took the penalty
	assert.NotEmpty(t, b.MessagesOfType(protocol.MsgPenaltyApplied))
}

func TestHandler_GameOver_PersistsScore(t *testing.T) {
	t.Parallel()

	h, mr := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	b := &testutil.SimpleClient{ID: "conn-2"}
	joinRoom(t, h, a, "tetris", "Alice")
	joinRoom(t, h, b, "tetris", "Bob")
	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGame, nil))

	h.Handle(a, protocol.MustNewMessage(protocol.MsgLineComplete, protocol.LineCompletePayload{
		Room:  "tetris",
		Lines: 4,
	}))
	h.Handle(a, protocol.MustNewMessage(protocol.MsgGameOver, nil))

	require.Empty(t, a.MessagesOfType(protocol.MsgError))
	score, err := mr.Get("score:Alice")
	require.NoError(t, err)
	assert.Equal(t, "800", score)
}

func TestHandler_RestartGame_WhileRunning(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	a := &testutil.SimpleClient{ID: "conn-1"}
	b := &testutil.SimpleClient{ID: "conn-2"}
	joinRoom(t, h, a, "tetris", "Alice")
	joinRoom(t, h, b, "tetris", "Bob")
	h.Handle(a, protocol.MustNewMessage(protocol.MsgStartGame, nil))

	h.Handle(a, protocol.MustNewMessage(protocol.MsgRestartGame, nil))

	errs := a.MessagesOfType(protocol.MsgError)
	require.Len(t, errs, 1)
	assert.Equal(t, protocol.ErrCodeGameStarted, errorCode(t, errs[0]))
}

func TestHandler_BroadcastsRoomList(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	broadcaster := &recordingBroadcaster{}
	h.broadcaster = broadcaster

	c := &testutil.SimpleClient{ID: "conn-1"}
	joinRoom(t, h, c, "tetris", "Alice")

	require.NotEmpty(t, broadcaster.messages)
	assert.Equal(t, protocol.MsgRoomsUpdated, broadcaster.messages[0].Type)
}
