package handlers

import (
	"log"

	"github.com/palemoky/red-tetris/internal/apperrors"
	"github.com/palemoky/red-tetris/internal/game"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/storage"
	"github.com/palemoky/red-tetris/internal/types"
)

// Broadcaster 向所有在线客户端推送消息（由 server 实现）
type Broadcaster interface {
	Broadcast(msg *protocol.Message)
}

// Handler 消息处理器
type Handler struct {
	directory   *game.Directory
	store       *storage.RedisStore
	broadcaster Broadcaster
}

// NewHandler 创建消息处理器
func NewHandler(directory *game.Directory, store *storage.RedisStore, broadcaster Broadcaster) *Handler {
	return &Handler{
		directory:   directory,
		store:       store,
		broadcaster: broadcaster,
	}
}

// Handle 分发消息到对应的处理函数
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, nil))
	case protocol.MsgJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.MsgLeaveRoom:
		h.handleLeaveRoom(client)
	case protocol.MsgPlayerReady:
		h.handlePlayerReady(client)
	case protocol.MsgGetRoomList:
		h.handleGetRoomList(client)
	case protocol.MsgStartGame:
		h.handleStartGame(client)
	case protocol.MsgStartGameMulti:
		h.handleStartGameMulti(client)
	case protocol.MsgLineComplete:
		h.handleLineComplete(client, msg)
	case protocol.MsgGameOver:
		h.handleGameOver(client)
	case protocol.MsgRestartGame:
		h.handleRestartGame(client)
	default:
		log.Printf("未知消息类型: %s", msg.Type)
		client.SendMessage(apperrors.ErrInvalidMessage.WireMessage())
	}
}

// currentRoom 获取客户端当前所在房间
func (h *Handler) currentRoom(client types.ClientInterface) (*game.Room, error) {
	name := client.GetRoom()
	if name == "" {
		return nil, apperrors.ErrNotInRoom
	}
	room := h.directory.Get(name)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// sendError 将业务错误转为错误消息发回客户端
func (h *Handler) sendError(client types.ClientInterface, err error) {
	client.SendMessage(apperrors.FromError(err).WireMessage())
}

// broadcastRooms 向所有客户端推送最新的房间列表
func (h *Handler) broadcastRooms() {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Broadcast(protocol.MustNewMessage(protocol.MsgRoomsUpdated, protocol.RoomListResultPayload{
		Rooms: h.directory.ListAvailable(protocol.ModeMultiplayer),
	}))
}
