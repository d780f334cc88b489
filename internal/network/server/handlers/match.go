package handlers

import (
	"context"
	"log"

	"github.com/palemoky/red-tetris/internal/apperrors"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/types"
)

// handleStartGame 处理开始对局请求
func (h *Handler) handleStartGame(client types.ClientInterface) {
	room, err := h.currentRoom(client)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if err := room.StartMatch(client.GetID()); err != nil {
		h.sendError(client, err)
		return
	}
	h.saveRoomSnapshot(room.Name)
	h.broadcastRooms()
}

// handleStartGameMulti 处理带回执的开始对局请求
func (h *Handler) handleStartGameMulti(client types.ClientInterface) {
	room, err := h.currentRoom(client)
	if err == nil {
		err = room.StartMatch(client.GetID())
	}
	if err != nil {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgStartAck, protocol.StartAckPayload{
			Success: false,
			Error:   err.Error(),
		}))
		h.sendError(client, err)
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgStartAck, protocol.StartAckPayload{
		Success: true,
	}))
	h.saveRoomSnapshot(room.Name)
	h.broadcastRooms()
}

// handleLineComplete 处理消行上报
func (h *Handler) handleLineComplete(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.LineCompletePayload](msg)
	if err != nil {
		client.SendMessage(apperrors.ErrInvalidMessage.WireMessage())
		return
	}

	room, err := h.currentRoom(client)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if err := room.HandleLineCompletion(client.GetID(), payload.Lines); err != nil {
		h.sendError(client, err)
	}
}

// handleGameOver 处理玩家出局上报
func (h *Handler) handleGameOver(client types.ClientInterface) {
	room, err := h.currentRoom(client)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if err := room.HandlePlayerGameOver(client.GetID()); err != nil {
		h.sendError(client, err)
		return
	}

	h.persistScore(client.GetName(), room.PlayersInfo())
	h.saveRoomSnapshot(room.Name)
}

// handleRestartGame 处理重开请求
func (h *Handler) handleRestartGame(client types.ClientInterface) {
	room, err := h.currentRoom(client)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if err := room.ResetMatch(); err != nil {
		h.sendError(client, err)
		return
	}
	h.broadcastRooms()
}

// persistScore 持久化玩家本局分数
func (h *Handler) persistScore(name string, players []protocol.PlayerInfo) {
	for _, p := range players {
		if p.Name != name {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.store.SaveScore(ctx, name, p.Score); err != nil {
			log.Printf("保存分数失败: %v", err)
		}
		return
	}
}
