package handlers

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/red-tetris/internal/apperrors"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/types"
)

const storeTimeout = 3 * time.Second

// handleJoinRoom 处理加入房间请求
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.Room == "" {
		client.SendMessage(apperrors.ErrInvalidMessage.WireMessage())
		return
	}

	mode := payload.Mode
	if mode == "" {
		mode = protocol.ModeMultiplayer
	}
	if mode != protocol.ModeMultiplayer && mode != protocol.ModeSolo {
		h.sendError(client, apperrors.ErrUnsupportedMode)
		return
	}

	// 已在其他房间时先退出
	if client.GetRoom() != "" {
		h.LeaveCurrentRoom(client)
	}

	room := h.directory.GetOrCreate(payload.Room, mode)
	if _, err := room.AddPlayer(payload.PlayerName, client); err != nil {
		h.sendError(client, err)
		return
	}

	client.SetName(payload.PlayerName)
	client.SetRoom(room.Name)
	log.Printf("🎮 玩家 %s 加入房间 %s", payload.PlayerName, room.Name)

	h.saveRoomSnapshot(room.Name)
	h.broadcastRooms()

	// 单人房间无需等待，立即开局
	if mode == protocol.ModeSolo {
		if err := room.StartMatch(client.GetID()); err != nil {
			h.sendError(client, err)
		}
	}
}

// handleLeaveRoom 处理离开房间请求
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if client.GetRoom() == "" {
		h.sendError(client, apperrors.ErrNotInRoom)
		return
	}
	h.LeaveCurrentRoom(client)
}

// LeaveCurrentRoom 将客户端移出当前房间（主动离开与断线共用同一入口）
func (h *Handler) LeaveCurrentRoom(client types.ClientInterface) {
	roomName := client.GetRoom()
	if roomName == "" {
		return
	}

	client.SetRoom("")
	room := h.directory.Get(roomName)
	if room == nil {
		return
	}

	empty := room.Disconnect(client.GetID())
	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), roomName)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if empty {
		h.directory.Retire(roomName)
		if err := h.store.DeleteRoom(ctx, roomName); err != nil {
			log.Printf("删除房间快照失败: %v", err)
		}
	} else if err := h.store.SaveRoom(ctx, room.Snapshot()); err != nil {
		log.Printf("保存房间快照失败: %v", err)
	}

	h.broadcastRooms()
}

// handlePlayerReady 处理准备就绪请求
func (h *Handler) handlePlayerReady(client types.ClientInterface) {
	room, err := h.currentRoom(client)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if err := room.SetPlayerReady(client.GetID()); err != nil {
		h.sendError(client, err)
	}
}

// handleGetRoomList 处理房间列表请求
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.directory.ListAvailable(protocol.ModeMultiplayer),
	}))
}

// saveRoomSnapshot 保存房间快照到 redis
func (h *Handler) saveRoomSnapshot(roomName string) {
	room := h.directory.Get(roomName)
	if room == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.store.SaveRoom(ctx, room.Snapshot()); err != nil {
		log.Printf("保存房间快照失败: %v", err)
	}
}
