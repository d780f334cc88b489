package apperrors

import (
	"errors"

	"github.com/palemoky/red-tetris/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// WireMessage 转换为下行的错误消息
func (e *GameError) WireMessage() *protocol.Message {
	return protocol.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    e.Code,
		Message: e.Message,
	})
}

// FromError 将任意错误归一化为 GameError
// 非业务错误映射为未知错误码，原始错误文本随消息下发
func FromError(err error) *GameError {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr
	}
	return &GameError{Code: protocol.ErrCodeUnknown, Message: err.Error()}
}

// 预定义错误
var (
	ErrInvalidMessage   = &GameError{Code: protocol.ErrCodeInvalidMsg, Message: "无效的消息格式"}
	ErrRoomNotFound     = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull         = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom        = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrInvalidName      = &GameError{Code: protocol.ErrCodeInvalidName, Message: "无效的玩家昵称"}
	ErrDuplicateName    = &GameError{Code: protocol.ErrCodeDuplicateName, Message: "昵称已被占用"}
	ErrUnsupportedMode  = &GameError{Code: protocol.ErrCodeUnsupportedMode, Message: "不支持的游戏模式"}
	ErrGameStarted      = &GameError{Code: protocol.ErrCodeGameStarted, Message: "对局已开始"}
	ErrGameNotStart     = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "对局尚未开始"}
	ErrNotLeader        = &GameError{Code: protocol.ErrCodeNotLeader, Message: "只有房主可以开始对局"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "玩家人数不足，无法开始"}
	ErrUnknownPlayer    = &GameError{Code: protocol.ErrCodeUnknownPlayer, Message: "玩家不在该房间中"}
)
