package types

import (
	"github.com/palemoky/red-tetris/internal/protocol"
)

// ClientInterface 定义客户端接口（用于打破循环依赖）
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(name string)
	SendMessage(msg *protocol.Message)
	Close()
}
