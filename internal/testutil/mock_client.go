//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/red-tetris/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetName(name string) {
	m.Called(name)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(name string) {
	m.Called(name)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言的测试）
type SimpleClient struct {
	ID       string
	Name     string
	RoomName string
	Messages []*protocol.Message
}

func (m *SimpleClient) GetID() string                     { return m.ID }
func (m *SimpleClient) GetName() string                   { return m.Name }
func (m *SimpleClient) SetName(name string)               { m.Name = name }
func (m *SimpleClient) GetRoom() string                   { return m.RoomName }
func (m *SimpleClient) SetRoom(name string)               { m.RoomName = name }
func (m *SimpleClient) SendMessage(msg *protocol.Message) { m.Messages = append(m.Messages, msg) }
func (m *SimpleClient) Close()                            {}

// MessagesOfType 过滤指定类型的消息
func (m *SimpleClient) MessagesOfType(msgType protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range m.Messages {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}
