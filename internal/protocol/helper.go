package protocol

import "encoding/json"

// NewMessage 用给定类型和负载组装一条消息
// 负载为 nil 时不携带 payload 字段
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = data
	return msg, nil
}

// MustNewMessage 组装消息，序列化失败时 panic
// 负载均为本包内的结构体，序列化失败属于编程错误
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 序列化为下行的 JSON 字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 解析上行的 JSON 字节
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ParsePayload 将消息负载解析为具体的 payload 结构
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
