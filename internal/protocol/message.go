package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinRoom    MessageType = "join_room"     // 加入房间（带模式）
	MsgLeaveRoom   MessageType = "leave_room"    // 离开房间
	MsgPlayerReady MessageType = "player_ready"  // 准备就绪
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表

	// 游戏操作
	MsgStartGame      MessageType = "start_game"       // 请求开始对局
	MsgStartGameMulti MessageType = "start_game_multi" // 房主开始对局（带回执）
	MsgLineComplete   MessageType = "line_complete"    // 上报消行
	MsgRestartGame    MessageType = "restart_game"     // 重开对局
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgYouAreLeader      MessageType = "you_are_leader"      // 您已成为房主
	MsgLeaderChanged     MessageType = "leader_changed"      // 房主变更
	MsgPlayerListUpdated MessageType = "player_list_updated" // 玩家列表更新
	MsgWaitingForPlayer  MessageType = "waiting_for_player"  // 等待其他玩家加入
	MsgWaitingForLeader  MessageType = "waiting_for_leader"  // 等待房主开始
	MsgCanStartGame      MessageType = "can_start_game"      // 房主可以开始对局
	MsgReadyToStart      MessageType = "ready_to_start"      // 全员已准备
	MsgRoomsUpdated      MessageType = "rooms_updated"       // 房间列表变化推送
	MsgRoomListResult    MessageType = "room_list_result"    // 房间列表查询结果

	// 游戏流程
	MsgGameStarted    MessageType = "game_started"    // 对局开始（含方块序列）
	MsgPieceSequence  MessageType = "piece_sequence"  // 方块序列下发
	MsgScoreUpdated   MessageType = "score_updated"   // 分数更新
	MsgPenaltyApplied MessageType = "penalty_applied" // 惩罚行下发
	MsgSpectreUpdated MessageType = "spectre_updated" // 频谱（列高）更新
	MsgStartAck       MessageType = "start_ack"       // 开始对局的回执
	MsgGameReset      MessageType = "game_reset"      // 对局重置

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// MsgGameOver 双向消息：客户端上报自己顶出（出局），服务端广播对局结束
const MsgGameOver MessageType = "game_over"
