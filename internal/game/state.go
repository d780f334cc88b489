package game

// RoomState 房间状态
type RoomState int

const (
	RoomStateEmpty      RoomState = iota // 无玩家
	RoomStateFilling                     // 有玩家但未达到可开始人数
	RoomStateReady                       // 人数允许房主开始对局
	RoomStateInProgress                  // 对局进行中
	RoomStateTerminated                  // 对局已结束，等待重置
)
