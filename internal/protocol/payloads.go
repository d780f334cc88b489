package protocol

// GameMode 游戏模式
type GameMode string

const (
	ModeMultiplayer GameMode = "multiplayer" // 多人对战
	ModeSolo        GameMode = "solo"        // 单人模式
)

// PlayerInfo 玩家信息
type PlayerInfo struct {
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
	Score    int    `json:"score"`
	IsOut    bool   `json:"is_out"` // 是否已出局
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomName    string `json:"room_name"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	IsStarted   bool   `json:"is_started"`
}

// --- 客户端 → 服务端 ---

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	Room       string   `json:"room"`
	PlayerName string   `json:"player_name"`
	Mode       GameMode `json:"mode"`
}

// LeaveRoomPayload 离开房间请求
type LeaveRoomPayload struct {
	Room       string `json:"room"`
	PlayerName string `json:"player_name,omitempty"`
}

// RoomPayload 只带房间名的请求（player_ready / start_game / game_over 等）
type RoomPayload struct {
	Room string `json:"room"`
}

// LineCompletePayload 消行上报
type LineCompletePayload struct {
	Room  string `json:"room"`
	Lines int    `json:"lines"`
}

// --- 服务端 → 客户端 ---

// ConnectedPayload 连接成功
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
}

// LeaderChangedPayload 房主变更
type LeaderChangedPayload struct {
	Name string `json:"name"`
}

// PlayerListUpdatedPayload 玩家列表更新
type PlayerListUpdatedPayload struct {
	Players []PlayerInfo `json:"players"`
}

// WaitingPayload 等待提示
type WaitingPayload struct {
	Message string `json:"message"`
}

// GameStartedPayload 对局开始，所有玩家收到相同的方块序列和空棋盘
type GameStartedPayload struct {
	Pieces      []int   `json:"pieces"`
	InitialGrid [][]int `json:"initial_grid"`
}

// PieceSequencePayload 方块序列下发
type PieceSequencePayload struct {
	Pieces []int `json:"pieces"`
}

// ScoreUpdatedPayload 分数更新
type ScoreUpdatedPayload struct {
	Score int `json:"score"`
}

// PenaltyAppliedPayload 惩罚行下发
type PenaltyAppliedPayload struct {
	Lines      int     `json:"lines"`
	FromPlayer string  `json:"from_player"`
	ToPlayer   string  `json:"to_player"`
	Terrain    [][]int `json:"terrain,omitempty"` // 受罚方的棋盘快照
}

// SpectreUpdatedPayload 频谱更新（每列的堆叠高度，供对手端展示）
type SpectreUpdatedPayload struct {
	PlayerName string `json:"player_name"`
	Spectre    []int  `json:"spectre"`
}

// GameOverPayload 对局结束广播
type GameOverPayload struct {
	Type   string `json:"type"`             // "victory" 或 "draw"
	Winner string `json:"winner,omitempty"` // 胜者昵称，平局时为空
}

// StartAckPayload 开始对局的回执
type StartAckPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RoomListResultPayload 房间列表
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// 对局结束类型
const (
	GameOverVictory = "victory" // 仅剩一名玩家存活
	GameOverDraw    = "draw"    // 无人存活
)
