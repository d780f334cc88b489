package game

import (
	"log"
	"sync"
	"time"

	"github.com/palemoky/red-tetris/internal/apperrors"
	"github.com/palemoky/red-tetris/internal/game/piece"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/types"
)

// Room 游戏房间，持有本房间全部玩家会话及对局状态
// 所有状态变更都在 mu 内串行执行：出局判定、房主交接与终局广播
// 必须和触发它们的状态写入处于同一临界区，才能保证终局只广播一次
type Room struct {
	Name      string            // 房间名（全局唯一）
	Mode      protocol.GameMode // 游戏模式
	Capacity  int               // 最大玩家数
	SeqLength int               // 每局方块序列长度
	CreatedAt time.Time         // 创建时间

	State         RoomState          // 房间状态
	Players       map[string]*Player // 玩家 ID → 会话
	PlayerOrder   []string           // 加入顺序（房主交接依据）
	LeaderID      string             // 房主的玩家 ID，房间为空时为空串
	IsStarted     bool               // 对局是否进行中
	Terminated    bool               // 本局是否已终结（单调，重置前不复用）
	PieceSequence []int              // 本局的方块序列，开局时生成后不再变化

	mu sync.Mutex
}

// NewRoom 创建房间，单人房容量恒为 1
func NewRoom(name string, mode protocol.GameMode, capacity, seqLength int) *Room {
	if mode == protocol.ModeSolo {
		capacity = 1
	}
	if capacity < 1 {
		capacity = 2
	}
	if seqLength <= 0 {
		seqLength = piece.DefaultSequenceLength
	}

	return &Room{
		Name:        name,
		Mode:        mode,
		Capacity:    capacity,
		SeqLength:   seqLength,
		CreatedAt:   time.Now(),
		State:       RoomStateEmpty,
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, capacity),
	}
}

// minPlayers 开始对局所需的最少人数
func (r *Room) minPlayers() int {
	if r.Mode == protocol.ModeSolo {
		return 1
	}
	return 2
}

// AddPlayer 玩家加入房间并参与房主选举
func (r *Room) AddPlayer(name string, client types.ClientInterface) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IsStarted {
		return nil, apperrors.ErrGameStarted
	}
	if len(r.Players) >= r.Capacity {
		return nil, apperrors.ErrRoomFull
	}
	for _, p := range r.Players {
		if p.Name == name {
			return nil, apperrors.ErrDuplicateName
		}
	}

	player, err := NewPlayer(name, client)
	if err != nil {
		return nil, err
	}

	r.Players[player.ID] = player
	r.PlayerOrder = append(r.PlayerOrder, player.ID)
	client.SetName(name)
	client.SetRoom(r.Name)

	// 首位玩家自动成为房主
	if r.LeaderID == "" {
		r.setLeaderLocked(player.ID)
	}

	r.updateStateLocked()
	r.broadcastPlayerListLocked()
	r.announceWaitStatusLocked()

	log.Printf("👤 玩家 %s 加入房间 %s (%d/%d)", name, r.Name, len(r.Players), r.Capacity)

	return player, nil
}

// RemovePlayer 移除玩家并在必要时交接房主
// 移除玩家永远不会终结进行中的对局，终局只由出局判定驱动
func (r *Room) RemovePlayer(playerID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(playerID)
}

func (r *Room) removeLocked(playerID string) (empty bool) {
	player, exists := r.Players[playerID]
	if !exists {
		return len(r.Players) == 0
	}

	delete(r.Players, playerID)
	for i, id := range r.PlayerOrder {
		if id == playerID {
			r.PlayerOrder = append(r.PlayerOrder[:i], r.PlayerOrder[i+1:]...)
			break
		}
	}
	player.Client.SetRoom("")

	log.Printf("👋 玩家 %s 离开房间 %s", player.Name, r.Name)

	if len(r.Players) == 0 {
		// 房间清空后整体复位，房间名可被回收
		r.resetLocked()
		r.LeaderID = ""
		r.updateStateLocked()
		return true
	}

	// 房主离开时交给加入顺序中的下一位
	if r.LeaderID == playerID {
		r.setLeaderLocked(r.PlayerOrder[0])
	}

	r.updateStateLocked()
	r.broadcastPlayerListLocked()
	return false
}

// Disconnect 连接断开的统一入口
// 对局中按出局处理（驱动终局判定），随后做成员移除；对局外仅移除
func (r *Room) Disconnect(clientID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.playerByClientLocked(clientID)
	if player == nil {
		return len(r.Players) == 0
	}

	if r.IsStarted && !r.Terminated && !player.IsOut {
		r.eliminateLocked(player)
	}
	return r.removeLocked(player.ID)
}

// StartMatch 房主开始对局
func (r *Room) StartMatch(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IsStarted {
		return apperrors.ErrGameStarted
	}
	if len(r.Players) < r.minPlayers() {
		return apperrors.ErrNotEnoughPlayers
	}

	caller := r.playerByClientLocked(clientID)
	if caller == nil {
		return apperrors.ErrUnknownPlayer
	}
	if caller.ID != r.LeaderID {
		return apperrors.ErrNotLeader
	}

	sequence, err := piece.GenerateSequence(r.SeqLength)
	if err != nil {
		return err
	}

	r.PieceSequence = sequence
	r.IsStarted = true
	r.Terminated = false
	r.updateStateLocked()

	// 每位玩家先拿到空棋盘和相同的序列，再统一广播开局信号
	// 上一局的出局与准备标记同时清除，终局后直接再开一局也是全新状态
	for _, p := range r.Players {
		p.Reset()
		p.IsOut = false
		p.IsReady = false
		p.SendPieceSequence(sequence)
	}

	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Pieces:      sequence,
		InitialGrid: emptyTerrain(),
	}))

	log.Printf("🚀 房间 %s 对局开始，%d 名玩家，序列长度 %d", r.Name, len(r.Players), len(sequence))

	return nil
}

// HandleLineCompletion 处理消行上报：加分并向所有对手注入惩罚行
func (r *Room) HandleLineCompletion(clientID string, lines int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender := r.playerByClientLocked(clientID)
	if sender == nil {
		return apperrors.ErrUnknownPlayer
	}
	if !r.IsStarted {
		return apperrors.ErrGameNotStart
	}

	sender.ApplyLineClear(lines)

	if r.Mode == protocol.ModeSolo {
		return nil
	}

	// 即使只消一行也至少发送一行惩罚（「总是惩罚」规则）
	penalty := lines
	if penalty < 1 {
		penalty = 1
	}

	for _, id := range r.PlayerOrder {
		target := r.Players[id]
		if target == sender || target.IsOut {
			continue
		}

		r.broadcastExceptLocked(target.ID, protocol.MustNewMessage(protocol.MsgPenaltyApplied, protocol.PenaltyAppliedPayload{
			Lines:      penalty,
			FromPlayer: sender.Name,
			ToPlayer:   target.Name,
		}))
		target.ApplyPenalty(penalty, sender.Name)

		r.broadcastExceptLocked(target.ID, protocol.MustNewMessage(protocol.MsgSpectreUpdated, protocol.SpectreUpdatedPayload{
			PlayerName: target.Name,
			Spectre:    target.Spectre(),
		}))
	}

	return nil
}

// HandlePlayerGameOver 处理玩家出局并判定终局
// 判定与 Terminated 置位处于同一临界区，两名玩家同时出局也只广播一次
func (r *Room) HandlePlayerGameOver(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.playerByClientLocked(clientID)
	if player == nil {
		return apperrors.ErrUnknownPlayer
	}
	if player.IsOut {
		// 幂等：重复上报不再触发任何判定
		return nil
	}

	r.eliminateLocked(player)
	return nil
}

// eliminateLocked 标记出局并重算存活集合，必须在 mu 内调用
func (r *Room) eliminateLocked(player *Player) {
	player.MarkEliminated()
	log.Printf("💀 玩家 %s 在房间 %s 出局", player.Name, r.Name)

	if !r.IsStarted || r.Terminated {
		return
	}

	if r.Mode == protocol.ModeSolo {
		r.endMatchLocked("", "")
		return
	}

	active := r.activePlayersLocked()
	switch len(active) {
	case 0:
		r.endMatchLocked("", protocol.GameOverDraw)
	case 1:
		r.endMatchLocked(active[0].Name, protocol.GameOverVictory)
	default:
		// 仍有两名及以上存活，对局继续
	}
}

// endMatchLocked 终结本局，Terminated 标志保证至多广播一次
func (r *Room) endMatchLocked(winner, overType string) {
	if r.Terminated {
		return
	}
	r.Terminated = true
	r.IsStarted = false
	r.updateStateLocked()

	if overType != "" {
		r.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
			Type:   overType,
			Winner: winner,
		}))
	}

	log.Printf("🏁 房间 %s 对局结束 (%s, 胜者: %q)", r.Name, overType, winner)
}

// ResetMatch 复位对局，只能在终局后或两局之间调用
func (r *Room) ResetMatch() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IsStarted && !r.Terminated {
		return apperrors.ErrGameStarted
	}

	r.resetLocked()
	r.updateStateLocked()
	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameReset, nil))
	return nil
}

// resetLocked 清除对局状态，保留玩家分数
func (r *Room) resetLocked() {
	r.IsStarted = false
	r.Terminated = false
	r.PieceSequence = nil
	for _, p := range r.Players {
		p.Reset()
		p.IsOut = false
		p.IsReady = false
	}
}

// SetPlayerReady 设置准备状态，全员准备后广播就绪信号
func (r *Room) SetPlayerReady(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.playerByClientLocked(clientID)
	if player == nil {
		return apperrors.ErrUnknownPlayer
	}
	player.IsReady = true

	if len(r.Players) >= r.minPlayers() && r.allReadyLocked() {
		r.broadcastLocked(protocol.MustNewMessage(protocol.MsgReadyToStart, nil))
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// --- 内部工具 ---

// setLeaderLocked 任命房主并发送相应通知
func (r *Room) setLeaderLocked(playerID string) {
	r.LeaderID = playerID
	leader := r.Players[playerID]

	leader.Client.SendMessage(protocol.MustNewMessage(protocol.MsgYouAreLeader, nil))
	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgLeaderChanged, protocol.LeaderChangedPayload{
		Name: leader.Name,
	}))

	log.Printf("👑 玩家 %s 成为房间 %s 的房主", leader.Name, r.Name)
}

// announceWaitStatusLocked 按当前人数下发等待提示
func (r *Room) announceWaitStatusLocked() {
	if r.Mode == protocol.ModeSolo {
		return
	}

	if len(r.Players) == 1 {
		r.Players[r.PlayerOrder[0]].Client.SendMessage(protocol.MustNewMessage(protocol.MsgWaitingForPlayer, protocol.WaitingPayload{
			Message: "等待其他玩家加入…",
		}))
		return
	}

	for id, p := range r.Players {
		if id == r.LeaderID {
			p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgCanStartGame, nil))
		} else {
			p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgWaitingForLeader, nil))
		}
	}
}

// updateStateLocked 依据玩家数和对局标志重算房间状态
func (r *Room) updateStateLocked() {
	switch {
	case len(r.Players) == 0:
		r.State = RoomStateEmpty
	case r.Terminated:
		r.State = RoomStateTerminated
	case r.IsStarted:
		r.State = RoomStateInProgress
	case len(r.Players) >= r.minPlayers():
		r.State = RoomStateReady
	default:
		r.State = RoomStateFilling
	}
}

func (r *Room) playerByClientLocked(clientID string) *Player {
	for _, p := range r.Players {
		if p.Client.GetID() == clientID {
			return p
		}
	}
	return nil
}

func (r *Room) activePlayersLocked() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		if p := r.Players[id]; !p.IsOut {
			active = append(active, p)
		}
	}
	return active
}

// broadcastLocked 向房间内所有玩家广播
func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, p := range r.Players {
		p.Client.SendMessage(msg)
	}
}

// broadcastExceptLocked 向除指定玩家外的所有玩家广播
func (r *Room) broadcastExceptLocked(excludeID string, msg *protocol.Message) {
	for id, p := range r.Players {
		if id != excludeID {
			p.Client.SendMessage(msg)
		}
	}
}

// broadcastPlayerListLocked 广播最新玩家列表
func (r *Room) broadcastPlayerListLocked() {
	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerListUpdated, protocol.PlayerListUpdatedPayload{
		Players: r.playersInfoLocked(),
	}))
}

func (r *Room) playersInfoLocked() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		p := r.Players[id]
		infos = append(infos, protocol.PlayerInfo{
			Name:     p.Name,
			IsLeader: id == r.LeaderID,
			Score:    p.Score,
			IsOut:    p.IsOut,
		})
	}
	return infos
}

// --- 只读访问 ---

// Started 对局是否进行中
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.IsStarted
}

// PlayerCount 当前玩家数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// ListItem 生成房间列表项
func (r *Room) ListItem() protocol.RoomListItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomListItem{
		RoomName:    r.Name,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.Capacity,
		IsStarted:   r.IsStarted,
	}
}

// PlayersInfo 当前玩家列表快照
func (r *Room) PlayersInfo() []protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersInfoLocked()
}

// Snapshot 生成用于持久化的房间快照
func (r *Room) Snapshot() *RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &RoomSnapshot{
		Name:      r.Name,
		Mode:      string(r.Mode),
		State:     int(r.State),
		IsStarted: r.IsStarted,
		CreatedAt: r.CreatedAt.Unix(),
	}
	for _, id := range r.PlayerOrder {
		p := r.Players[id]
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			IsOut:    p.IsOut,
			IsLeader: id == r.LeaderID,
		})
	}
	return snap
}

// RoomSnapshot 房间的可序列化快照
type RoomSnapshot struct {
	Name      string           `json:"name"`
	Mode      string           `json:"mode"`
	State     int              `json:"state"`
	IsStarted bool             `json:"is_started"`
	CreatedAt int64            `json:"created_at"`
	Players   []PlayerSnapshot `json:"players"`
}

// PlayerSnapshot 玩家的可序列化快照
type PlayerSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	IsOut    bool   `json:"is_out"`
	IsLeader bool   `json:"is_leader"`
}
