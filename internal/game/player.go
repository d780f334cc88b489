package game

import (
	"strings"

	"github.com/google/uuid"

	"github.com/palemoky/red-tetris/internal/apperrors"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/types"
)

const (
	// BoardRows 棋盘行数
	BoardRows = 20
	// BoardCols 棋盘列数
	BoardCols = 10

	// CellEmpty 空格
	CellEmpty = 0
	// CellLocked 已锁定的方块
	CellLocked = 1
	// CellPenalty 不可消除的惩罚行
	CellPenalty = -1
)

// linePoints 消行得分表，下标为消行数（4 行及以上按 4 行计）
var linePoints = []int{0, 100, 300, 500, 800}

// Player 房间中的玩家会话
// 所有字段仅在所属房间的锁内读写，通知经由 Client 异步下发
type Player struct {
	ID     string                // 服务端生成的玩家 ID，与连接 ID 相互独立
	Name   string                // 昵称，加入房间时保证在房间内唯一
	Client types.ClientInterface // 出站通知通道

	Score   int     // 当前分数
	IsOut   bool    // 是否已出局（单调置位，ResetMatch 时清除）
	IsReady bool    // 是否已准备
	Terrain [][]int // 20x10 棋盘，仅用于跟踪惩罚行高度
}

// NewPlayer 创建玩家会话，昵称为空白时失败
func NewPlayer(name string, client types.ClientInterface) (*Player, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ErrInvalidName
	}

	return &Player{
		ID:      uuid.New().String(),
		Name:    name,
		Client:  client,
		Terrain: emptyTerrain(),
	}, nil
}

// emptyTerrain 构造一块空棋盘
func emptyTerrain() [][]int {
	terrain := make([][]int, BoardRows)
	for i := range terrain {
		terrain[i] = make([]int, BoardCols)
	}
	return terrain
}

// ApplyLineClear 按消行数加分并通知客户端，返回新分数
func (p *Player) ApplyLineClear(lines int) int {
	if lines < 0 {
		lines = 0
	}
	if lines >= len(linePoints) {
		lines = len(linePoints) - 1
	}
	p.Score += linePoints[lines]

	p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgScoreUpdated, protocol.ScoreUpdatedPayload{
		Score: p.Score,
	}))

	return p.Score
}

// ApplyPenalty 在棋盘底部注入惩罚行
// 移除顶部 lines 行、在底部追加等量的惩罚行，始终保持 20 行
func (p *Player) ApplyPenalty(lines int, fromPlayer string) {
	if lines <= 0 {
		return
	}
	if lines > BoardRows {
		lines = BoardRows
	}

	p.Terrain = p.Terrain[lines:]
	for i := 0; i < lines; i++ {
		row := make([]int, BoardCols)
		for x := range row {
			row[x] = CellPenalty
		}
		p.Terrain = append(p.Terrain, row)
	}

	p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgPenaltyApplied, protocol.PenaltyAppliedPayload{
		Lines:      lines,
		FromPlayer: fromPlayer,
		ToPlayer:   p.Name,
		Terrain:    p.Terrain,
	}))
}

// Spectre 计算频谱：每列从最高的非空格到棋盘底部的高度
func (p *Player) Spectre() []int {
	spectre := make([]int, BoardCols)
	for x := 0; x < BoardCols; x++ {
		for y := 0; y < BoardRows; y++ {
			if p.Terrain[y][x] != CellEmpty {
				spectre[x] = BoardRows - y
				break
			}
		}
	}
	return spectre
}

// Reset 清空棋盘，分数和出局标记由房间层负责
func (p *Player) Reset() {
	p.Terrain = emptyTerrain()
}

// MarkEliminated 标记玩家出局并通知其客户端，重复调用不再通知
func (p *Player) MarkEliminated() {
	if p.IsOut {
		return
	}
	p.IsOut = true

	p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgGameOver, nil))
}

// SendPieceSequence 下发方块序列，序列为空时不通知并返回 false
func (p *Player) SendPieceSequence(sequence []int) bool {
	if len(sequence) == 0 {
		return false
	}

	p.Client.SendMessage(protocol.MustNewMessage(protocol.MsgPieceSequence, protocol.PieceSequencePayload{
		Pieces: sequence,
	}))
	return true
}
