package game

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/red-tetris/internal/config"
	"github.com/palemoky/red-tetris/internal/protocol"
)

// Directory 进程级房间注册表，按名字创建、查找和回收房间
// 显式注入到各连接处理器中，不依赖包级全局状态
type Directory struct {
	cfg   config.GameConfig
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewDirectory 创建房间注册表
func NewDirectory(cfg config.GameConfig) *Directory {
	return &Directory{
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate 获取指定房间，不存在时创建（同名幂等）
func (d *Directory) GetOrCreate(name string, mode protocol.GameMode) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	if room, exists := d.rooms[name]; exists {
		return room
	}

	room := NewRoom(name, mode, d.cfg.RoomCapacity, d.cfg.SequenceLength)
	d.rooms[name] = room
	log.Printf("🏠 房间 %s 已创建 (模式: %s)", name, mode)
	return room
}

// Get 获取房间，不存在时返回 nil
func (d *Directory) Get(name string) *Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms[name]
}

// ListAvailable 列出指定模式的房间，跳过名字为空或占位的房间
func (d *Directory) ListAvailable(mode protocol.GameMode) []protocol.RoomListItem {
	d.mu.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for name, room := range d.rooms {
		if strings.TrimSpace(name) == "" || name == "null" {
			continue
		}
		if room.Mode == mode {
			rooms = append(rooms, room)
		}
	}
	d.mu.RUnlock()

	// 房间自身的快照在注册表锁外获取，避免跨房间阻塞
	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, room.ListItem())
	}
	return items
}

// EnsureMinimumAvailable 补足空闲的多人房间，直到未开局的房间数不少于 n
// 房间名按递增计数生成并跳过已占用的名字
func (d *Directory) EnsureMinimumAvailable(n int) {
	d.mu.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		if room.Mode == protocol.ModeMultiplayer {
			rooms = append(rooms, room)
		}
	}
	d.mu.RUnlock()

	// 房间自身的锁在注册表锁外获取
	available := 0
	for _, room := range rooms {
		if !room.Started() {
			available++
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	counter := 0
	for available < n {
		name := fmt.Sprintf("Room_%d", counter)
		counter++
		if _, exists := d.rooms[name]; exists {
			continue
		}
		d.rooms[name] = NewRoom(name, protocol.ModeMultiplayer, d.cfg.RoomCapacity, d.cfg.SequenceLength)
		log.Printf("🏠 预创建房间 %s", name)
		available++
	}
}

// Retire 回收已清空的房间
func (d *Directory) Retire(name string) {
	d.mu.RLock()
	room := d.rooms[name]
	d.mu.RUnlock()

	if room == nil || room.PlayerCount() > 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// 仅在映射仍指向同一实例时删除，防止回收同名新房间
	if d.rooms[name] == room {
		delete(d.rooms, name)
		log.Printf("🏠 房间 %s 已回收", name)
	}
}

// CleanupIdle 清理超过空闲时限且未开局的空房间
func (d *Directory) CleanupIdle(timeout time.Duration) {
	d.mu.RLock()
	rooms := make(map[string]*Room, len(d.rooms))
	for name, room := range d.rooms {
		rooms[name] = room
	}
	d.mu.RUnlock()

	now := time.Now()
	expired := make([]string, 0)
	for name, room := range rooms {
		if room.PlayerCount() == 0 && !room.Started() && now.Sub(room.CreatedAt) > timeout {
			expired = append(expired, name)
		}
	}
	if len(expired) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, name := range expired {
		if d.rooms[name] == rooms[name] {
			delete(d.rooms, name)
			log.Printf("🧹 空闲房间 %s 超时已清理", name)
		}
	}
}
