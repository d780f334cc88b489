package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/red-tetris/internal/config"
	"github.com/palemoky/red-tetris/internal/game"
	"github.com/palemoky/red-tetris/internal/network/server/handlers"
	"github.com/palemoky/red-tetris/internal/protocol"
	"github.com/palemoky/red-tetris/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源（开发环境）
	},
}

// Server 游戏服务器
type Server struct {
	config    *config.Config
	redis     *redis.Client
	store     *storage.RedisStore
	directory *game.Directory
	handler   *handlers.Handler

	clients   map[string]*Client
	clientsMu sync.RWMutex
}

// NewServer 创建游戏服务器
func NewServer(cfg *config.Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	store := storage.NewRedisStore(rdb)
	directory := game.NewDirectory(cfg.Game)
	directory.EnsureMinimumAvailable(cfg.Game.MinOpenRooms)

	s := &Server{
		config:    cfg,
		redis:     rdb,
		store:     store,
		directory: directory,
		clients:   make(map[string]*Client),
	}
	s.handler = handlers.NewHandler(directory, store, s)
	return s, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/solo", s.handleSolo)
	mux.HandleFunc("/score/", s.handleScore)

	go s.cleanupLoop()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	log.Printf("🚀 服务器启动于 %s", addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	return httpServer.ListenAndServe()
}

// cleanupLoop 周期性回收超时的空闲房间
func (s *Server) cleanupLoop() {
	timeout := s.config.Game.RoomTimeoutDuration()
	ticker := time.NewTicker(timeout)
	defer ticker.Stop()

	for range ticker.C {
		s.directory.CleanupIdle(timeout)
	}
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn)
	s.registerClient(client)

	log.Printf("✅ 客户端连接: %s", client.ID)

	// 告知客户端其连接 ID
	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID: client.ID,
	}))

	go client.ReadPump()
	go client.WritePump()
}

// Broadcast 向所有在线客户端推送消息
func (s *Server) Broadcast(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.SendMessage(msg)
	}
}

// registerClient 注册客户端
func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.ID] = c
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[c.ID]; ok {
		delete(s.clients, c.ID)
		c.Close()
		log.Printf("❌ 客户端断开: %s", c.ID)
	}
}

// GetOnlineCount 获取在线人数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
