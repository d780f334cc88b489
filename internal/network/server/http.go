package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/palemoky/red-tetris/internal/protocol"
)

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleRooms 返回可加入的多人房间列表，不足时先补齐到配置的最低数量
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.directory.EnsureMinimumAvailable(s.config.Game.MinOpenRooms)
	writeJSON(w, protocol.RoomListResultPayload{
		Rooms: s.directory.ListAvailable(protocol.ModeMultiplayer),
	})
}

// handleSolo 创建一个单人房间并返回其房间名
func (s *Server) handleSolo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := fmt.Sprintf("solo_%s", uuid.New().String()[:8])
	s.directory.GetOrCreate(name, protocol.ModeSolo)
	writeJSON(w, map[string]string{"room": name})
}

// handleScore 查询或保存玩家分数（GET/POST /score/{userId}）
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/score/")
	if userID == "" || strings.Contains(userID, "/") {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		score, err := s.store.LoadScore(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"user": userID, "score": score})

	case http.MethodPost:
		var body struct {
			Score int `json:"score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := s.store.SaveScore(r.Context(), userID, body.Score); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"user": userID, "score": body.Score})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("响应编码错误: %v", err)
	}
}
