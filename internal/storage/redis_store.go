package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/red-tetris/internal/game"
)

const (
	// Redis key 前缀
	scoreKeyPrefix = "score:"
	roomKeyPrefix  = "room:"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 分数存储 ---

// SaveScore 保存玩家分数
func (rs *RedisStore) SaveScore(ctx context.Context, userID string, score int) error {
	key := scoreKeyPrefix + userID
	return rs.client.Set(ctx, key, score, 0).Err()
}

// LoadScore 读取玩家分数，不存在时返回 0
func (rs *RedisStore) LoadScore(ctx context.Context, userID string) (int, error) {
	key := scoreKeyPrefix + userID
	score, err := rs.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return score, nil
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, snap *game.RoomSnapshot) error {
	if snap == nil {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("序列化房间快照失败: %w", err)
	}

	key := roomKeyPrefix + snap.Name
	return rs.client.Set(ctx, key, data, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, name string) (*game.RoomSnapshot, error) {
	key := roomKeyPrefix + name
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap game.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("反序列化房间快照失败: %w", err)
	}
	return &snap, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, name string) error {
	key := roomKeyPrefix + name
	return rs.client.Del(ctx, key).Err()
}
