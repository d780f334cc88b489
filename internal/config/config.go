package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	RoomCapacity   int `yaml:"room_capacity"`   // 每个房间的最大玩家数
	SequenceLength int `yaml:"sequence_length"` // 每局下发的方块序列长度
	MinOpenRooms   int `yaml:"min_open_rooms"`  // 大厅保持的最少可加入房间数
	RoomTimeout    int `yaml:"room_timeout"`    // 空闲房间超时（分钟）
}

// RoomTimeoutDuration 返回空闲房间超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 为零值字段填充默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.RoomCapacity == 0 {
		c.Game.RoomCapacity = 2
	}
	if c.Game.SequenceLength == 0 {
		c.Game.SequenceLength = 100
	}
	if c.Game.MinOpenRooms == 0 {
		c.Game.MinOpenRooms = 3
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = 10
	}
}
