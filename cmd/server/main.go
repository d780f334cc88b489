package main

import (
	"flag"
	"log"

	"github.com/palemoky/red-tetris/internal/config"
	"github.com/palemoky/red-tetris/internal/network/server"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（留空使用默认配置）")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ 加载配置失败: %v", err)
		}
	} else {
		cfg = config.Default()
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("❌ 初始化服务器失败: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("❌ 服务器退出: %v", err)
	}
}
