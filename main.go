// @title Coding Arena 后端 API
// @version 1.0
// @description 游戏化编程挑战平台的后端服务器。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"coding_arena_backend/internal/app"
	"coding_arena_backend/internal/config"
	"coding_arena_backend/pkg/configwatcher"
	"coding_arena_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	// 配置热更新：目前仅日志级别随配置变化
	application.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.InitLogger(newCfg)
		logger.Log.Info("Configuration reloaded")
	})
	go configwatcher.WatchConfig("configs/config.yaml", application.ReloadConfig)

	application.Run()
}
