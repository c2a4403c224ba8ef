// @title Learning Points 后端 API
// @version 1.0
// @description 学习平台积分、等级与排行榜服务。

// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"learning_points_backend/internal/app"
	"learning_points_backend/internal/config"
	"learning_points_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	seed := flag.Bool("seed", false, "写入默认等级与积分配置（或迁移旧格式），完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.MigrateOnly = *migrateOnly
	cfg.SeedOnly = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}
	if *seed {
		log.Println("默认配置写入完成，退出程序")
		return
	}

	application.Run()
}
