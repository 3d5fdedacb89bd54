package main

import (
	"log"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/auth"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/config"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/handler"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/router"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 可选，生产环境直接用环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保属主账号与预置活动类型就位
	if err := db.EnsureOwner(cfg.OwnerUsername, cfg.OwnerPassword); err != nil {
		log.Fatalf("failed to ensure owner account: %v", err)
	}
	if err := service.NewActivityTypeService(db.DB).EnsureDefaults(); err != nil {
		log.Fatalf("failed to seed default activity types: %v", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	api := handler.NewAPI(db.DB, tokens, cfg.UploadDir, cfg.UploadURLPath)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, tokens, cfg.UploadDir, cfg.UploadURLPath)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
