package main

import (
	"flag"
	"log/slog"
	"os"

	"stegx/config"
	"stegx/handlers"
	"stegx/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML or YAML config file (default $STEGX_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	router := newRouter(cfg, logger)

	logger.Info("server starting", "port", cfg.Server.Port)
	logger.Info("API endpoints",
		"image", "POST /api/v1/stego/image/{embed,extract} - hide in / read from pixel LSBs (PNG or BMP output)",
		"audio", "POST /api/v1/stego/audio/{embed,extract} - hide in / read from sample LSBs (WAV output)",
		"text", "POST /api/v1/stego/text/{embed,extract} - zero-width interleaving in plain text",
		"capacity", "POST /api/v1/stego/capacity - report how much a carrier can hold",
		"health", "GET /api/v1/health")

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", logging.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{
		"X-Stego-PSNR", "X-Stego-Message", "X-Stego-Method", "X-Stego-Capacity",
		"X-Source-Title", "X-Source-Artist", "Content-Disposition", logging.HeaderRequestID,
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	handlers.NewStegoHandler(cfg).Register(router)
	return router
}
