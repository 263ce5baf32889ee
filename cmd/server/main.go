package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/meetsync/backend/api/handlers"
	"github.com/meetsync/backend/internal/ai"
	"github.com/meetsync/backend/internal/auth"
	"github.com/meetsync/backend/internal/config"
	"github.com/meetsync/backend/internal/db"
	"github.com/meetsync/backend/internal/hub"
	"github.com/meetsync/backend/internal/repository"
	"github.com/meetsync/backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	meetingRepo := repository.NewMeetingRepository(database)
	gate := auth.NewGate(cfg.JWTSecret, cfg.AuthTokenDuration)

	summarizer := ai.NewClient(ai.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
	})
	if cfg.GroqAPIKey == "" {
		log.Println("GROQ_API_KEY not set, analysis results will be degraded")
	}

	// Live session hub
	registry := hub.NewRegistry()
	dispatcher := hub.NewDispatcher(registry)
	store := hub.NewStore(cfg.ReplayLimit)
	controller := hub.NewController(store, dispatcher, summarizer, cfg.AnalysisTimeout)
	wsGateway := ws.NewHandler(registry, dispatcher, controller)

	meetingHandler := handlers.NewMeetingHandler(meetingRepo)
	wsHandler := handlers.NewWebSocketHandler(meetingRepo, gate, wsGateway)

	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authed := api.Group("")
		authed.Use(handlers.AuthMiddleware(gate))
		meetingHandler.RegisterRoutes(authed)

		// WebSocket admission does its own token resolution (query param)
		wsHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		db.CloseDB()
		os.Exit(0)
	}()

	log.Printf("Starting server on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
