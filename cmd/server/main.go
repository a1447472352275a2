package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-server/internal/auth"
	"chat-server/internal/chat"
	"chat-server/internal/config"
	"chat-server/internal/database"
	"chat-server/internal/handlers"
	"chat-server/internal/services"
	"chat-server/internal/storage"
	"chat-server/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize blob storage
	store, err := storage.NewStore(cfg.Upload.Dir, cfg.Upload.MaxFileBytes)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage: %v", err)
	}

	// Initialize services
	authService := auth.NewService(db, cfg)
	channelService := services.NewChannelService(db)

	// Initialize the fan-out core
	rooms := chat.NewRoomIndex()
	registry := chat.NewRegistry(rooms)
	presence := chat.NewPresence()
	engine := chat.NewEngine(registry, rooms, presence, db, db, store, cfg.Chat.HistoryLimit)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	userHandlers := handlers.NewUserHandlers(db, authService)
	channelHandlers := handlers.NewChannelHandlers(channelService, authService)
	messageHandlers := handlers.NewMessageHandlers(db, engine, authService)
	fileHandlers := handlers.NewFileHandlers(db, store, engine, authService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, engine, presence)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, authHandlers, userHandlers, channelHandlers, messageHandlers, fileHandlers, wsHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func setupRoutes(
	mux *http.ServeMux,
	authHandlers *handlers.AuthHandlers,
	userHandlers *handlers.UserHandlers,
	channelHandlers *handlers.ChannelHandlers,
	messageHandlers *handlers.MessageHandlers,
	fileHandlers *handlers.FileHandlers,
	wsHandlers *handlers.WebSocketHandlers,
) {
	// Auth routes
	mux.HandleFunc("POST /register", authHandlers.Register)
	mux.HandleFunc("POST /login", authHandlers.Login)

	// User routes
	mux.HandleFunc("GET /users", userHandlers.ListUsers)
	mux.HandleFunc("GET /users/{id}", userHandlers.GetUser)
	mux.HandleFunc("PUT /users/{id}", userHandlers.UpdateUser)
	mux.HandleFunc("DELETE /users/{id}", userHandlers.DeleteUser)
	mux.HandleFunc("GET /users/{id}/channels", channelHandlers.ListUserChannels)

	// Channel routes
	mux.HandleFunc("POST /channels", channelHandlers.CreateChannel)
	mux.HandleFunc("GET /channels", channelHandlers.ListChannels)
	mux.HandleFunc("GET /channels/{id}", channelHandlers.GetChannel)
	mux.HandleFunc("POST /channels/{id}/members", channelHandlers.AddMember)
	mux.HandleFunc("DELETE /channels/{id}/members/{userId}", channelHandlers.RemoveMember)
	mux.HandleFunc("GET /channels/{id}/members", channelHandlers.ListMembers)

	// Message routes
	mux.HandleFunc("GET /channels/{id}/messages", messageHandlers.ListMessages)
	mux.HandleFunc("POST /channels/{id}/messages", messageHandlers.SendMessage)

	// File routes
	mux.HandleFunc("POST /channels/{id}/files", fileHandlers.UploadFile)
	mux.HandleFunc("GET /files/{id}", fileHandlers.GetFile)
	mux.HandleFunc("DELETE /files/{id}", fileHandlers.DeleteFile)
	mux.HandleFunc("GET /uploads/{name}", fileHandlers.ServeUpload)

	// Presence route
	mux.HandleFunc("GET /presence", wsHandlers.Presence)

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
