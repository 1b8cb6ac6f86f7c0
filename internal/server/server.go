// Package server assembles the application: configuration, logging, the
// message bus, the transport hub, the chat event loop, and the HTTP API.
package server

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/raj-sankey/chat-st/internal/chat"
	"github.com/raj-sankey/chat-st/internal/config"
	"github.com/raj-sankey/chat-st/internal/database"
	"github.com/raj-sankey/chat-st/internal/directory"
	"github.com/raj-sankey/chat-st/internal/handlers"
	"github.com/raj-sankey/chat-st/internal/logging"
	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/storage"
	"github.com/raj-sankey/chat-st/internal/transport"
)

// Server holds the dependencies for the chat server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	bus  *pubsub.WatermillBridge
	hub  *transport.Hub
	loop *chat.Loop

	directoryHandler *handlers.DirectoryHandler
	uploadHandler    *handlers.UploadHandler
}

// New creates a new Server instance with all dependencies wired.
func New() *Server {
	// Load environment variables from .env file if it exists.
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet; the standard logger is fine for setup.
		log.Println("No .env file found, relying on environment variables")
	}

	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewWatermillBridge()
	hub := transport.NewHub(bus)
	loop := chat.NewLoop(bus, hub)

	dir := directory.NewStore(db)
	store := storage.NewOSStore(cfg.UploadDir)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = handlers.NewValidator()

	return &Server{
		E:                e,
		DB:               db,
		Cfg:              cfg,
		bus:              bus,
		hub:              hub,
		loop:             loop,
		directoryHandler: handlers.NewDirectoryHandler(dir),
		uploadHandler:    handlers.NewUploadHandler(store, cfg.MaxUploadBytes),
	}
}
