package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cardtable/solitaire-be/internal/api"
	"github.com/cardtable/solitaire-be/internal/config"
	"github.com/cardtable/solitaire-be/internal/db"
	"github.com/cardtable/solitaire-be/internal/session"
	"github.com/cardtable/solitaire-be/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "solitaire.yml", "Configuration file path")
		port        = flag.String("port", "8080", "Server port")
		dbPath      = flag.String("db", "./data/solitaire.db", "Database path")
		frontendURL = flag.String("frontend", "http://localhost:3000", "Frontend URL for CORS")
		debug       = flag.Bool("debug", false, "Verbose engine logging")
	)
	flag.Parse()

	// Layer the configuration: file, then environment, then explicit flags
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "db":
			cfg.Database.Path = *dbPath
		case "frontend":
			cfg.Server.FrontendURL = *frontendURL
		}
	})

	// The game engine logs through zap, the server shell through the
	// standard logger
	var logger *zap.Logger
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Create data directory if it doesn't exist
	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize the store
	sessionStore := store.NewMemoryStore()
	log.Println("In-memory session store initialized")

	// Initialize the database
	database, err := db.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Printf("Warning: Failed to initialize database: %v", err)
		log.Println("Continuing without database persistence")
		database = nil
	} else {
		log.Println("Database initialized successfully")
		defer database.Close()
	}

	// Initialize WebSocket hub
	hub := api.NewHub()
	go hub.Run()
	log.Println("WebSocket hub started")

	// Initialize API handlers
	sessionCfg := session.Config{
		DoubleClick: time.Duration(cfg.Game.DoubleClickMs) * time.Millisecond,
		MarginX:     cfg.Game.MarginX,
		MarginY:     cfg.Game.MarginY,
		BoardW:      cfg.Game.BoardWidth,
		BoardH:      cfg.Game.BoardHeight,
	}
	handlers := api.NewHandlers(sessionStore, database, hub, sessionCfg, logger)

	// Set up router
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	// Add middleware for logging
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Printf("%s %s %s", r.Method, r.RequestURI, time.Since(start))
		})
	})

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a termination signal
	<-stop

	log.Println("Shutting down server...")
	hub.BroadcastAll(api.Message{Type: "serverShutdown"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
