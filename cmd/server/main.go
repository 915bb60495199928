package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/api"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/auth"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/config"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/mcp"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/services"
	tlsutil "github.com/Abhishek0104/LamForGallery-sub001/internal/tls"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logging
	logger := logging.NewLogger()

	inMemory := flag.Bool("in-memory", false, "Run against the built-in sample library instead of Postgres")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	if *inMemory {
		cfg.Gallery.InMemory = true
	}

	logger.Info("Starting Gallery Agent Service")

	// Initialize store layer
	store, dbPool, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store: %v", err)
		log.Fatalf("Store initialization failed: %v", err)
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	logger.Info("Photo store ready (in_memory=%v)", cfg.Gallery.InMemory)

	// Initialize service layer
	notifier := newLogNotifier(logger)
	encoder := services.NewHTTPTextEncoder(cfg.Encoder.URL)
	searchService := services.NewSearchService(store, store, encoder, logger,
		cfg.Gallery.PageSize, cfg.Gallery.SimilarityThreshold)
	scanner := services.NewDuplicateScanner(store, cfg.Gallery.DuplicateThreshold)
	coordinator := services.NewConsentCoordinator(store, notifier, logger, cfg.Gallery.PendingTTL)
	coordinator.StartExpirySweep(ctx, time.Minute)
	session := services.NewSession()

	logger.Info("Service layer initialized")

	// Create Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize authentication
	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize auth: %v", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	// Register auth handlers
	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	// Mount REST API handlers: health plus the consent resolution endpoint
	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	apiHandler := api.NewHandler(coordinator, store, logger)
	api.RegisterHandlers(apiGroup, apiHandler)

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(searchService, scanner, coordinator, session, notifier, logger)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	// Create HTTP server
	addr := ":8080"
	if cfg.TLS.Enable {
		// use TLS port 8443
		addr = ":8443"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting: address=%s tls=%v", addr, cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tlsutil.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert: %v", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error: %v", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}

func initStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.GalleryStore, *pgxpool.Pool, error) {
	if cfg.Gallery.InMemory {
		store := repository.NewMemoryGalleryStore(true)
		if err := seedDemoLibrary(ctx, store); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo library: %w", err)
		}
		return store, nil, nil
	}

	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return repository.NewPostgresGalleryStore(pool), pool, nil
}

// seedDemoLibrary loads a tiny library so the service is usable without
// Postgres or an encoder that matches real image embeddings.
func seedDemoLibrary(ctx context.Context, store *repository.MemoryGalleryStore) error {
	photos := []models.PhotoRecord{
		{ID: "content://media/photos/1", Embedding: []float32{0.9, 0.1, 0.0}, Location: "Paris, France", CapturedAt: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), Album: "Camera"},
		{ID: "content://media/photos/2", Embedding: []float32{0.88, 0.12, 0.01}, Location: "Paris, France", CapturedAt: time.Date(2024, 3, 10, 14, 0, 5, 0, time.UTC), Album: "Camera"},
		{ID: "content://media/photos/3", Embedding: []float32{0.1, 0.9, 0.2}, Location: "London, UK", CapturedAt: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), Album: "Camera"},
		{ID: "content://media/photos/4", Embedding: []float32{0.0, 0.2, 0.95}, Location: "", CapturedAt: time.Date(2023, 12, 24, 19, 0, 0, 0, time.UTC), Album: "Screenshots"},
	}
	for i := range photos {
		if err := store.Insert(ctx, &photos[i]); err != nil {
			return err
		}
	}

	persons := []models.PersonRecord{
		{ID: models.SelfPersonID, DisplayName: "Me"},
		{ID: "person:alice", DisplayName: "Alice"},
	}
	for i := range persons {
		if err := store.AddPerson(ctx, &persons[i]); err != nil {
			return err
		}
	}

	links := map[string][]string{
		models.SelfPersonID: {"content://media/photos/1", "content://media/photos/2"},
		"person:alice":      {"content://media/photos/3"},
	}
	for personID, photoIDs := range links {
		for _, photoID := range photoIDs {
			if err := store.LinkPersonPhoto(ctx, personID, photoID); err != nil {
				return err
			}
		}
	}
	return nil
}

// logNotifier is the default consent-broker surface: every notification is
// logged, and a host application can replace it with its own Notifier.
type logNotifier struct {
	logger *logging.Logger
}

func newLogNotifier(logger *logging.Logger) services.Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(event services.Notification) {
	switch e := event.(type) {
	case services.SearchResultsUpdated:
		n.logger.Info("search results updated: count=%d", e.Result.Count())
	case services.UserMessage:
		n.logger.Info("user message: %s", e.Text)
	case services.ConsentRequested:
		n.logger.Info("consent requested: token=%s reason=%q count=%d (resolve via POST /api/v1/consents/%s)",
			e.Token, e.Reason, len(e.Mutation.TargetPhotoIDs), e.Token)
	case services.GalleryChanged:
		n.logger.Info("gallery changed: kind=%s count=%d", e.Kind, e.Count)
	case services.DuplicatesFound:
		n.logger.Info("duplicate scan finished: groups=%d", len(e.Groups))
	}
}
