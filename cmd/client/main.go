package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vtz-stock-sync/internal/config"
	"vtz-stock-sync/internal/handler"
	"vtz-stock-sync/internal/local"
	"vtz-stock-sync/internal/remote"
	"vtz-stock-sync/internal/router"
	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/internal/store"
	syncengine "vtz-stock-sync/internal/sync"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting VTZ Stock Sync client...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize state store based on config
	var stateStore store.StateStore
	switch cfg.State.Backend {
	case "mysql":
		mysqlStore, err := store.NewMySQLStateStore(cfg.State.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL state store: %v", err)
		}
		stateStore = mysqlStore
		log.Println("MySQL state store initialized")
	case "redis":
		redisStore, err := store.NewRedisStateStore(store.RedisStateConfig{
			Addr:      cfg.State.RedisAddress(),
			Password:  cfg.State.RedisPassword,
			DB:        cfg.State.RedisDB,
			KeyPrefix: cfg.State.RedisPrefix,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis state store: %v", err)
		}
		stateStore = redisStore
		log.Println("Redis state store initialized")
	case "memory":
		stateStore = store.NewMemoryStateStore()
		log.Println("Memory state store initialized (state will not survive restart)")
	default: // sqlite
		sqliteStore, err := store.NewSQLiteStateStore(cfg.State.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite state store: %v", err)
		}
		stateStore = sqliteStore
		log.Println("SQLite state store initialized")
	}
	defer stateStore.Close()

	// Restore local collections from the last persisted snapshots
	ctx := context.Background()
	cache := local.NewProductCache(stateStore)
	queue := local.NewOperationQueue(stateStore)
	logs := local.NewLogMirror(stateStore)
	sales := local.NewSaleMirror(stateStore)

	for name, loader := range map[string]func(context.Context) error{
		"product cache": cache.Load,
		"sync queue":    queue.Load,
		"log mirror":    logs.Load,
		"sale mirror":   sales.Load,
	} {
		if err := loader(ctx); err != nil {
			log.Fatalf("Failed to restore %s: %v", name, err)
		}
	}
	log.Printf("Restored local state - products: %d, pending operations: %d", cache.Len(), queue.Len())

	// Remote client for the authoritative backend
	remoteClient := remote.NewHTTPClient(remote.HTTPConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
		Token:   func() string { return cfg.Remote.Token },
	})

	// Sync engine + connectivity monitor
	engine := syncengine.NewEngine(syncengine.Config{
		Cache:         cache,
		Queue:         queue,
		Remote:        remoteClient,
		ProbeInterval: cfg.Sync.ProbeInterval,
	})
	engine.Start(ctx)
	defer engine.Stop()

	// Initialize services
	inventoryService := service.NewInventoryService(engine, remoteClient, logs, sales)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	productHandler := handler.NewProductHandler(inventoryService, cfg.App.User)
	recordsHandler := handler.NewRecordsHandler(inventoryService)
	syncHandler := handler.NewSyncHandler(engine)
	importHandler := handler.NewImportHandler(inventoryService, engine, cfg.App.User)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		ProductHandler: productHandler,
		RecordsHandler: recordsHandler,
		SyncHandler:    syncHandler,
		ImportHandler:  importHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Client UI listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Client stopped")
}
