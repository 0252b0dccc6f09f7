package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/auth"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/category"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/config"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/router"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/task"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/user"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/storage"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-board-go-stdlib")

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("load config: %v", err)
	}

	// init persistence gateway
	var store storage.Store
	var sqlStore *storage.SQLStore
	switch cfg.StorageDriver {
	case "", "json":
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			sugar.Fatalf("init file store: %v", err)
		}
		store = fs
	case "postgres", "sqlite":
		sqlStore, err = storage.OpenSQL(cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			sugar.Fatalf("init %s store: %v", cfg.StorageDriver, err)
		}
		defer sqlStore.Close()
		if err := sqlStore.EnsureTable(context.Background()); err != nil {
			sugar.Fatalf("ensure snapshots table: %v", err)
		}
		store = sqlStore
	default:
		sugar.Fatalf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// wire services
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	userSvc := user.NewService(store, nil, cfg.AdminUsername)
	taskSvc := task.NewService(store)
	categorySvc := category.NewService(store, taskSvc)

	if err := userSvc.EnsureBootstrapAdmin(context.Background(), cfg.AdminPassword); err != nil {
		sugar.Fatalf("ensure bootstrap admin: %v", err)
	}

	authMW := auth.NewMiddleware(tokens, userSvc, sugar)
	handler := router.RegisterRoutes(
		sugar,
		authMW,
		user.NewHandler(userSvc, tokens, sugar),
		task.NewHandler(taskSvc, sugar),
		category.NewHandler(categorySvc, sugar),
	)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infow("service is running", "addr", cfg.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
