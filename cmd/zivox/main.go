package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zivox/zivox/internal/cli"
	"github.com/zivox/zivox/internal/config"
	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/logger"
	"github.com/zivox/zivox/internal/repository"
	"github.com/zivox/zivox/internal/service"
	"github.com/zivox/zivox/internal/store"
	mcpTransport "github.com/zivox/zivox/internal/transport/mcp"
)

// RunMode defines how the application runs
type RunMode string

const (
	RunModeServer      RunMode = "server"
	RunModeInteractive RunMode = "interactive"
	RunModeHeadless    RunMode = "headless"
)

func main() {
	cfg := config.Load()

	// Keep CLI modes quiet so output stays parseable
	logLevel := cfg.LogLevel
	if RunMode(cfg.Mode) != RunModeServer {
		logLevel = "error"
	}
	logger.Init(logLevel)

	db, err := initDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()

	// Repositories
	chatRepo := repository.NewChatRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	callRepo := repository.NewCallRepository(db)
	typingRepo := repository.NewTypingRepository(db)

	// Event bus
	eventBus := domain.NewEventBus()

	// Core store and services
	chatStore := store.New(chatRepo, msgRepo, userRepo, typingRepo, eventBus, logger.Module("store"))
	userSvc := service.NewUserService(userRepo, eventBus, logger.Module("user"))
	statusSvc := service.NewStatusService(statusRepo, userRepo, eventBus, logger.Module("status"))
	callSvc := service.NewCallService(callRepo, userRepo, eventBus, logger.Module("call"))

	switch RunMode(cfg.Mode) {
	case RunModeInteractive:
		runCLIMode(ctx, cfg, chatStore, userSvc, statusSvc, callSvc, cli.ModeInteractive)
	case RunModeHeadless:
		runCLIMode(ctx, cfg, chatStore, userSvc, statusSvc, callSvc, cli.ModeHeadless)
	default:
		runServerMode(cfg, chatStore, userSvc, statusSvc, callSvc)
	}
}

func runServerMode(
	cfg *config.Config,
	chatStore *store.ChatStore,
	userSvc *service.UserService,
	statusSvc *service.StatusService,
	callSvc *service.CallService,
) {
	mainLog := logger.Module("main")
	mainLog.Info().
		Str("database", cfg.DatabasePath).
		Str("mcp_address", cfg.MCPAddress).
		Msg("ZIVOX starting")

	mcpServer := mcpTransport.NewServer(
		chatStore,
		userSvc,
		statusSvc,
		callSvc,
		mcpTransport.ServerConfig{
			Address: cfg.MCPAddress,
		},
	)

	errCh := make(chan error, 1)

	go func() {
		mainLog.Info().Str("address", cfg.MCPAddress).Msg("starting MCP SSE server")
		if err := mcpServer.Start(); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	// Print ready message for subprocess coordination
	fmt.Println("ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		mainLog.Error().Err(err).Msg("server error")
	case sig := <-sigCh:
		mainLog.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chatStore.Cleanup()

	if err := mcpServer.Stop(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("MCP server stop error")
	}

	mainLog.Info().Msg("shutdown complete")
}

func runCLIMode(
	ctx context.Context,
	cfg *config.Config,
	chatStore *store.ChatStore,
	userSvc *service.UserService,
	statusSvc *service.StatusService,
	callSvc *service.CallService,
	mode cli.Mode,
) {
	handler := cli.NewCommandHandler(chatStore, userSvc, statusSvc, callSvc, cfg.SessionUID)

	// Setup signal handling
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	var err error
	if mode == cli.ModeHeadless {
		err = cli.NewHeadlessCLI(handler).Run(ctx)
	} else {
		err = cli.NewInteractiveCLI(handler).Run(ctx)
	}
	if err != nil && err != context.Canceled {
		log.Printf("CLI error: %v", err)
	}

	chatStore.Cleanup()
}

func initDatabase(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	db.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(repository.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
