package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"messenger-core/domain/event"
	"messenger-core/internal"
	"messenger-core/projection"
	"messenger-core/repositories"
	"messenger-core/runtime"
	"messenger-core/runtime/workers"
	"messenger-core/services"
	"messenger-core/transport"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close, sequence
// release) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Stores & collaborators
	store := repositories.NewStore(db, config.StoreTimeout)
	messageRepository := repositories.NewMessageRepository(store, log, config.LimitMessages)
	statusRepository := repositories.NewStatusRepository(store, log)
	attachmentRepository := repositories.NewAttachmentRepository(store, log)
	chatRepository, err := repositories.NewChatRepository(store, log)
	if err != nil {
		return fmt.Errorf("chat repository init failed: %w", err)
	}
	defer func() { _ = chatRepository.Close() }()

	// 4. Engine wiring: registry, channels, lifecycle, delivery, workers
	registry := runtime.NewRegistry(log, config.SinkTimeout)
	events := make(chan event.DomainEvent, config.BufferSize)
	promotions := make(chan workers.Promotion, config.BufferSize)

	lifecycle := runtime.NewLifecycle(log, messageRepository, statusRepository, events)
	engine := runtime.NewDeliveryEngine(log, messageRepository, chatRepository,
		attachmentRepository, registry, events, promotions)

	timeline := projection.NewChatTimeline(config.TimelineCapacity)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewEventFanout(log, events, registry, timeline))
	for i := 0; i < config.NumberOfPromoters; i++ {
		sup.Add(workers.NewPromoter(log, promotions, lifecycle))
	}

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, log, config.DebugPort, timeline.Stats)
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. Gateway & HTTP server
	service := services.NewMessagingService(engine, lifecycle, registry,
		chatRepository, messageRepository, statusRepository)
	gateway := transport.NewGateway(log, service, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: gateway.Router()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
