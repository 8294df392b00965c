package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timer-trivia-service/internal/app"
	"timer-trivia-service/internal/catalog"
	"timer-trivia-service/internal/config"
	"timer-trivia-service/internal/infra/memory"
	pginfra "timer-trivia-service/internal/infra/postgres"
	redisinfra "timer-trivia-service/internal/infra/redis"
	"timer-trivia-service/internal/scoring"
	transport "timer-trivia-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	builtin := catalog.Builtin()
	if err := catalog.Validate(builtin); err != nil {
		return err
	}
	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(builtin)
	if pool != nil {
		loader = pginfra.NewCatalogLoader(pool, cfg.Catalog.Name)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	replayWindow := config.TTLDuration(cfg.Quiz.DrawReplayWindow, time.Hour)
	var players app.PlayerStore = memory.NewPlayerStore()
	var draws app.DrawLog = memory.NewDrawLog(replayWindow)
	switch {
	case redisClient != nil:
		// Degrade to in-memory if Redis goes away mid-quiz; completed
		// answers keep their points either way.
		players = memory.NewFallbackPlayerStore(redisinfra.NewPlayerStore(redisClient))
		draws = redisinfra.NewDrawLog(redisClient, replayWindow)
	case pool != nil:
		draws = pginfra.NewDrawLog(pool, replayWindow)
	}

	strategy, err := scoring.ByName(cfg.Quiz.Scoring)
	if err != nil {
		return err
	}

	service := app.NewQuizService(players, catalogs, draws, app.Options{
		Checkpoints:  cfg.Quiz.Checkpoints,
		DrawQuestion: cfg.Quiz.DrawQuestion,
		MaxNameLen:   cfg.Quiz.MaxNameLen,
		Strategy:     strategy,
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s (scoring=%s)", finalPort, strategy.Name())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
