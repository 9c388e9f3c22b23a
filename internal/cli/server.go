package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"deck-game-service/internal/app"
	"deck-game-service/internal/config"
	"deck-game-service/internal/deck"
	"deck-game-service/internal/infra/memory"
	pgstore "deck-game-service/internal/infra/postgres"
	redisstore "deck-game-service/internal/infra/redis"
	transport "deck-game-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultShuffleEndpoint = "https://werenotreallystrangers.online/api/shuffle"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game turn server",
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

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, cleanup, err := buildSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	endpoint := cfg.Deck.Endpoint
	if endpoint == "" {
		endpoint = defaultShuffleEndpoint
	}
	deckClient := deck.NewClient(endpoint, config.Duration(cfg.Deck.Timeout, 10*time.Second))

	service := app.NewGameService(store, deckClient)
	turnHandler := transport.NewTurnHandler(service)
	playHandler := transport.NewPlayHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/turn", turnHandler.ServeTurn)
	mux.HandleFunc("/play", playHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting deck game service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildSessionStore wires the backend named by config. Selection is
// explicit; misconfiguration is an error at startup, not a silent
// fallback.
func buildSessionStore(ctx context.Context, cfg config.Config) (app.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case "", "memory":
		return memory.NewSessionStore(), func() {}, nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("session backend redis requires redis.addr")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.Duration(cfg.Redis.TTL, 24*time.Hour)
		return redisstore.NewSessionStore(client, ttl), func() { _ = client.Close() }, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("session backend postgres requires postgres.url")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewSessionStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
