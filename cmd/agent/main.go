package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/auth"
	"github.com/freeeve/arena-agent/internal/bot"
	"github.com/freeeve/arena-agent/internal/config"
	"github.com/freeeve/arena-agent/internal/handler"
	"github.com/freeeve/arena-agent/internal/logger"
	"github.com/freeeve/arena-agent/internal/repository"
	"github.com/freeeve/arena-agent/internal/repository/postgres"
	redisrepo "github.com/freeeve/arena-agent/internal/repository/redis"
	"github.com/freeeve/arena-agent/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()

	flag.StringVar(&cfg.AgentAddr, "addr", cfg.AgentAddr, "game server address")
	flag.StringVar(&cfg.Login, "login", cfg.Login, "login name")
	flag.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "strategy (search, forward, greedy, random)")
	flag.IntVar(&cfg.SearchWorkers, "workers", cfg.SearchWorkers, "search worker goroutines")
	flag.StringVar(&cfg.SpectatorAddr, "spectator", cfg.SpectatorAddr, "spectator HTTP listen address (empty = off)")
	flag.Parse()

	if cfg.Password == "" {
		log.Fatal().Msg("AGENT_PASSWORD is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	// Optional storage
	var results repository.ResultRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		results = postgres.NewResultRepo(db)
		log.Info().Msg("Persisting game results to Postgres")
	}

	var ticks repository.TickCache
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		ticks = redisClient
		log.Info().Msg("Caching ticks in Redis")
	}

	strategy := bot.StrategyForName(cfg.Strategy)
	if ss, ok := strategy.(*bot.SearchStrategy); ok {
		sc := ss.Config()
		sc.Workers = cfg.SearchWorkers
		sc.Budget = cfg.SearchBudget
		strategy = bot.NewSearchStrategy(sc)
	}

	hub := handler.NewHub()
	recorder := service.NewRecorder(cfg.Login, strategy.Name(), results, ticks, hub)

	var srv *http.Server
	if cfg.SpectatorAddr != "" {
		jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
		srv = &http.Server{
			Addr:        cfg.SpectatorAddr,
			Handler:     handler.NewRouter(hub, recorder, jwtMgr),
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.SpectatorAddr).Msg("Spectator server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Spectator server error")
			}
		}()
	}

	log.Info().
		Str("addr", cfg.AgentAddr).
		Str("login", cfg.Login).
		Str("strategy", strategy.Name()).
		Int("workers", cfg.SearchWorkers).
		Dur("budget", cfg.SearchBudget).
		Msg("Agent starting")

	runner := bot.NewRunner(bot.RunnerConfig{
		Addr:           cfg.AgentAddr,
		Login:          cfg.Login,
		Password:       cfg.Password,
		ReconnectDelay: cfg.ReconnectDelay,
	}, strategy, recorder)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Runner stopped")
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Spectator server shutdown error")
		}
	}
	log.Info().Stringer("scores", runner.Scores()).Msg("Agent stopped")
}
