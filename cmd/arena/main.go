package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/bot"
	"github.com/freeeve/arena-agent/internal/model"
	"github.com/freeeve/arena-agent/internal/repository/postgres"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var (
		seats    string
		numGames int
		workers  int
		dbURL    string
		maxTurns int
		items    int
		size     float64
		seed     int64
		dryRun   bool
		jsonOut  bool
	)

	flag.StringVar(&seats, "seats", "search,greedy,greedy,forward", "Comma-separated strategy per seat")
	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel games)")
	flag.StringVar(&dbURL, "db", "", "Database URL (or use DATABASE_URL env)")
	flag.IntVar(&maxTurns, "max-turns", 1000, "Turns per game")
	flag.IntVar(&items, "items", 60, "Items placed per game")
	flag.Float64Var(&size, "size", 1000, "Arena width and height")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.BoolVar(&dryRun, "dry-run", true, "Skip database writes")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	seatList := parseSeats(seats)
	if len(seatList) == 0 {
		log.Fatal().Msg("No seats configured")
	}
	workers = max(workers, 1)
	if seed != 0 {
		bot.SeedBotRng(seed)
	}

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var resultRepo *postgres.ResultRepo
	if !dryRun {
		if dbURL == "" {
			log.Fatal().Msg("Persisting results needs -db or DATABASE_URL")
		}
		db, err := postgres.Connect(ctx, dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		resultRepo = postgres.NewResultRepo(db)
	}

	// Run games
	results := make([]*bot.ArenaResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			gameSeed := seed
			if seed != 0 {
				gameSeed = seed + int64(idx)
			}

			cfg := bot.ArenaConfig{
				Width:    size,
				Height:   size,
				MaxTurns: maxTurns,
				Items:    items,
				Seats:    seatList,
				Seed:     gameSeed,
			}

			result, err := bot.RunGame(ctx, cfg)
			if err != nil {
				log.Error().Err(err).Int("game", idx+1).Msg("Game failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			if resultRepo != nil {
				if err := saveResults(ctx, resultRepo, result); err != nil {
					log.Error().Err(err).Int("game", idx+1).Msg("Failed to save results")
				}
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			w := result.Winner()
			log.Info().Int("game", idx+1).Str("winner", w.Name).Int("score", w.Score).Int("turns", result.Turns).Msg("Game completed")
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, seatList, errCount, dryRun)
	}
}

func parseSeats(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// saveResults stores one row per seat, so every strategy builds a record.
func saveResults(ctx context.Context, repo *postgres.ResultRepo, r *bot.ArenaResult) error {
	for _, s := range r.Seats {
		err := repo.SaveResult(ctx, &model.GameResult{
			GameID:     r.GameID,
			Player:     s.Name,
			Strategy:   s.Strategy,
			Score:      s.Score,
			Rank:       s.Rank,
			NumPlayers: len(r.Seats),
			Turns:      r.Turns,
			Source:     "arena",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*bot.ArenaResult, seats []string, errCount int, dryRun bool) {
	type stats struct {
		wins       int
		totalScore int
		totalRank  int
		games      int
	}

	bySeat := make([]stats, len(seats))
	completed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		for i, s := range r.Seats {
			st := &bySeat[i]
			st.games++
			st.totalScore += s.Score
			st.totalRank += s.Rank
			if s.Rank == 1 {
				st.wins++
			}
		}
	}

	fmt.Printf("\nResults (%d games):\n", completed)
	if errCount > 0 {
		fmt.Printf("  (%d games failed)\n", errCount)
	}

	order := make([]int, len(seats))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return bySeat[order[a]].wins > bySeat[order[b]].wins })

	for _, i := range order {
		s := bySeat[i]
		avgScore, avgRank := 0.0, 0.0
		if s.games > 0 {
			avgScore = float64(s.totalScore) / float64(s.games)
			avgRank = float64(s.totalRank) / float64(s.games)
		}
		fmt.Printf("  seat %d %-8s:  %d wins  -- avg score: %.1f, avg rank: %.2f\n",
			i, seats[i], s.wins, avgScore, avgRank)
	}

	if !dryRun && completed > 0 {
		fmt.Printf("\nResults saved to database with source \"arena\"\n")
	}
}

func printJSON(results []*bot.ArenaResult, total, errCount int) {
	out := struct {
		Total   int                `json:"total"`
		Errors  int                `json:"errors"`
		Results []*bot.ArenaResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
