package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexboard/internal/bot"
	"github.com/freeeve/hexboard/internal/config"
	"github.com/freeeve/hexboard/internal/export"
	"github.com/freeeve/hexboard/internal/logger"
	"github.com/freeeve/hexboard/internal/metrics"
	"github.com/freeeve/hexboard/internal/repository/store"
	"github.com/freeeve/hexboard/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup always runs.
func run(args []string) int {
	var (
		configDir  string
		strategies string
		numGames   int
		workers    int
		maxTurns   int
		targetVP   int
		seed       uint64
		outPath    string
		jsonOut    bool
	)

	fs := flag.NewFlagSet("boardsim", flag.ContinueOnError)
	fs.StringVar(&configDir, "config", "", "Directory holding hexboard.json")
	fs.StringVar(&strategies, "s", "", "Strategy per seat (e.g. easy,random,easy); defaults to easy")
	fs.IntVar(&numGames, "n", 1, "Number of games to run")
	fs.IntVar(&workers, "workers", 1, "Concurrency (parallel games, unseeded only)")
	fs.IntVar(&maxTurns, "max-turns", 200, "Max play turns per game")
	fs.IntVar(&targetVP, "target-vp", 10, "Victory points needed to win")
	fs.Uint64Var(&seed, "seed", 0, "Base seed (0 = random)")
	fs.StringVar(&outPath, "out", "", "Write move features to this Parquet file")
	fs.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			log.Info().Msg("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Storage setup failed")
		return 1
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()

	svc := service.NewBoardService(stores.Games, stores.Events, stores.Cache, service.LogBroadcaster{}, service.Options{
		Supply:          cfg.Supply,
		DebugInvariants: cfg.DebugInvariants,
	})
	rec, err := metrics.New(svc.ActiveGames)
	if err != nil {
		log.Error().Err(err).Msg("Metrics setup failed")
		return 1
	}
	svc.SetMetrics(rec)

	if err := svc.RecoverActiveGames(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover active games")
	}

	var seats []string
	if strategies != "" {
		seats = strings.Split(strategies, ",")
	}
	layout := cfg.Layout
	if layout == "" {
		layout = "standard"
	}
	players := cfg.Players
	if len(seats) > 0 {
		players = len(seats)
	}
	// The bot random source is shared, so seeded games run one at a time.
	if seed != 0 && workers > 1 {
		log.Warn().Int("workers", workers).Msg("Seeded runs are sequential")
		workers = 1
	}
	workers = max(workers, 1)

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
				gameSeed = seed + uint64(idx)
			}
			result, err := bot.RunGame(ctx, svc, bot.ArenaConfig{
				GameName:       fmt.Sprintf("boardsim-%d", idx+1),
				Layout:         layout,
				Players:        players,
				Strategies:     seats,
				MaxTurns:       maxTurns,
				TargetVP:       targetVP,
				Seed:           gameSeed,
				RecordFeatures: outPath != "",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Int("game", idx+1).Msg("Game failed")
				errCount++
				return
			}
			results[idx] = result
		}(i)
	}
	wg.Wait()

	if outPath != "" {
		var rows []export.FeatureRow
		for _, r := range results {
			if r != nil {
				rows = append(rows, r.Rows...)
			}
		}
		topo, _ := service.LayoutTopology(layout)
		if err := export.WriteParquet(outPath, topo, rows); err != nil {
			log.Error().Err(err).Msg("Feature export failed")
			return 1
		}
		log.Info().Int("rows", len(rows)).Str("path", outPath).Msg("Features written")
	}

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, players, errCount)
	}
	if errCount > 0 {
		return 1
	}
	return 0
}

func printSummary(results []*bot.ArenaResult, players, errCount int) {
	type stats struct {
		wins    int
		totalVP int
		routes  int
	}
	byPlayer := make([]stats, players)

	completed, draws := 0, 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		if r.Winner < 0 {
			draws++
		}
		for p, vp := range r.VictoryPoints {
			byPlayer[p].totalVP += vp
			if int(r.Winner) == p {
				byPlayer[p].wins++
			}
			if int(r.RouteHolder) == p {
				byPlayer[p].routes++
			}
		}
	}

	fmt.Printf("\nResults (%d games, %d without a winner):\n", completed, draws)
	if errCount > 0 {
		fmt.Printf("  (%d games failed)\n", errCount)
	}
	for p, s := range byPlayer {
		avgVP := 0.0
		if completed > 0 {
			avgVP = float64(s.totalVP) / float64(completed)
		}
		fmt.Printf("  player %d:  %d wins, %d longest routes  -- avg VP: %.1f\n", p, s.wins, s.routes, avgVP)
	}
}

func printJSON(results []*bot.ArenaResult, total, errCount int) {
	for _, r := range results {
		if r != nil {
			r.Rows = nil
		}
	}
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
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("Failed to write results")
	}
}
