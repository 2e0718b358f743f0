package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Tandem/internal/adapters/directory"
	router "github.com/dkeye/Tandem/internal/adapters/http"
	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	var dir core.Directory
	switch cfg.Directory.Driver {
	case "postgres":
		pg, err := directory.OpenPostgres(ctx, cfg.Directory.DSN, 30)
		if err != nil {
			return fmt.Errorf("open directory: %w", err)
		}
		defer pg.Close()
		dir = pg
	default:
		dir = directory.NewMemory()
	}

	writer := directory.NewWriter(dir, cfg.Directory.Workers, cfg.Directory.Queue, cfg.Directory.Timeout)
	limiter := app.NewMatchLimiter(cfg.Match.Rate, cfg.Match.Burst)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	o := orch.New(writer, rnd, app.PolicyByName(cfg.Backpressure), limiter)

	// Connections outlive the signal context so the shutdown path can
	// close them explicitly after the listener stops.
	connCtx, stopConns := context.WithCancel(context.Background())
	defer stopConns()

	r := router.SetupRouter(connCtx, cfg, o, dir)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(writerCtx)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Tandem server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}

		o.CloseAll()
		stopConns()
		waitDrained(o, 2*time.Second)
		stopWriter()
		return nil
	})
	return g.Wait()
}

// waitDrained gives canceled connections a moment to run their disconnect
// path so the writer sees the final directory updates.
func waitDrained(o *orch.Orchestrator, limit time.Duration) {
	deadline := time.Now().Add(limit)
	for o.Conns.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}
