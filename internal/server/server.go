package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Exidekat/mechgen-ui/internal/config"
	"github.com/Exidekat/mechgen-ui/internal/core/compress"
	"github.com/Exidekat/mechgen-ui/internal/core/event"
	"github.com/Exidekat/mechgen-ui/internal/core/provider"
	"github.com/Exidekat/mechgen-ui/internal/core/result"
	"github.com/Exidekat/mechgen-ui/internal/core/runner"
	"github.com/Exidekat/mechgen-ui/internal/core/worker"
	"github.com/Exidekat/mechgen-ui/internal/database"
	"github.com/Exidekat/mechgen-ui/internal/server/api"
	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Debug().Str("level", cfg.Logging.Level).Msg("log level configured")

	pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	st := store.New(pool)

	// Jobs a crashed run left in processing can never finish; fail them so
	// pollers see a terminal state instead of a permanently stuck one.
	if failed, err := st.Jobs.FailStaleProcessing(ctx); err != nil {
		log.Warn().Err(err).Msg("stale job sweep failed")
	} else if failed > 0 {
		log.Info().Int64("jobs", failed).Msg("failed stale processing jobs from previous run")
	}

	bus := event.NewBus()
	setupEventLogging(bus)

	datasetProvider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	log.Info().Str("provider", datasetProvider.Name()).Msg("dataset provider configured")

	compressors := compress.NewRegistry()
	compressors.Register(compress.NewStub(cfg.FrameDelay()))
	compressor, err := compressors.Get(cfg.Compression.Engine)
	if err != nil {
		return fmt.Errorf("compression engine: %w", err)
	}
	log.Info().Str("engine", compressor.Name()).Msg("compression engine configured")

	jobRunner := runner.New(runner.Config{
		Jobs:       st.Jobs,
		Datasets:   st.Datasets,
		Outputs:    st.Outputs,
		Provider:   datasetProvider,
		Compressor: compressor,
		Bus:        bus,
		Budget:     cfg.RunBudget(),
		MaxFrames:  cfg.Runner.MaxFrames,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	workerPool := worker.NewPool(cfg.Runner.Workers, cfg.Runner.QueueSize, jobRunner.Run)
	workerPool.Start(workerCtx)

	// Requeue jobs that never got a runner before the last shutdown.
	if pending, err := st.Jobs.ListPending(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to list pending jobs")
	} else {
		for _, j := range pending {
			if err := workerPool.Submit(j.ID); err != nil {
				log.Warn().Err(err).Stringer("job_id", j.ID).Msg("failed to requeue pending job")
			}
		}
		if len(pending) > 0 {
			log.Info().Int("jobs", len(pending)).Msg("requeued pending jobs")
		}
	}

	e := echo.New()
	e.HideBanner = true

	api.SetupRouter(e, api.RouterConfig{
		Store:  st,
		Reader: result.NewReader(st.Outputs),
		Pool:   workerPool,
		Bus:    bus,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("MechGen server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	workerCancel()
	workerPool.Wait()
	return nil
}

func buildProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider.Mode {
	case "", "synthetic":
		return provider.NewSynthetic(cfg.Provider.SyntheticFrames), nil
	case "local":
		return provider.NewLocal(cfg.Provider.Root), nil
	default:
		return nil, fmt.Errorf("unknown provider mode %q", cfg.Provider.Mode)
	}
}

// setupEventLogging mirrors job lifecycle events into the log stream.
func setupEventLogging(bus event.Bus) {
	bus.Subscribe(event.EventJobCompleted, func(ctx context.Context, e event.Event) error {
		if p, ok := e.Payload.(event.JobEvent); ok {
			log.Info().Stringer("job_id", p.JobID).Str("dataset", p.ExternalID).
				Int("frames", p.Frames).Msg("job completed")
		}
		return nil
	})
	bus.Subscribe(event.EventJobFailed, func(ctx context.Context, e event.Event) error {
		if p, ok := e.Payload.(event.JobEvent); ok {
			log.Warn().Stringer("job_id", p.JobID).Str("dataset", p.ExternalID).
				Str("error", p.Error).Msg("job failed")
		}
		return nil
	})
}
