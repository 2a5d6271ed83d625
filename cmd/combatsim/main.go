package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/spellchain/internal/api"
	"github.com/udisondev/spellchain/internal/config"
	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/db"
	"github.com/udisondev/spellchain/internal/game/arena"
	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/scenario"
	"github.com/udisondev/spellchain/internal/telemetry"
	"github.com/udisondev/spellchain/internal/translog"
)

const ConfigPath = "config/combatsim.yaml"

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SPELLCHAIN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadEngine(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("combatsim starting",
		"log_level", cfg.LogLevel,
		"tick", cfg.Tick,
		"pace", cfg.Pace,
		"http", cfg.HTTP.Enabled,
		"telemetry", cfg.Telemetry.Enabled)

	catalog, err := data.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	script, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	slog.Info("data loaded",
		"spells", len(catalog.SpellIDs()),
		"scenario", script.Name,
		"actors", len(script.Actors),
		"steps", len(script.Steps))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	recorders := translog.Fanout{
		translog.NewSlogRecorder(logger, slog.LevelDebug),
		metrics,
	}
	listeners := []cast.Sink{cast.LogSink{Logger: logger}, metrics}

	var writer *db.Writer
	if cfg.Telemetry.Enabled {
		dsn := cfg.Telemetry.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		writer = db.NewWriter(db.WriterConfig{
			RunID:         cfg.Telemetry.RunID,
			BatchSize:     cfg.Telemetry.BatchSize,
			FlushInterval: cfg.Telemetry.FlushInterval,
			QueueSize:     cfg.Telemetry.QueueSize,
			MaxPerSecond:  cfg.Telemetry.MaxPerSecond,
		}, database.Casts(), database.Transitions())
		recorders = append(recorders, writer)
		listeners = append(listeners, writer)
	}

	ar := arena.New(arena.Config{
		ParryManaGain: cfg.ParryManaGain,
		Loadout:       cfg.Loadout,
		Observer:      metrics,
	}, catalog, recorders, listeners...)

	// stop ends the run once the scenario is done and keep_alive is off.
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if writer != nil {
		g.Go(func() error {
			slog.Info("starting combat log writer", "run_id", cfg.Telemetry.RunID)
			if err := writer.Run(gctx); err != nil {
				return fmt.Errorf("combat log writer: %w", err)
			}
			st := writer.Stats()
			slog.Info("combat log writer stopped",
				"accepted", st.Accepted,
				"written", st.Written,
				"dropped", st.Dropped,
				"failed", st.Failed)
			return nil
		})
	}

	if cfg.HTTP.Enabled {
		srv := &http.Server{
			Addr: cfg.HTTP.BindAddress,
			Handler: api.NewRouter(api.RouterConfig{
				Arena:       ar,
				Gatherer:    reg,
				CommandRate: cfg.HTTP.CommandRate,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("starting debug server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		runner := scenario.Runner{Tick: cfg.Tick, Pace: cfg.Pace}
		rep, err := runner.Run(gctx, ar, script)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("scenario: %w", err)
		}
		logReport(rep)

		if !cfg.KeepAlive {
			stop()
			return nil
		}

		slog.Info("scenario finished, arena stays live")
		tick := time.Duration(cfg.Tick * float64(time.Second))
		if err := ar.Run(gctx, tick); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("arena loop: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("combatsim: %w", err)
	}
	return nil
}

func logReport(rep scenario.Report) {
	slog.Info("scenario finished",
		"name", rep.Name,
		"steps", rep.Steps,
		"commands", rep.Commands,
		"failed", rep.Failed,
		"end_at", rep.EndAt)
	if rep.Final == nil {
		return
	}
	for _, s := range rep.Final.Actors {
		slog.Info("actor final state",
			"actor", s.ID,
			"hp", s.HP,
			"max_hp", s.MaxHP,
			"shield", s.Shield,
			"mana", s.Mana,
			"dead", s.Dead,
			"slots", s.Slots,
			"chain", s.Chain)
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
