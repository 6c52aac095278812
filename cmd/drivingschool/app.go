package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/soz/drivingschool/internal/api"
	"github.com/soz/drivingschool/internal/catalog"
	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/internal/dispatcher"
	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/internal/influx"
	"github.com/soz/drivingschool/internal/logging"
	"github.com/soz/drivingschool/internal/monitor"
	intOtel "github.com/soz/drivingschool/internal/otel"
	"github.com/soz/drivingschool/internal/parser"
	"github.com/soz/drivingschool/internal/sim"
	"github.com/soz/drivingschool/internal/storage"
	"github.com/soz/drivingschool/internal/worker"
	"github.com/soz/drivingschool/pkg/core"

	"github.com/Graylog2/go-gelf/gelf"
)

// app is one CLI session: logging, storage and, once startExam ran, the
// simulated world with its supervisor and host command surface.
type app struct {
	sessionStart time.Time

	logManager *logging.SlogManager
	logger     *slog.Logger
	logOut     io.Writer
	logFile    *os.File
	otel       *intOtel.Provider
	graylog    *gelf.Writer

	backend storage.Backend
	influx  *influx.Manager

	catalog    *catalog.Catalog
	world      *sim.World
	sup        *exam.Supervisor
	records    <-chan core.TrialRecord
	dispatcher *dispatcher.Dispatcher
	worker     *worker.Manager
	monitor    *monitor.Service
}

// newApp sets up logging and opens the storage backend.
func newApp() (*app, error) {
	a := &app{sessionStart: time.Now()}
	if err := a.setupLogging(); err != nil {
		return nil, err
	}

	backend, err := storage.NewBackend(config.GetStorageConfig(), a.logManager, a.zerolog("storage"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	a.backend = backend
	a.logger.Info("Storage backend initialized", "type", config.GetStorageConfig().Type)

	return a, nil
}

func (a *app) setupLogging() error {
	level := config.GetString("logLevel")
	a.logOut = os.Stdout

	var file io.Writer
	if logToFile {
		logsDir := config.GetString("logsDir")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs dir: %w", err)
		}
		f, err := os.OpenFile(logging.LogFilePath(logsDir, AppName, a.sessionStart), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		a.logOut = f
		file = f
	}

	provider, err := intOtel.New(intOtel.FromConfig(config.GetOTelConfig(), a.logOut))
	if err != nil {
		return fmt.Errorf("failed to create otel provider: %w", err)
	}
	a.otel = provider

	var extra []io.Writer
	var graylogErr error
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			graylogErr = err
		} else {
			a.graylog = w
			extra = append(extra, w)
		}
	}

	a.logManager = logging.NewSlogManager()
	a.logManager.Setup(file, level, provider.LoggerProvider(), extra...)
	a.logger = a.logManager.Logger()
	if graylogErr != nil {
		a.logger.Warn("Graylog output disabled", "error", graylogErr)
	}
	return nil
}

// zerolog returns the logger handed to the database, influx and dispatcher
// layers.
func (a *app) zerolog(component string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(config.GetString("logLevel")))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: a.logOut, TimeFormat: time.RFC3339, NoColor: a.logFile != nil}).
		Level(lvl).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// examOptions configure startExam.
type examOptions struct {
	TimeScale float64
	// StatusDir enables the status file when set.
	StatusDir string
}

// startExam builds the simulated world, the supervisor and its observers,
// then registers the host commands and starts the status monitor.
func (a *app) startExam(ctx context.Context, opts examOptions) error {
	examCfg := config.GetExamConfig()

	cat := catalog.Default()
	if examCfg.CatalogFile != "" {
		var err error
		if cat, err = catalog.Load(examCfg.CatalogFile); err != nil {
			return err
		}
		a.logger.Info("Catalog loaded", "path", examCfg.CatalogFile)
	}
	a.catalog = cat

	a.world = sim.New(sim.Options{
		FadeDelay: examCfg.FadeDelay,
		TimeScale: opts.TimeScale,
		Logger:    a.logger.With("component", "world"),
	})

	recorder, records := sim.NewRecorder(4)
	a.records = records
	observers := []exam.TrialObserver{storage.Observer(a.backend)}
	if cfg := config.GetInfluxConfig(); cfg.Enabled {
		m := influx.NewManager(a.zerolog("influx"), cfg)
		if err := m.Connect(ctx); err != nil {
			a.logger.Warn("InfluxDB disabled", "error", err)
		} else {
			a.influx = m
			observers = append(observers, m)
		}
	}
	observers = append(observers, recorder)

	var sup *exam.Supervisor
	a.logManager.SetContextProvider(func() []slog.Attr {
		if sup == nil {
			return nil
		}
		return sup.LogAttrs()
	})
	a.logger = a.logManager.Logger()

	sup, err := exam.New(exam.Dependencies{
		Catalog:   cat,
		World:     a.world.Collaborators(),
		Sink:      a.licenseSink(ctx),
		Observers: observers,
		Logger:    a.logger,
		Options:   exam.OptionsFromConfig(examCfg),
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	a.sup = sup

	d, err := dispatcher.New(logging.NewDispatcherLogger(a.zerolog("dispatcher")))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	a.dispatcher = d
	a.worker = worker.NewManager(ctx, worker.Dependencies{
		Exam:          sup,
		LogManager:    a.logManager,
		ParserService: parser.NewParser(a.logger),
	})
	a.worker.RegisterHandlers(d)
	a.logger.Debug("Host commands registered", "commands", d.Commands())

	if opts.StatusDir != "" {
		deps := monitor.Dependencies{
			Source:     sup,
			LogManager: a.logManager,
			StatusDir:  opts.StatusDir,
		}
		if p, ok := a.backend.(interface{ Pending() int }); ok {
			deps.PendingWrites = p.Pending
		}
		a.monitor = monitor.NewService(deps)
		if err := a.monitor.Start(); err != nil {
			return err
		}
	}
	return nil
}

// licenseSink prefers the remote license service when it is enabled.
func (a *app) licenseSink(ctx context.Context) exam.LicenseSink {
	cfg := config.GetAPIConfig()
	if !cfg.Enabled {
		return storage.Sink(a.backend)
	}
	client := api.New(cfg.ServerURL, cfg.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		a.logger.Warn("License service unhealthy, grants may fail", "url", cfg.ServerURL, "error", err)
	}
	a.logger.Info("License grants go to the remote service", "url", cfg.ServerURL)
	return client
}

// Close releases everything newApp and startExam opened, in reverse order.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			a.logger.Error("Failed to close dispatcher", "error", err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Error("Failed to close InfluxDB client", "error", err)
		}
	}
	if a.logManager != nil {
		if err := a.logManager.Flush(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "failed to flush logs:", err)
		}
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "failed to shut down otel:", err)
		}
	}
	if a.graylog != nil {
		_ = a.graylog.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
