package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/config"
	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/worktime-go/internal/handler/http"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/worktime-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/worktime-go/internal/service/attendance"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	m := metrics.New()
	hub := sse.NewHub()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	policy := attendanceService.BreakPolicy{
		Weekdays: make(map[time.Weekday]bool, len(cfg.Ledger.BreakWeekdays)),
		Minutes:  cfg.Ledger.BreakMinutes,
	}
	for _, day := range cfg.Ledger.BreakWeekdays {
		policy.Weekdays[day] = true
	}

	replicator := attendanceService.NewReplicator(store.records, m, attendanceService.ReplicatorConfig{
		WorkerCount: cfg.Ledger.ReplicationWorkers,
		QueueSize:   cfg.Ledger.ReplicationQueueSize,
	})

	svc := attendanceService.NewAttendanceService(
		attendanceService.NewLedger(cfg.Location()),
		attendanceService.NewWorkTimeCalculator(policy),
		store.records,
		store.directory,
		replicator,
		hub,
		m,
		attendanceService.Config{StandardDayMinutes: cfg.Ledger.StandardDayMinutes},
	)

	hydrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = svc.Hydrate(hydrateCtx)
	cancel()
	if err != nil {
		replicator.Stop()
		return fmt.Errorf("hydrate ledger: %w", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(svc, cfg.Ledger.LiveRefreshInterval, cfg.Ledger.DirectoryRefreshInterval).RegisterJobs(scheduler)
	scheduler.Start()

	attendanceHandler := appHTTP.NewAttendanceHandler(svc, JWTService, hub)
	router := appHTTP.NewRouter(cfg.App, JWTService, attendanceHandler, m.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "driver", cfg.Database.Driver, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		scheduler.Stop()
		// drain pending writes before the database closes
		replicator.Stop()
		return err
	})

	return g.Wait()
}

type storage struct {
	records   attendance.RecordRepository
	directory attendance.EmployeeDirectory
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &storage{
			records:   postgresql.NewAttendanceRecordRepository(db),
			directory: postgresql.NewEmployeeDirectory(db),
			close:     db.Close,
		}, nil

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." && cfg.Database.SQLitePath != database.MemoryPath {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &storage{
			records:   sqlite.NewAttendanceRecordRepository(db),
			directory: sqlite.NewEmployeeDirectory(db),
			close:     func() { db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}
