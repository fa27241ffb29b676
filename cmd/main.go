package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/audit"
	"github.com/arnaudGHB/glconfig/internal/config"
	httpapi "github.com/arnaudGHB/glconfig/internal/httpapi/v1"
	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/lock"
	"github.com/arnaudGHB/glconfig/internal/storage/memory"
	pgstore "github.com/arnaudGHB/glconfig/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	var store httpapi.Store
	var closeFn func()

	if dsn := strings.TrimSpace(cfg.DB.URL); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		mem := memory.New()
		seedDev(mem, logger)
		store = mem
		logger.Info("storage backend: memory")
	}

	var locker lock.Locker
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		locker = lock.NewRedis(client, "glconfig")
		logger.Info("provision locking: redis", "addr", addr)
	} else {
		locker = lock.NewLocal()
		logger.Info("provision locking: local")
	}

	sink := audit.NewSlog(logger)
	srvMux := httpapi.New(store, locker, sink, logger).Handler()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("accounting configuration service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedDev populates the memory store with a branch, account-type roots, a
// chart and a root position so local runs can configure products immediately.
func seedDev(mem *memory.Store, l *slog.Logger) {
	branch := ledger.Branch{ID: uuid.New(), Code: "001", Name: "Head Office", BankID: uuid.New(), BankCode: "05"}
	mem.SeedBranch(branch)
	mem.SeedAccountType(ledger.AccountType{ID: uuid.New(), Name: "Ordinary Accounts", Family: ledger.FamilyOrdinary})
	mem.SeedAccountType(ledger.AccountType{ID: uuid.New(), Name: "Operational Accounts", Family: ledger.FamilyOperational})
	chart := ledger.ChartOfAccount{ID: uuid.New(), AccountNumber: "371", Category: "LIABILITY", Description: "Member deposits"}
	mem.SeedChart(chart)
	root := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "000", Description: "ROOT ACCOUNT", Root: true}
	mem.SeedPosition(root)
	deposits := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "001", Description: "Ordinary deposits"}
	mem.SeedPosition(deposits)
	l.Info("DEV seed (memory)",
		"branch_id", branch.ID.String(),
		"root_position_id", root.ID.String(),
		"deposit_position_id", deposits.ID.String(),
	)
}

// parseLogLevel maps config values to slog.Leveler.
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.LogConfig) *slog.Logger {
	level := parseLogLevel(cfg.Level)
	if strings.ToLower(strings.TrimSpace(cfg.Format)) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
