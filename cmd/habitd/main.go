package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/cache"
	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/pending"
	"github.com/sandeepkv93/habitd/internal/routine"
	"github.com/sandeepkv93/habitd/internal/storage"
	"github.com/sandeepkv93/habitd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "habitd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}

	layer := pending.NewLayer(pending.NewStore(cfg.PendingStorePath), cfg.Debounce(), logger)
	defer layer.Flush()

	svc := routine.New(routine.Options{
		Cache:   cache.New(cfg.CacheTTL(), 0),
		Pending: layer,
		Remote:  routine.NewStorePersister(repo, time.Now),
		Logger:  logger,
	})

	load := func(ctx context.Context) (*model.RoutineRecord, []*model.RoutineRecord, error) {
		now := time.Now().In(loc)
		today := model.DayOf(now, loc)
		rt, err := routine.EnsureRoutine(ctx, repo, today, cfg.Timezone, now)
		if err != nil {
			return nil, nil, err
		}
		record, err := routine.BuildRecord(ctx, repo, rt)
		if err != nil {
			return nil, nil, err
		}
		related, err := routine.LoadRange(ctx, repo, today.AddDays(-cfg.HistoryDays), today.AddDays(-1))
		if err != nil {
			return nil, nil, err
		}
		return record, related, nil
	}

	snapshot, related, err := load(context.Background())
	if err != nil {
		return err
	}
	if err := svc.LoadSnapshot(snapshot, related); err != nil {
		return err
	}
	logger.Info("routine loaded", "date", snapshot.Date.String(), "related", len(related))

	m := update.NewModelWithService(svc, update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig()))
	m.SetReloadFunc(load)

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, func() { _ = f.Close() }, nil
}
