package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"realmlog/internal/config"
	"realmlog/internal/game"
	"realmlog/internal/logging"
	"realmlog/internal/store"
	"realmlog/internal/store/postgres"
	"realmlog/internal/store/sqlite"
	"realmlog/internal/timer"
)

func openDB(ctx context.Context, dsn string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	}
	return nil, fmt.Errorf("unsupported database dsn %q", dsn)
}

func loadConfig() (*config.ProjectConfig, error) {
	path := configPath
	if path == "" {
		path = config.FindProjectConfig(".")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadProjectConfig(path)
}

type app struct {
	cfg    *config.ProjectConfig
	log    *slog.Logger
	db     store.Store
	game   *game.Store
	timers *timer.Store
}

// openStore connects and migrates the schema without running game repairs.
func openStore(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	db, err := openDB(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return &app{cfg: cfg, log: logger, db: db}, nil
}

// openApp connects, initializes the realm and wires the game and timer
// stores.
func openApp(ctx context.Context) (*app, error) {
	a, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := a.initGame(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) initGame(ctx context.Context) (game.InitReport, error) {
	layout, err := config.LoadLayout(a.cfg.Game.Layout)
	if err != nil {
		return game.InitReport{}, err
	}
	a.game = game.New(a.db, game.Options{
		Layout:     layout,
		InvestMode: game.InvestMode(a.cfg.Game.InvestMode),
		Logger:     a.log,
	})
	report, err := a.game.Init(ctx)
	if err != nil {
		return game.InitReport{}, err
	}
	a.timers = timer.New(a.db, a.game, timer.Options{Logger: a.log})
	return report, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		a.log.Warn("closing database", slog.Any("error", err))
	}
}
