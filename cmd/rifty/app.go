package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/config"
	"github.com/ramonehamilton/rifty/internal/events"
	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/projection"
	"github.com/ramonehamilton/rifty/internal/storage"
	"github.com/ramonehamilton/rifty/internal/storage/repository"
)

// cmdEnv is what every subcommand receives.
type cmdEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// app is the fully wired collection: database, catalog, engine and facade.
type app struct {
	db         *storage.DB
	catalog    *catalog.Catalog
	dispatcher *events.Dispatcher
	collection *facade.Collection
}

func loadConfig(path, dbPath string, debug bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if debug {
		cfg.App.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.AppConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.DebugMode {
		opts.Level = slog.LevelDebug
	}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

// openApp wires the collection from configuration. Callers must Close it.
func openApp(env *cmdEnv) (*app, error) {
	cat, err := loadCatalog(env.cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	dbConfig := storage.DefaultConfig(env.cfg.Storage.DBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewCollectionStore(repository.NewSlotRepository(db.Conn()),
		storage.WithSlotKey(env.cfg.Storage.SlotKey),
		storage.WithTimeout(env.cfg.WriteTimeout()),
		storage.WithStoreLogger(env.logger))

	dispatcher := events.NewDispatcher(env.logger)
	engine := collection.New(store,
		collection.WithLogger(env.logger),
		collection.WithLocale(env.cfg.Locale()),
		collection.WithNotifier(events.NewCollectionNotifier(dispatcher)))

	view := projection.ViewOptions{
		SetOrder:     env.cfg.Catalog.SetOrder,
		ExcludedSets: env.cfg.Catalog.ExcludedSets,
	}

	env.logger.Debug("collection ready",
		"db", db.Path(),
		"slot", store.Key(),
		"catalog", cat.Len(),
		"owned", engine.TotalCount())

	return &app{
		db:         db,
		catalog:    cat,
		dispatcher: dispatcher,
		collection: facade.New(cat, engine, view, env.logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
