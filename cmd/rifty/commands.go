package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ramonehamilton/rifty/internal/api"
	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/report"
	"github.com/ramonehamilton/rifty/internal/storage"
	"github.com/ramonehamilton/rifty/internal/version"
)

type command struct {
	summary string
	usage   string
	run     func(env *cmdEnv, args []string) error
}

var commandOrder = []string{"serve", "list", "add", "bulk", "remove", "sets", "search", "report", "migrate", "backup", "version"}

var commands = map[string]command{
	"serve":   {"Run the REST API and websocket server", "[-addr host:port]", runServe},
	"list":    {"List owned cards", "[-search text] [-rarity R] [-category C] [-kind K] [-sort field] [-desc] [-json]", runList},
	"add":     {"Add one copy of each catalog id", "<card-id>...", runAdd},
	"bulk":    {"Add cards of one set by collector number", "-set CODE <numbers, e.g. 1 5 7a>", runBulk},
	"remove":  {"Remove a card by instance id or printing", "<instance-id> | -set CODE -number N [-alt]", runRemove},
	"sets":    {"Show set completion", "[-cards]", runSets},
	"search":  {"Search the catalog by name", "[-limit N] <query>", runSearch},
	"report":  {"Write an HTML completion chart", "[-out file.html]", runReport},
	"migrate": {"Manage database migrations", "up | down | status | force <version>", runMigrate},
	"backup":  {"Create, list or restore database backups", "create [-name N] | list | restore <path>", runBackup},
	"version": {"Print the build version", "", runVersion},
}

func newFlagSet(env *cmdEnv, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func withApp(env *cmdEnv, fn func(a *app) error) error {
	a, err := openApp(env)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			env.logger.Warn("failed to close database", "error", err)
		}
	}()
	return fn(a)
}

func runServe(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "serve")
	addr := fs.String("addr", env.cfg.Addr(), "Listen address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(env, func(a *app) error {
		server := api.NewServer(&api.Config{
			Addr:           *addr,
			CORSOrigins:    env.cfg.API.CORSOrigins,
			RequestTimeout: env.cfg.RequestTimeout(),
			RateLimit:      env.cfg.API.RateLimit,
			RateBurst:      env.cfg.API.RateBurst,
		}, a.collection, a.dispatcher, env.logger)

		if err := server.Start(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		env.logger.Info("server stopped")
		return nil
	})
}

func runList(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "list")
	search := fs.String("search", "", "Name or description contains")
	rarity := fs.String("rarity", "", "Rarity (Common, Uncommon, Rare, Epic, Showcase)")
	category := fs.String("category", "", "Category (Fury, Calm, Body, Chaos, Mind, Neutral)")
	kind := fs.String("kind", "", "Kind (Unit, Spell, Rune)")
	sortField := fs.String("sort", string(collection.SortByName), "Sort field (name, power, cost, rarity)")
	desc := fs.Bool("desc", false, "Sort descending")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(env, func(a *app) error {
		updates := []struct {
			key   collection.FilterKey
			value string
		}{
			{collection.FilterSearch, *search},
			{collection.FilterRarity, *rarity},
			{collection.FilterCategory, *category},
			{collection.FilterKind, *kind},
		}
		for _, u := range updates {
			if u.value == "" {
				continue
			}
			if err := a.collection.UpdateFilter(u.key, u.value); err != nil {
				return fmt.Errorf("%s %q: %w", u.key, u.value, err)
			}
		}
		if err := applySort(a.collection, collection.SortField(*sortField), *desc); err != nil {
			return err
		}

		snap := a.collection.Snapshot()
		if *asJSON {
			return writeJSON(env.stdout, snap)
		}
		displayCollection(env.stdout, snap)
		return nil
	})
}

// applySort drives the toggle-style sort to an explicit field and direction.
func applySort(c *facade.Collection, field collection.SortField, desc bool) error {
	if c.Snapshot().Sort.Field != field {
		if err := c.UpdateSort(field); err != nil {
			return err
		}
	}
	want := collection.Ascending
	if desc {
		want = collection.Descending
	}
	if c.Snapshot().Sort.Direction != want {
		return c.UpdateSort(field)
	}
	return nil
}

func runAdd(env *cmdEnv, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	return withApp(env, func(a *app) error {
		var missing []string
		for _, id := range args {
			item, err := a.collection.AddByID(id)
			if err != nil {
				if errors.Is(err, facade.ErrCardNotFound) {
					missing = append(missing, id)
					continue
				}
				return err
			}
			fmt.Fprintf(env.stdout, "Added %s %s (%s)\n", printingLabel(item.Card), item.Name, item.InstanceID)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", facade.ErrCardNotFound, strings.Join(missing, ", "))
		}
		return nil
	})
}

func runBulk(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "bulk")
	setCode := fs.String("set", "", "Set code, e.g. OGN")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *setCode == "" || fs.NArg() == 0 {
		return errUsage
	}

	return withApp(env, func(a *app) error {
		result, err := a.collection.AddBulk(*setCode, strings.Join(fs.Args(), " "))
		if err != nil {
			return err
		}
		displayBulkResult(env.stdout, result)
		return nil
	})
}

func runRemove(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "remove")
	setCode := fs.String("set", "", "Set code of the printing")
	number := fs.Int("number", -1, "Collector number of the printing")
	alt := fs.Bool("alt", false, "Alternate printing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	byPrinting := *setCode != "" && *number >= 0
	if byPrinting == (fs.NArg() == 1) || fs.NArg() > 1 {
		return errUsage
	}

	return withApp(env, func(a *app) error {
		if !byPrinting {
			id := fs.Arg(0)
			if !a.collection.RemoveByInstance(id) {
				return fmt.Errorf("no owned card with instance id %s", id)
			}
			fmt.Fprintf(env.stdout, "Removed %s\n", id)
			return nil
		}

		id, err := a.collection.RemoveOne(catalog.Printing{SetCode: *setCode, CollectorNumber: *number, IsAlternate: *alt})
		if err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "Removed %s\n", id)
		return nil
	})
}

func runSets(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "sets")
	showCards := fs.Bool("cards", false, "List every printing with owned counts")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(env, func(a *app) error {
		view := a.collection.CatalogView()
		if *asJSON {
			return writeJSON(env.stdout, view)
		}
		displaySets(env.stdout, view, *showCards)
		return nil
	})
}

func runSearch(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "search")
	limit := fs.Int("limit", 10, "Maximum results")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cat, err := loadCatalog(env.cfg)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	opts := catalog.DefaultSearchOptions()
	opts.MaxResults = *limit
	displaySearch(env.stdout, cat.Search(strings.Join(fs.Args(), " "), opts))
	return nil
}

func runReport(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "report")
	out := fs.String("out", "rifty-completion.html", "Output HTML file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(env, func(a *app) error {
		if err := report.WriteCompletionChart(a.collection.Stats(), report.DefaultChartConfig(), *out); err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "Wrote %s\n", *out)
		return nil
	})
}

func runMigrate(env *cmdEnv, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	if err := os.MkdirAll(filepath.Dir(env.cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	mgr, err := storage.NewMigrationManager(env.cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			env.logger.Warn("failed to close migration manager", "error", err)
		}
	}()

	switch args[0] {
	case "up":
		if err := mgr.Up(); err != nil {
			return err
		}
	case "down":
		if err := mgr.Down(); err != nil {
			return err
		}
	case "status", "version":
	case "force":
		if len(args) < 2 {
			return errUsage
		}
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		if err := mgr.Force(target); err != nil {
			return err
		}
	default:
		return errUsage
	}

	status, err := mgr.Status()
	if err != nil {
		return err
	}
	switch {
	case status.Dirty:
		fmt.Fprintf(env.stdout, "Current version: %d (dirty - use 'migrate force <version>' to recover)\n", status.Version)
	case status.Pending():
		fmt.Fprintf(env.stdout, "Current version: %d (latest %d, run 'migrate up')\n", status.Version, status.Latest)
	default:
		fmt.Fprintf(env.stdout, "Current version: %d\n", status.Version)
	}
	return nil
}

func runBackup(env *cmdEnv, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	mgr := storage.NewBackupManager(env.cfg.Storage.DBPath, env.cfg.Storage.BackupDir)

	switch args[0] {
	case "create":
		fs := newFlagSet(env, "backup create")
		name := fs.String("name", "", "Backup name (default: timestamp)")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		path, err := mgr.Backup(storage.BackupOptions{Name: *name, Verify: true})
		if err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "Backup written to %s\n", path)

	case "list", "ls":
		backups, err := mgr.List()
		if err != nil {
			return err
		}
		displayBackups(env.stdout, backups)

	case "restore":
		if len(args) < 2 {
			return errUsage
		}
		if err := mgr.Restore(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "Restored %s from %s\n", env.cfg.Storage.DBPath, args[1])

	default:
		return errUsage
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runVersion(env *cmdEnv, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	fmt.Fprintf(env.stdout, "rifty %s\n", version.GetVersion())
	return nil
}
