package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/adapter/csvstore"
	"github.com/pscheid92/allin/internal/adapter/sqlitestore"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/platform/config"
	"github.com/pscheid92/allin/internal/platform/logging"
)

type options struct {
	csvPath    string
	sqlitePath string
	to         string
	dryRun     bool
}

func main() {
	var (
		opts    options
		verbose bool
	)
	flag.StringVar(&opts.csvPath, "csv", envOr("CSV_PATH", "stories.csv"), "CSV store file (or set CSV_PATH env)")
	flag.StringVar(&opts.sqlitePath, "sqlite", envOr("SQLITE_PATH", "stories.db"), "SQLite store file (or set SQLITE_PATH env)")
	flag.StringVar(&opts.to, "to", config.BackendSQLite, `Target backend: "sqlite" (copy CSV into SQLite) or "csv" (copy SQLite into CSV)`)
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Dry run mode (don't write to the target)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")
	flag.Parse()

	level := "info"
	if verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(os.Stdout, level, "text"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err := run(ctx, opts)
	cancel()
	if err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	src, dst, closer, err := openStores(ctx, opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	slog.Info("Starting migration", "csv", opts.csvPath, "sqlite", opts.sqlitePath, "to", opts.to, "dry_run", opts.dryRun)
	start := time.Now()

	n, err := app.CopyPosts(ctx, src, dst, opts.dryRun)
	if err != nil {
		return fmt.Errorf("after %d posts: %w", n, err)
	}

	slog.Info("Migration complete", "posts", n, "duration", time.Since(start))
	return nil
}

// openStores returns source, target and the closer for the SQLite side.
// The SQLite file is only created when it is the target of a real run.
func openStores(ctx context.Context, opts options) (domain.PostStore, domain.PostStore, io.Closer, error) {
	csv := csvstore.New(opts.csvPath)
	clock := clockwork.NewRealClock()

	switch opts.to {
	case config.BackendSQLite:
		if opts.dryRun {
			db, err := sqlitestore.OpenExisting(ctx, opts.sqlitePath, clock)
			if errors.Is(err, os.ErrNotExist) {
				return csv, emptyStore{}, io.NopCloser(nil), nil
			}
			if err != nil {
				return nil, nil, nil, fmt.Errorf("open SQLite store: %w", err)
			}
			return csv, db, db, nil
		}
		db, err := sqlitestore.New(ctx, opts.sqlitePath, clock)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open SQLite store: %w", err)
		}
		return csv, db, db, nil

	case config.BackendCSV:
		db, err := sqlitestore.OpenExisting(ctx, opts.sqlitePath, clock)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open SQLite source: %w", err)
		}
		return db, csv, db, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown target backend %q", opts.to)
	}
}

// emptyStore stands in for a dry-run target that does not exist yet.
type emptyStore struct{}

func (emptyStore) Append(context.Context, domain.Post) error {
	return errors.New("dry run target is read-only")
}

func (emptyStore) List(context.Context) ([]domain.Post, error) {
	return []domain.Post{}, nil
}

func (emptyStore) Ping(context.Context) error { return nil }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
