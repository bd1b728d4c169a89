// Command yamdb-import loads CSV fixture files into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/PaulSssar/yamdb-final/internal/config"
	"github.com/PaulSssar/yamdb-final/internal/logging"
	"github.com/PaulSssar/yamdb-final/internal/store"
	"github.com/PaulSssar/yamdb-final/internal/transfer"
)

func main() {
	dir := flag.String("dir", "./data/csv", "Directory containing the CSV fixture files")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "yamdb-import - load CSV fixtures into the yamdb database\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nExpected files (missing ones are skipped):\n")
		_, _ = fmt.Fprintf(os.Stderr, "  users.csv category.csv genre.csv titles.csv genre_title.csv review.csv comments.csv\n")
	}
	flag.Parse()

	if err := run(*dir); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(dir string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	stats, err := transfer.NewImporter(db, logger).ImportDir(context.Background(), dir)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range stats {
		total += n
	}
	logger.Info("import complete", "files", len(stats), "rows", total)
	return nil
}
