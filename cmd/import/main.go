// Command import loads a lesson spreadsheet into the catalog database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/platform/config"
	"github.com/readnest/readnest-server/internal/platform/database"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	file := flag.String("file", "", "path to the lesson spreadsheet (.xlsx)")
	flag.Parse()
	if *file == "" {
		slog.Error("usage: import -file lessons.xlsx")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("READNEST_DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("creating catalog store", "error", err)
		os.Exit(1)
	}

	n, err := catalog.NewImporter(store).ImportFile(ctx, *file)
	if err != nil {
		slog.Error("import failed", "imported", n, "error", err)
		os.Exit(1)
	}
	slog.Info("import complete", "lessons", n)
}
