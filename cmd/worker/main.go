package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/green-harvest/harvest-backend/config"
	"github.com/green-harvest/harvest-backend/internal/bootstrap"
	"github.com/green-harvest/harvest-backend/internal/logger"
	"github.com/green-harvest/harvest-backend/internal/marketplace/catalog"
	"github.com/green-harvest/harvest-backend/internal/marketplace/stats"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const usage = "usage: worker seed | export [file] | stats"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	boot := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load(boot)
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.App.Environment, cfg.App.LogLevel)

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer storage.Close()

	cat, err := catalog.Open(ctx, storage.KV, catalog.WithPublisher(storage.Events), catalog.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	switch os.Args[1] {
	case "seed":
		err = cat.Reset(ctx)
	case "export":
		err = runExport(cat, os.Args[2:])
	case "stats":
		runStats(cat, log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		log.Fatal().Str("command", os.Args[1]).Msg("unknown command")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

// runExport writes the catalog as seed-compatible YAML to a file or stdout
func runExport(cat *catalog.Store, args []string) error {
	var out io.Writer = os.Stdout
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		defer f.Close()
		out = f
	}
	return writeSnapshot(out, cat.Snapshot())
}

func writeSnapshot(w io.Writer, f catalog.Fixtures) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

func runStats(cat *catalog.Store, log zerolog.Logger) {
	stats.NewReporter(cat, log).Report()
}
