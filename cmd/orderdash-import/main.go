// Command orderdash-import stores an order export as a SQLite snapshot and
// announces it to running dashboards.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"orderdash/internal/backend"
	"orderdash/internal/cli"
	"orderdash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stderr)

	fs := flag.NewFlagSet("orderdash-import", flag.ExitOnError)
	from := fs.String("from", cfg.DataBackend, "source backend: xlsx, csv, sheets or memory")
	file := fs.String("file", cfg.OrdersFile, "orders file for xlsx and csv sources")
	sheet := fs.String("sheet", cfg.OrdersSheet, "worksheet name for xlsx sources")
	quiet := fs.Bool("quiet", false, "hide the progress bar")
	_ = fs.Parse(os.Args[1:])

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.Type = backend.BackendType(*from)
	bcfg.OrdersFile = *file
	bcfg.OrdersSheet = *sheet
	if !bcfg.Type.HasTable() {
		fmt.Fprintf(os.Stderr, "cannot import from %q: choose one of xlsx, csv, sheets, memory\n", *from)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	reader, err := backend.NewFactory(logger).CreateReader(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create reader", "error", err, "from", bcfg.Type)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	var publisher services.EventPublisher
	if c := cli.InitAMQP(logger, cfg); c != nil {
		publisher = c
	}
	importer := services.NewImportService(repo, publisher, cfg.SnapshotRetention)
	defer func() {
		if err := importer.Close(); err != nil {
			logger.Warn("Close error", "error", err)
		}
	}()

	var bar *progressbar.ProgressBar
	onRow := func(done, total int) {
		if *quiet {
			return
		}
		if bar == nil {
			bar = progressbar.Default(int64(total), "storing order lines")
		}
		_ = bar.Set(done)
	}

	source := backend.Describe(bcfg)
	res, err := importer.Import(ctx, reader, source, onRow)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		logger.Error("Import failed", "error", err, "source", source)
		os.Exit(1)
	}

	logger.Info("Import complete",
		"snapshot_id", res.SnapshotID,
		"rows", res.Rows,
		"periods", len(res.Periods),
		"pruned", res.Pruned,
		"published", res.Published)
}
