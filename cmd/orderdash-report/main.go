// Command orderdash-report computes the dashboard metrics for one period
// without starting a server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"orderdash/internal/backend"
	"orderdash/internal/cli"
	"orderdash/internal/report"
	"orderdash/internal/services"
	"orderdash/internal/sheets/xlsx"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stderr)

	fs := flag.NewFlagSet("orderdash-report", flag.ExitOnError)
	period := fs.String("period", "All", `period label such as "July 2025", or All`)
	format := fs.String("format", "text", "output format: text, json or xlsx")
	out := fs.String("out", "", "output file (required for xlsx, stdout otherwise)")
	list := fs.Bool("list", false, "list the available periods and exit")
	_ = fs.Parse(os.Args[1:])

	if *format == "xlsx" && *out == "" {
		fmt.Fprintln(os.Stderr, "-out is required for the xlsx format")
		os.Exit(2)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := backend.NewFactory(logger).CreateSource(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create data source", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	dataset := services.NewDatasetService(result.Source, nil)
	if err := dataset.Reload(ctx); err != nil {
		logger.Error("Failed to load orders", "error", err)
		os.Exit(1)
	}

	if *list {
		periods, _ := dataset.Periods()
		for _, p := range periods {
			fmt.Println(p)
		}
		return
	}

	b, err := dataset.Metrics(ctx, *period)
	if errors.Is(err, services.ErrUnknownPeriod) {
		periods, _ := dataset.Periods()
		fmt.Fprintf(os.Stderr, "unknown period %q; available: %q\n", *period, periods)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Failed to compute metrics", "error", err)
		os.Exit(1)
	}

	switch *format {
	case "xlsx":
		err = xlsx.WriteReport(*out, cfg.ReportTitle, b)
	case "json", "text":
		w := os.Stdout
		if *out != "" {
			f, createErr := os.Create(*out)
			if createErr != nil {
				logger.Error("Failed to create output", "error", createErr)
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}
		if *format == "json" {
			err = report.WriteJSON(w, b)
		} else {
			err = report.WriteText(w, cfg.ReportTitle, cfg.ReportCurrency, b)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
}
