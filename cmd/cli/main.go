package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/datalayer"
	"github.com/glizzus/pkinput/internal/generator"
	"github.com/glizzus/pkinput/internal/pipeline"
	"github.com/glizzus/pkinput/internal/presenters"
	"github.com/glizzus/pkinput/internal/table"
	"github.com/urfave/cli/v2"
)

var outputFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "out",
		Usage: "Directory to write the output file to",
		Value: ".",
	},
	&cli.StringFlag{
		Name:  "format",
		Usage: "Output format: xlsx, csv or parquet",
		Value: "xlsx",
	},
	&cli.BoolFlag{
		Name:  "upload",
		Usage: "Also upload the output file to the configured minio bucket",
	},
}

func timesFlag(defaults *config.DefaultsConfig) cli.Flag {
	return &cli.StringFlag{
		Name:  "times",
		Usage: "Comma separated nominal sample times in hours, in Time Number order",
		Value: defaults.Times,
	}
}

// writeOutput writes data to <out>/<filename> and uploads it when asked.
// Nothing is written until data has been fully encoded.
func writeOutput(c *cli.Context, filename, contentType string, data []byte) error {
	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)

	if !c.Bool("upload") {
		return nil
	}
	key, err := upload(c.Context, filename, contentType, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Uploaded %s\n", key)
	return nil
}

func upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	cfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return "", fmt.Errorf("failed to load minio config: %w", err)
	}
	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return "", err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return "", err
	}
	return datalayer.NewExporter(storage, generator.NewExportKeyGenerator()).Upload(ctx, filename, contentType, data)
}

func scheduleAction(c *cli.Context) error {
	subjects, err := table.ReadFile(c.String("subjects"))
	if err != nil {
		return cli.Exit("Failed to read subjects: "+err.Error(), 1)
	}
	times, err := config.ParseNominalTimes(c.String("times"))
	if err != nil {
		return cli.Exit("Invalid --times: "+err.Error(), 1)
	}
	withdrawn, err := config.ParseWithdrawn(c.String("withdrawn"))
	if err != nil {
		return cli.Exit("Invalid --withdrawn: "+err.Error(), 1)
	}
	format, err := pipeline.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	res, err := pipeline.Schedule(c.Context, pipeline.ScheduleInput{
		Subjects:  subjects,
		Periods:   c.Int("periods"),
		Times:     times,
		Withdrawn: withdrawn,
	})
	if err != nil {
		return cli.Exit("Failed to prepare schedule: "+err.Error(), 1)
	}
	data, err := res.Encode(format)
	if err != nil {
		return cli.Exit("Failed to encode schedule: "+err.Error(), 1)
	}

	if err := presenters.WriteScheduleReport(c.App.Writer, res); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := writeOutput(c, format.FileName(pipeline.ScheduleFileBase), format.ContentType(), data); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func actualAction(c *cli.Context) error {
	scheduleTable, err := table.ReadFile(c.String("schedule"))
	if err != nil {
		return cli.Exit("Failed to read schedule: "+err.Error(), 1)
	}
	variations, err := table.ReadFile(c.String("variations"))
	if err != nil {
		return cli.Exit("Failed to read variations: "+err.Error(), 1)
	}
	times, err := config.ParseNominalTimes(c.String("times"))
	if err != nil {
		return cli.Exit("Invalid --times: "+err.Error(), 1)
	}
	format, err := pipeline.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	res, err := pipeline.Actual(c.Context, pipeline.ActualInput{
		Schedule:   scheduleTable,
		Variations: variations,
		Times:      times,
	})
	if err != nil {
		return cli.Exit("Failed to adjust times: "+err.Error(), 1)
	}
	data, err := res.Encode(format)
	if err != nil {
		return cli.Exit("Failed to encode table: "+err.Error(), 1)
	}

	presenters.WriteActualReport(c.App.Writer, res)
	if err := writeOutput(c, format.FileName(pipeline.ActualFileBase), format.ContentType(), data); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	defaults, err := config.NewDefaultsConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load defaults: %v", err)
	}

	app := &cli.App{
		Name:        "pkinput",
		Usage:       "Prepare PK sampling time tables",
		Description: "Expands dosing sequences into a sampling schedule and adjusts it with recorded draw times",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "warn",
				EnvVars: []string{"PKINPUT_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := config.ParseLogLevel(c.String("log-level"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			slog.SetLogLoggerLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "schedule",
				Usage:  "Expand a subjects table into the Schedule Time Input table",
				Action: scheduleAction,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "subjects",
						Usage:    "Subjects table (.xlsx or .csv) with Subject and Sequence columns",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "periods",
						Usage: "Number of dosing periods",
						Value: defaults.Periods,
					},
					timesFlag(defaults),
					&cli.StringFlag{
						Name:  "withdrawn",
						Usage: "Comma separated IDs of withdrawn subjects",
					},
				}, outputFlags...),
			},
			{
				Name:   "actual",
				Usage:  "Adjust a schedule table with recorded sample draw times",
				Action: actualAction,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "schedule",
						Usage:    "Schedule table produced by the schedule command",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "variations",
						Usage:    "Variations table with recorded draw times",
						Required: true,
					},
					timesFlag(defaults),
				}, outputFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
