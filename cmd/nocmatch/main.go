// Copyright 2025 Occlab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/occlab/nocmatch"
	"github.com/occlab/nocmatch/ai"
	"github.com/occlab/nocmatch/ai/openai"
	"github.com/occlab/nocmatch/core"
	"github.com/occlab/nocmatch/export"
	"github.com/occlab/nocmatch/index"
	"github.com/occlab/nocmatch/taxonomy"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "nocmatch",
		Usage: "Match job descriptions against the occupational classification taxonomy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the embedding index from a taxonomy CSV file",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "taxonomy",
						Aliases:  []string{"t"},
						Usage:    "Path to the taxonomy CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to write the embedding index to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts to embed in each batch",
						Value: 32,
					},
					&cli.BoolFlag{
						Name:  "lenient",
						Usage: "Treat malformed list fields as single values instead of failing",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for a failed build",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "match",
				Usage:     "Rank taxonomy entries against a job description",
				ArgsUsage: "[job description]",
				Action:    matchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to the embedding index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   10,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (table, json, csv)",
						Value:   "table",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Embedding request timeout",
						Value: 60 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	var storeOpts []taxonomy.Option
	if c.Bool("lenient") {
		storeOpts = append(storeOpts, taxonomy.WithLenientLists())
	}
	store, err := taxonomy.Load(c.String("taxonomy"), storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	builder, err := index.NewBuilder(embedder, index.WithBatchSize(c.Int("batch-size")))
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Taxonomy: %s (%d entities)\n", c.String("taxonomy"), store.Len())
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	var idx *index.Index
	err = index.RetryWithBackoff(ctx, func() error {
		var buildErr error
		idx, buildErr = builder.Build(ctx, store)
		return buildErr
	}, c.Int("max-retries"), c.Duration("retry-delay"))
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if err := idx.Save(c.String("index")); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Index written to %s (%d entities, %d duties, dim %d)\n",
		c.String("index"), len(idx.Entities), len(idx.Duties), idx.Dim)
	return nil
}

func matchCommand(c *cli.Context) error {
	ctx := context.Background()

	description := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("job description is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithRequestTimeout(c.Duration("timeout")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	service, err := nocmatch.Open(c.String("index"), nocmatch.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	results, err := service.Match(ctx, description, c.Int("top"))
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	switch c.String("format") {
	case "table":
		return writeTable(results)
	case "json":
		return export.WriteJSON(os.Stdout, results)
	case "csv":
		return export.WriteCSV(os.Stdout, results)
	default:
		return fmt.Errorf("unknown format %q: must be one of table, json, csv", c.String("format"))
	}
}

func writeTable(results []*core.MatchResult) error {
	for i, r := range results {
		fmt.Printf("%2d. %s  %s  [%.3f]\n", i+1, r.Entity.Code, r.Entity.Title, r.CombinedScore)
		fmt.Printf("    overall %.3f, duties %.3f\n", r.OverallScore, r.DutyScore)
		for _, d := range r.MatchedDuties {
			fmt.Printf("    - %s (%.3f) <- %q\n", d.Duty, d.Score, d.Segment)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
