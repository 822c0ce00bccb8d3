package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	run := func(level string) error {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return setupLogger(cli.NewContext(cli.NewApp(), set, nil))
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			assert.NoError(t, run(level), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := run("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("sets the default logger", func(t *testing.T) {
		require.NoError(t, run("debug"))
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})
}

func TestBuildCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "nocmatch",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Action: func(c *cli.Context) error { return fmt.Errorf("action reached") },
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "taxonomy", Required: true},
					&cli.StringFlag{Name: "index", Required: true},
					&cli.StringFlag{Name: "embedding-host", Value: "http://localhost:11434/v1"},
					&cli.StringFlag{Name: "embedding-model", Required: true},
					&cli.IntFlag{Name: "batch-size", Value: 32},
				},
			},
		},
	}

	t.Run("embedding-model is required", func(t *testing.T) {
		err := app.Run([]string{"nocmatch", "build", "--taxonomy", "/tmp/noc.csv", "--index", "/tmp/idx"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})

	t.Run("taxonomy is required", func(t *testing.T) {
		err := app.Run([]string{"nocmatch", "build", "--index", "/tmp/idx", "--embedding-model", "m"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "taxonomy")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var hostFlag *cli.StringFlag
		for _, f := range cmd.Flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "embedding-host" {
				hostFlag = sf
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("batch-size has default value of 32", func(t *testing.T) {
		cmd := app.Commands[0]
		var batchFlag *cli.IntFlag
		for _, f := range cmd.Flags {
			if intFlag, ok := f.(*cli.IntFlag); ok && intFlag.Name == "batch-size" {
				batchFlag = intFlag
				break
			}
		}
		require.NotNil(t, batchFlag)
		assert.Equal(t, 32, batchFlag.Value)
	})
}
