package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scott-cotton/cli"

	app "github.com/rocketscienceinc/tris-server/internal"
	"github.com/rocketscienceinc/tris-server/internal/config"
)

type mainConfig struct {
	*cli.Command
	ConfigPath string `cli:"name=config desc='path to the YAML config file'"`
}

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cli.MainContext(context.Background(), mainCommand())
}

func mainCommand() *cli.Command {
	cfg := &mainConfig{ConfigPath: "config.yml"}
	opts, _ := cli.StructOpts(cfg)

	return cli.NewCommandAt(&cfg.Command, "tris").
		WithSynopsis("tris [-config path] - tic-tac-toe game server").
		WithDescription("Pairs TCP clients in arrival order and referees one match per pair.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *mainConfig) run(cc *cli.Context, args []string) error {
	_, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}

	conf := config.MustLoad(cfg.ConfigPath)
	logger := initLogger(conf)

	if err = app.RunApp(logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	return newLogger(os.Stdout, conf.LogLevel)
}

// newLogger - JSON logger at the named level. An unknown name falls back to info with a warning.
func newLogger(w io.Writer, levelName string) *slog.Logger {
	var level slog.Level
	known := true

	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		known = false
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	if !known {
		logger.Warn("unknown log level, using info", "log-level", levelName)
	}

	return logger
}
