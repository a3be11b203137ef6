package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/m0n0x41d/anthropic-proxy/internal/app"
	"github.com/m0n0x41d/anthropic-proxy/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version, commit string) error {
	cmd := &cli.Command{
		Name:    "anthropic-proxy",
		Usage:   "Anthropic Messages API proxy for OpenAI-compatible upstreams",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path to a dotenv file (overrides the default search chain)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			authCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the proxy server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|otlp|otlp-stdout)",
				Value: "text",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "force debug logging",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "additionally log translated upstream payloads",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	// Set up observability before creating app
	if err := observability.Instrument(level, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.Shutdown(flushCtx); err != nil {
			slog.Error("failed to flush logs", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}

// loadConfig assembles configuration from files and environment, then lays
// command-line flag overrides on top before validating.
func loadConfig(cmd *cli.Command) (*app.Config, error) {
	cfg, err := app.LoadConfig(app.LoadOptions{
		ConfigFile: cmd.String("config"),
		EnvFile:    cmd.String("env-file"),
		Environ:    os.Environ,
	})
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = strings.ToLower(cmd.String("log-level"))
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = strings.ToLower(cmd.String("log-format"))
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	if cmd.Bool("verbose") {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
