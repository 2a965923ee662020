package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/userdir-go/internal/cli/repl"
	"github.com/yndnr/userdir-go/internal/config"
	"github.com/yndnr/userdir-go/internal/core/service"
	"github.com/yndnr/userdir-go/internal/infra/shutdown"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
	"github.com/yndnr/userdir-go/internal/telemetry/metric"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run directory operations interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "side",
				Usage: "Owning side of the directory: a, b (overrides the configuration)",
			},
			&cli.StringFlag{
				Name:    "history",
				Usage:   "File to keep command history in",
				EnvVars: []string{"USERDIR_HISTORY"},
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print the collected metrics on exit",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	dirCfg, err := config.ToDirectoryConfig(cfg)
	if err != nil {
		return err
	}

	reg := metric.NewRegistry()
	dir, err := service.NewDirectory(dirCfg, service.WithLogger(log), service.WithObserver(reg))
	if err != nil {
		return err
	}

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		log.Warn("history not loaded", "file", c.String("history"), "error", err)
	}

	handler := shutdown.NewHandler(shutdownTimeout)
	handler.OnShutdown(dir.Close)
	handler.OnShutdown(func(ctx context.Context) error {
		return history.Save()
	})

	ctx, stop := handler.NotifyContext(c.Context)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	shell := repl.New(dir,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
		repl.WithWide(ParseGlobalFlags(c).Wide),
	)
	runErr := shell.Run(ctx)

	if err := handler.Run(); err != nil {
		log.Warn("shell teardown reported errors", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("shell: %w", runErr)
	}

	if c.Bool("metrics") {
		return reg.WriteText(c.App.Writer)
	}
	return nil
}
