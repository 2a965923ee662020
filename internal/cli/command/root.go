package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/userdir-go/internal/cli/output"
	"github.com/yndnr/userdir-go/internal/config"
	"github.com/yndnr/userdir-go/internal/infra/buildinfo"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "userdir",
		Usage:   "In-memory user directory with two-sided record ownership",
		Version: buildinfo.Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SimulateCommand(),
			ShellCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"USERDIR_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (overrides the configuration)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json (overrides the configuration)",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config string

	Output string // table, json, yaml
	Wide   bool

	LogLevel  string
	LogFormat string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
	}
}

// overrides maps explicitly set flags onto configuration keys. Flags win
// over the environment and the file.
func overrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		m["log.format"] = c.String("log-format")
	}
	if c.IsSet("side") {
		m["directory.side"] = c.String("side")
	}
	return m
}

// loadConfig loads the configuration named by the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(ParseGlobalFlags(c).Config, overrides(c))
}

// newLogger builds the command logger, writing to the app's ErrWriter.
func newLogger(c *cli.Context, cfg *config.Config) (logger.Logger, error) {
	lc := config.ToLoggerConfig(cfg)
	lc.Output = c.App.ErrWriter
	return logger.New(lc)
}

// formatter resolves the --output and --wide flags.
func formatter(c *cli.Context) (output.Format, output.Formatter, error) {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return "", nil, cli.Exit(err.Error(), 2)
	}
	return format, output.NewFormatter(format, flags.Wide), nil
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
