package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/userdir-go/internal/cli/output"
	"github.com/yndnr/userdir-go/internal/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Configuration inspection",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration (defaults, file, environment, flags)",
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "FILE",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	format, f, err := formatter(c)
	if err != nil {
		return err
	}
	// The configuration is nested; YAML is its native table form.
	if format == output.FormatTable {
		f = &output.YAMLFormatter{}
	}
	return f.Format(c.App.Writer, cfg)
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = ParseGlobalFlags(c).Config
	}
	if path == "" {
		return cli.Exit("configuration file is required", 2)
	}

	if _, err := config.Load(path, nil); err != nil {
		PrintError(c.App.ErrWriter, "%v", err)
		return cli.Exit(fmt.Sprintf("invalid configuration: %s", path), 1)
	}
	fmt.Fprintf(c.App.Writer, "configuration file is valid: %s\n", path)
	return nil
}
