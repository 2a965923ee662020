package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/userdir-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: showVersion,
	}
}

func showVersion(c *cli.Context) error {
	_, f, err := formatter(c)
	if err != nil {
		return err
	}
	return f.Format(c.App.Writer, buildinfo.Get())
}
