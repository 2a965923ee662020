package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/userdir-go/internal/cli/output"
	"github.com/yndnr/userdir-go/internal/config"
	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/core/service"
	"github.com/yndnr/userdir-go/internal/infra/shutdown"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
	"github.com/yndnr/userdir-go/internal/telemetry/metric"
)

const (
	defaultDays     = 8
	shutdownTimeout = 5 * time.Second
)

// SimulateCommand returns the simulate command.
func SimulateCommand() *cli.Command {
	return &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "Drive a directory through a number of maintenance days",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "Scenario to run: " + strings.Join(scenarioNames(), ", "),
				Value:   ScenarioLifecycle,
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Number of maintenance days",
				Value:   defaultDays,
			},
			&cli.StringFlag{
				Name:  "side",
				Usage: "Owning side of the local directory: a, b (overrides the configuration)",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Append the collected metrics in Prometheus text format",
			},
		},
		Action: simulate,
	}
}

func simulate(c *cli.Context) error {
	format, f, err := formatter(c)
	if err != nil {
		return err
	}

	days := c.Int("days")
	if days < 1 {
		return cli.Exit("--days must be at least 1", 2)
	}
	name := c.String("scenario")
	run, ok := scenarios[name]
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown scenario %q (want %s)", name, strings.Join(scenarioNames(), ", ")), 2)
	}

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
	handler := shutdown.NewHandler(shutdownTimeout)
	ctx, stop := handler.NotifyContext(c.Context)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	sim := newSimulation(dirCfg, days, log, reg, handler)
	runErr := run(ctx, sim)
	report := sim.report(name)

	// Directories are torn down before anything is printed.
	closeErr := handler.Run()
	if runErr != nil {
		return fmt.Errorf("scenario %s: %w", name, runErr)
	}

	w := c.App.Writer
	if format == output.FormatTable {
		err = renderTable(w, report, ParseGlobalFlags(c).Wide)
	} else {
		err = f.Format(w, report)
	}
	if err != nil {
		return err
	}

	if c.Bool("metrics") {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := reg.WriteText(w); err != nil {
			return err
		}
	}

	if closeErr != nil {
		log.Warn("teardown reported errors", "error", closeErr)
		return closeErr
	}
	return nil
}

// ============================================================================
// Simulation
// ============================================================================

// simulation holds the directories of one run and what happened to them.
type simulation struct {
	cfg      service.DirectoryConfig
	days     int
	log      logger.Logger
	observer service.Observer
	shutdown *shutdown.Handler

	dirs      []*service.Directory
	ticks     map[*service.Directory][]*service.TickReport
	completed int
	events    []string
}

func newSimulation(cfg service.DirectoryConfig, days int, log logger.Logger, obs service.Observer, h *shutdown.Handler) *simulation {
	return &simulation{
		cfg:      cfg,
		days:     days,
		log:      log,
		observer: obs,
		shutdown: h,
		ticks:    make(map[*service.Directory][]*service.TickReport),
	}
}

// open creates a directory for side and registers its teardown.
func (s *simulation) open(side domain.Side) (*service.Directory, error) {
	cfg := s.cfg
	cfg.Side = side

	d, err := service.NewDirectory(cfg,
		service.WithLogger(s.log),
		service.WithObserver(s.observer),
	)
	if err != nil {
		return nil, err
	}

	s.shutdown.OnShutdown(func(ctx context.Context) error {
		if err := d.Close(ctx); err != nil && !errors.Is(err, domain.ErrDirectoryClosed) {
			return fmt.Errorf("close directory %s: %w", d.Side(), err)
		}
		return nil
	})
	s.dirs = append(s.dirs, d)
	return d, nil
}

func (s *simulation) eventf(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

// runDays ticks every open directory once per day, then calls daily.
// A cancelled context stops the loop after the current day.
func (s *simulation) runDays(ctx context.Context, daily func(ctx context.Context, day int)) {
	for day := 1; day <= s.days; day++ {
		if ctx.Err() != nil {
			s.eventf("interrupted before day %d", day)
			return
		}
		for _, d := range s.dirs {
			report, err := d.Tick(ctx, day)
			if err != nil {
				s.log.Warn("tick failed", "day", day, "side", d.Side().String(), "error", err)
				s.eventf("day %d: tick on side %s reported %s", day, d.Side(), errorCode(err))
			}
			if report != nil {
				s.ticks[d] = append(s.ticks[d], report)
			}
		}
		if daily != nil {
			daily(ctx, day)
		}
		s.completed = day
	}
}

func (s *simulation) report(name string) *Report {
	r := &Report{Scenario: name, Days: s.completed, Events: s.events}
	for _, d := range s.dirs {
		r.Directories = append(r.Directories, snapshotDirectory(d, s.ticks[d]))
	}
	return r
}

// errorCode returns the domain code of err, or its message.
func errorCode(err error) string {
	if code := domain.GetErrorCode(err); code != "" {
		return code
	}
	return err.Error()
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
