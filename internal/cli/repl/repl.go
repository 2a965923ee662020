package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/core/service"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
)

// Prompt is printed before every line read.
const Prompt = "userdir> "

// Directory is the part of service.Directory the shell drives.
type Directory interface {
	Register(ctx context.Context, username, email, password string) (int, error)
	Login(ctx context.Context, username string) (string, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
	Validate(tok string) domain.Validation
	GetPassword(username string) (string, error)
	UpdateUsername(ctx context.Context, oldName, newName string) error
	Release(ctx context.Context, id int) error
	User(username string) (*domain.UserRecord, error)
	Records() []*domain.UserRecord
	Share(id int) error
	Transfer(id int) error
	Clone(ctx context.Context, id int) (int, error)
	Tick(ctx context.Context, day int) (*service.TickReport, error)
	Advance(ctx context.Context) (*service.TickReport, error)
	Day() int
}

// errExit ends the loop without error.
var errExit = errors.New("exit")

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	dir       Directory
	input     io.Reader
	output    io.Writer
	wide      bool
	commands  map[string]*command
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the command history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		if h != nil {
			r.history = h
		}
	}
}

// WithWide shows session tokens in record tables.
func WithWide(wide bool) Option {
	return func(r *REPL) {
		r.wide = wide
	}
}

// New creates a shell over dir reading stdin and writing stdout.
func New(dir Directory, opts ...Option) *REPL {
	r := &REPL{
		dir:     dir,
		input:   os.Stdin,
		output:  os.Stdout,
		history: NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.commands = r.builtins()
	r.completer = NewCompleter(r.commandNames())
	return r
}

// Run reads and executes lines until exit, EOF or ctx is done.
// Command failures are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}
		r.history.Add(line)

		if err := r.execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			logger.L(ctx).Debug("shell command failed", "line", line, "error", err)
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, ok := r.commands[fields[0]]
	if !ok {
		if matches := r.completer.Complete(fields[0]); len(matches) > 0 {
			return fmt.Errorf("unknown command %q (did you mean %s?)", fields[0], strings.Join(matches, ", "))
		}
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}

	args := fields[1:]
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return fmt.Errorf("usage: %s %s", cmd.name, cmd.args)
	}
	return cmd.run(ctx, args)
}
