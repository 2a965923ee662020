package repl

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/yndnr/userdir-go/internal/cli/output"
	"github.com/yndnr/userdir-go/internal/core/service"
)

// command is one shell command. maxArgs < 0 means no upper bound.
type command struct {
	name    string
	args    string
	help    string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, args []string) error
}

func (r *REPL) builtins() map[string]*command {
	list := []*command{
		{name: "register", args: "USERNAME EMAIL PASSWORD", help: "add a user", minArgs: 3, maxArgs: 3, run: r.register},
		{name: "login", args: "USERNAME [PASSWORD]", help: "open a session, checking the password when given", minArgs: 1, maxArgs: 2, run: r.login},
		{name: "validate", args: "TOKEN", help: "validate a session token", minArgs: 1, maxArgs: 1, run: r.validate},
		{name: "password", args: "USERNAME", help: "print a user's password", minArgs: 1, maxArgs: 1, run: r.password},
		{name: "rename", args: "OLD NEW", help: "change a username", minArgs: 2, maxArgs: 2, run: r.rename},
		{name: "release", args: "USER_ID", help: "remove a user", minArgs: 1, maxArgs: 1, run: r.release},
		{name: "share", args: "USER_ID", help: "share a user with the peer side", minArgs: 1, maxArgs: 1, run: r.share},
		{name: "transfer", args: "USER_ID", help: "hand a user to the peer side", minArgs: 1, maxArgs: 1, run: r.transfer},
		{name: "clone", args: "USER_ID", help: "copy a user into a new, logged out record", minArgs: 1, maxArgs: 1, run: r.clone},
		{name: "user", args: "USERNAME", help: "print one user", minArgs: 1, maxArgs: 1, run: r.user},
		{name: "print", help: "print the database", maxArgs: 0, run: r.print},
		{name: "tick", args: "[DAY]", help: "run maintenance for DAY or the next day", maxArgs: 1, run: r.tick},
		{name: "history", help: "list previous commands", maxArgs: 0, run: r.showHistory},
		{name: "help", help: "list commands", maxArgs: 0, run: r.help},
		{name: "exit", help: "leave the shell", maxArgs: -1, run: exit},
		{name: "quit", help: "leave the shell", maxArgs: -1, run: exit},
	}

	m := make(map[string]*command, len(list))
	for _, c := range list {
		m[c.name] = c
	}
	return m
}

func (r *REPL) commandNames() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func exit(context.Context, []string) error { return errExit }

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func (r *REPL) register(ctx context.Context, args []string) error {
	id, err := r.dir.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.output, "registered %s as user_id=%d\n", args[0], id)
	return nil
}

func (r *REPL) login(ctx context.Context, args []string) error {
	var (
		tok string
		err error
	)
	if len(args) == 2 {
		tok, err = r.dir.Authenticate(ctx, args[0], args[1])
	} else {
		tok, err = r.dir.Login(ctx, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(r.output, tok)
	return nil
}

func (r *REPL) validate(_ context.Context, args []string) error {
	fmt.Fprintln(r.output, r.dir.Validate(args[0]))
	return nil
}

func (r *REPL) password(_ context.Context, args []string) error {
	pw, err := r.dir.GetPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(r.output, pw)
	return nil
}

func (r *REPL) rename(ctx context.Context, args []string) error {
	return r.dir.UpdateUsername(ctx, args[0], args[1])
}

func (r *REPL) release(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return r.dir.Release(ctx, id)
}

func (r *REPL) share(_ context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return r.dir.Share(id)
}

func (r *REPL) transfer(_ context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return r.dir.Transfer(id)
}

func (r *REPL) clone(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	newID, err := r.dir.Clone(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.output, "cloned user_id=%d as user_id=%d\n", id, newID)
	return nil
}

func (r *REPL) user(_ context.Context, args []string) error {
	rec, err := r.dir.User(args[0])
	if err != nil {
		return err
	}
	return (&output.TableFormatter{Wide: r.wide}).Format(r.output, rec)
}

func (r *REPL) print(context.Context, []string) error {
	return (&output.TableFormatter{Wide: r.wide}).Format(r.output, r.dir.Records())
}

func (r *REPL) tick(ctx context.Context, args []string) error {
	var (
		report *service.TickReport
		err    error
	)
	if len(args) == 1 {
		day, convErr := strconv.Atoi(args[0])
		if convErr != nil || day <= 0 {
			return fmt.Errorf("invalid day %q", args[0])
		}
		report, err = r.dir.Tick(ctx, day)
	} else {
		report, err = r.dir.Advance(ctx)
	}
	if report != nil {
		fmt.Fprintf(r.output, "day %d: validated=%d evicted=%v duplicates=%v sessions_reclaimed=%d compacted=%v\n",
			report.Day, report.Validated, report.Evicted, report.Duplicates, report.SessionsReclaimed, report.Compacted)
	}
	return err
}

func (r *REPL) showHistory(context.Context, []string) error {
	entries := r.history.Entries()
	for i, e := range entries {
		fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
	}
	return nil
}

func (r *REPL) help(context.Context, []string) error {
	t := &output.Table{}
	t.SetHeaders("COMMAND", "ARGS", "DESCRIPTION")
	for _, name := range r.commandNames() {
		c := r.commands[name]
		args := c.args
		if args == "" {
			args = "-"
		}
		t.AddRow(c.name, args, c.help)
	}
	return t.Render(r.output)
}
