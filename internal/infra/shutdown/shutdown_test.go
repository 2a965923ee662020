package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHandler_RunsHooksInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	if err := h.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("hook order = %v, want [3 2 1]", order)
	}
}

func TestHandler_JoinsErrorsAndRunsOnce(t *testing.T) {
	h := NewHandler(time.Second)
	errA := errors.New("a")
	errB := errors.New("b")

	calls := 0
	h.OnShutdown(func(context.Context) error { calls++; return errA })
	h.OnShutdown(func(context.Context) error { calls++; return nil })
	h.OnShutdown(func(context.Context) error { calls++; return errB })

	err := h.Run()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("Run() error = %v, want both hook errors", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	if again := h.Run(); again != err {
		t.Errorf("second Run() = %v, want first result", again)
	}
	if calls != 3 {
		t.Errorf("hooks ran again: calls = %d", calls)
	}
}

func TestHandler_HookContextHasDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	var hadDeadline bool
	h.OnShutdown(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	if err := h.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !hadDeadline {
		t.Error("hook context should carry the handler timeout")
	}
}

func TestHandler_NotifyContext(t *testing.T) {
	h := NewHandler(time.Second)
	parent, cancel := context.WithCancel(context.Background())

	ctx, stop := h.NotifyContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled with its parent")
	}
}
