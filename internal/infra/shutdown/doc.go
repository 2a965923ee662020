// Package shutdown runs teardown hooks when a command finishes or the
// process is interrupted.
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.NotifyContext(context.Background())
//	defer stop()
//	h.OnShutdown(dir.Close)
//	defer h.Run()
package shutdown
