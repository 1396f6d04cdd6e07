package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/fx"
)

func run(ctx context.Context, app *fx.App) {
	os.Exit(serve(ctx, app, os.Stderr))
}

// serve blocks until ctx is cancelled or the app asks to shut down and returns the process exit code.
func serve(ctx context.Context, app *fx.App, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start homecare: %v\n", err)
		return 1
	}

	code := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		code = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "failed to stop homecare: %v\n", err)
		return 1
	}
	return code
}
