// itinera extracts validated JSON documents from language-model output.
//
// Usage:
//
//	itinera extract [--require=k1,k2] [--parallel=N] [--token-repair] [file...]
//	itinera replay  [--require=k1,k2] [--max-attempts=N] [--backoff=D] [--attempt-timeout=D] response1 [response2...]
//
// Settings come from --config (YAML), then ITINERA_* variables (a .env file in
// the working directory is loaded first), then flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
