// Package main is the entry point for the rentroll CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/evcraddock/rentroll/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorText(err))
		os.Exit(1)
	}
}
