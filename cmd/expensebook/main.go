package main

import (
	"context"
	"fmt"
	"os"

	"expensebook/internal/cli"
	"expensebook/internal/log"
)

var version = "dev"

func main() {
	a := newApp(os.Stdout, os.Stderr)
	root := a.rootCmd()

	ctx, cancel := cli.SignalContext(context.Background(), log.New(log.DefaultConfig()))
	err := root.ExecuteContext(ctx)
	cancel()

	if cerr := a.close(); cerr != nil {
		fmt.Fprintln(os.Stderr, cli.Error("closing storage: "+cerr.Error()))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Error(describeError(err)))
		os.Exit(1)
	}
}
