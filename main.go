package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/codalotl/panediff/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code, _ := cli.Run(ctx, os.Args, nil)
	stop()
	os.Exit(code)
}
