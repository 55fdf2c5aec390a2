// Command s3-resource runs check, in and out as subcommands, which is handy
// outside the runner:
//
//	s3-resource check --request source.yml
//	s3-resource in --request source.yml ./out
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/s3-resource/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New().CLI().RunContext(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}
