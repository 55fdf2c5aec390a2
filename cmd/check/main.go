// Command check is installed as /opt/resource/check.
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
	err := app.New().Single(app.ActionCheck).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
