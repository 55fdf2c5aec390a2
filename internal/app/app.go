// Package app wires the resource actions to the command line: it reads the
// request, builds the storage client, runs the action and writes the
// response.
package app

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/koustreak/s3-resource/internal/config"
	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/filestore"
	"github.com/koustreak/s3-resource/internal/filestore/minio"
	"github.com/koustreak/s3-resource/internal/logger"
	"github.com/koustreak/s3-resource/internal/resource"
)

const (
	ActionCheck = "check"
	ActionIn    = "in"
	ActionOut   = "out"
)

// StoreFactory opens the object store a request points at.
type StoreFactory func(cfg *filestore.Config) (filestore.Store, error)

// App holds the process streams and collaborators shared by all actions.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Config is loaded from the environment on first use when nil.
	Config *config.Config

	NewStore StoreFactory
}

// New returns an App bound to the process streams and the MinIO driver.
func New() *App {
	return &App{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		NewStore: MinioStore,
	}
}

// MinioStore is the default StoreFactory.
func MinioStore(cfg *filestore.Config) (filestore.Store, error) {
	return minio.New(cfg)
}

// Single returns a CLI that runs one action directly, the shape the runner
// expects for /opt/resource/check, /opt/resource/in and /opt/resource/out.
func (a *App) Single(action string) *cli.App {
	cmd := a.command(action)
	return &cli.App{
		Name:            action,
		Usage:           cmd.Usage,
		ArgsUsage:       cmd.ArgsUsage,
		Flags:           cmd.Flags,
		Action:          cmd.Action,
		HideVersion:     true,
		Writer:          a.Stderr,
		ErrWriter:       a.Stderr,
		HideHelpCommand: true,
	}
}

// CLI returns a CLI with one subcommand per action.
func (a *App) CLI() *cli.App {
	return &cli.App{
		Name:  "s3-resource",
		Usage: "Track versioned objects in an S3-compatible bucket",
		Commands: []*cli.Command{
			a.command(ActionCheck),
			a.command(ActionIn),
			a.command(ActionOut),
		},
		HideVersion: true,
		Writer:      a.Stderr,
		ErrWriter:   a.Stderr,
	}
}

func (a *App) command(action string) *cli.Command {
	cmd := &cli.Command{
		Name:   action,
		Flags:  commonFlags(),
		Action: a.run(action),
	}
	switch action {
	case ActionCheck:
		cmd.Usage = "Report the object versions matching the source filters"
	case ActionIn:
		cmd.Usage = "Download the requested version into DIR"
		cmd.ArgsUsage = "DIR"
	case ActionOut:
		cmd.Usage = "Upload files from DIR matching params.glob"
		cmd.ArgsUsage = "DIR"
	}
	return cmd
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "request",
			Aliases: []string{"r"},
			Usage:   "Read the request from `FILE` (JSON or YAML) instead of stdin",
			EnvVars: []string{config.EnvPrefix + "_REQUEST"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override the log level (debug, info, warn, error, disabled)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Override the log format (console, json)",
		},
	}
}

// run adapts an action to cli.ActionFunc. Failures are logged to stderr and
// returned as plain errors so the caller decides the exit status.
func (a *App) run(action string) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := a.logger(c)
		if err != nil {
			return err
		}
		log = log.With().Str("action", action).Logger()
		ctx := log.WithContext(c.Context)

		resp, err := a.dispatch(ctx, c, action)
		if err != nil {
			log.ErrorWith(action+" failed", err, map[string]interface{}{
				"kind": errs.KindOf(err).String(),
			})
			return err
		}
		return resource.EncodeResponse(a.Stdout, resp)
	}
}

func (a *App) dispatch(ctx context.Context, c *cli.Context, action string) (any, error) {
	req, err := a.readRequest(c)
	if err != nil {
		return nil, err
	}
	client, err := a.open(req.Source)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	ctx = logger.FromContext(ctx).With().Str("bucket", client.Bucket()).Logger().WithContext(ctx)

	switch action {
	case ActionCheck:
		return resource.Check(ctx, client, req)
	case ActionIn:
		dir, err := dirArg(c)
		if err != nil {
			return nil, err
		}
		return resource.In(ctx, client, dir, req)
	case ActionOut:
		dir, err := dirArg(c)
		if err != nil {
			return nil, err
		}
		return resource.Out(ctx, client, dir, req)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown action %q", action)
	}
}

func (a *App) logger(c *cli.Context) (*logger.Logger, error) {
	if a.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		a.Config = cfg
	}
	cfg := *a.Config
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := c.String("log-format"); f != "" {
		cfg.Log.Format = f
	}
	return cfg.Logger(a.Stderr), nil
}

func (a *App) readRequest(c *cli.Context) (resource.Request, error) {
	if path := c.String("request"); path != "" {
		return config.LoadRequestFile(path)
	}
	return resource.DecodeRequest(a.Stdin)
}

func (a *App) open(src resource.Source) (*resource.Client, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	storeCfg, err := src.StoreConfig()
	if err != nil {
		return nil, err
	}
	store, err := a.NewStore(storeCfg)
	if err != nil {
		return nil, err
	}
	return resource.NewClient(store, src.Service.Bucket), nil
}

func dirArg(c *cli.Context) (string, error) {
	dir := c.Args().First()
	if dir == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "a directory argument is required")
	}
	return dir, nil
}
