package main

import (
	"context"
	"fmt"
	"os"

	"github.com/inngest/rpcvalidate/cmd/call"
	"github.com/inngest/rpcvalidate/cmd/decode"
	"github.com/inngest/rpcvalidate/cmd/reason"
	"github.com/inngest/rpcvalidate/cmd/serve"
	"github.com/inngest/rpcvalidate/cmd/version"
	"github.com/inngest/rpcvalidate/pkg/cli/output"
	"github.com/inngest/rpcvalidate/pkg/logger"
	rpcversion "github.com/inngest/rpcvalidate/pkg/version"
	isatty "github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// globalFlags are the flags that should be available on all commands
var globalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "json",
		Usage: "Output logs and results as JSON.  Logs are JSON if stdout is not a TTY.",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable verbose logging.",
	},
	&cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Value:   "info",
		Usage:   "Set the log level.  One of: trace, debug, info, warn, error.",
	},
}

func newApp() *cli.Command {
	return &cli.Command{
		Name: "rpcvalidate",
		Usage: output.TextStyle.Render(fmt.Sprintf(
			"%s %s\n\n%s",
			"rpcvalidate",
			fmt.Sprintf("v%s", rpcversion.Print()),
			"Request validation with structured google.rpc.BadRequest errors.",
		)),
		Version: rpcversion.Print(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// Set LOG_HANDLER so the logger respects the JSON output setting
			if cmd.Bool("json") {
				os.Setenv("LOG_HANDLER", "json")
			}

			if os.Getenv("LOG_LEVEL") == "" {
				if cmd.IsSet("log-level") {
					os.Setenv("LOG_LEVEL", cmd.String("log-level"))
				} else if cmd.Bool("verbose") {
					os.Setenv("LOG_LEVEL", "debug")
				} else {
					os.Setenv("LOG_LEVEL", "info")
				}
			}

			return logger.WithStdlib(ctx, logger.New()), nil
		},

		Flags: globalFlags,
		Commands: []*cli.Command{
			serve.Command(),
			call.Command(),
			decode.Command(),
			reason.Command(),
			version.Command(),
		},
	}
}

func execute() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		// Always use JSON when not in a terminal
		os.Setenv("LOG_HANDLER", "json")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, output.RenderError(err.Error()))
		os.Exit(1)
	}
}
