package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"buf.build/go/protovalidate"
	"github.com/inngest/rpcvalidate/cmd/internal/envflags"
	"github.com/inngest/rpcvalidate/cmd/internal/localconfig"
	"github.com/inngest/rpcvalidate/pkg/logger"
	"github.com/inngest/rpcvalidate/pkg/userapi"
	"github.com/inngest/rpcvalidate/pkg/validation"
	"github.com/urfave/cli/v3"
)

const DefaultAddr = "127.0.0.1:8080"

func Command() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve user.v1.UserService over gRPC and Connect with request validation",
		UsageText: "rpcvalidate serve [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to an rpcvalidate configuration file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Value: DefaultAddr,
				Usage: "Address to listen on",
			},
			&cli.BoolFlag{
				Name:  "reflection",
				Usage: "Register the gRPC reflection service",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop validating a request at its first violation",
			},
		},
		Action: action,
	}
}

// Opts is the resolved serve configuration.
type Opts struct {
	Addr       string
	Reflection bool
	FailFast   bool
}

// ResolveOpts merges configuration with flags.  Flags set on the command
// line win over the file and environment.
func ResolveOpts(cmd *cli.Command, conf *localconfig.Config) Opts {
	return Opts{
		Addr:       envflags.StringFlagOr(cmd, "addr", conf.Addr),
		Reflection: envflags.BoolFlagOr(cmd, "reflection", conf.Reflection),
		FailFast:   envflags.BoolFlagOr(cmd, "fail-fast", conf.FailFast),
	}
}

// NewValidator builds the request validator for opts.
func NewValidator(opts Opts, l logger.Logger) (*validation.Validator, error) {
	var pvOpts []protovalidate.ValidatorOption
	if opts.FailFast {
		pvOpts = append(pvOpts, protovalidate.WithFailFast())
	}

	eval, err := validation.NewProtovalidateEvaluator(pvOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating evaluator: %w", err)
	}
	return validation.New(validation.WithEvaluator(eval), validation.WithLogger(l))
}

func action(ctx context.Context, cmd *cli.Command) error {
	l := logger.StdlibLogger(ctx)

	conf, err := localconfig.FromCommand(ctx, cmd)
	if err != nil {
		return err
	}
	opts := ResolveOpts(cmd, conf)

	v, err := NewValidator(opts, l)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return userapi.ListenAndServe(ctx, opts.Addr, userapi.ServerOpts{
		Validator:  v,
		Reflection: opts.Reflection,
		Logger:     l,
	})
}
