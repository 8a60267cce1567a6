package version

import (
	"context"
	"fmt"

	"github.com/inngest/rpcvalidate/pkg/version"
	"github.com/urfave/cli/v3"
)

func Command() *cli.Command {
	return &cli.Command{
		Name: "version",
		Usage: fmt.Sprintf(
			"Shows the rpcvalidate version (saving time, it's: %s)",
			version.Print(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, version.Print())
			return err
		},
	}
}
