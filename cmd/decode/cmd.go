package decode

import (
	"context"
	"fmt"

	"github.com/inngest/rpcvalidate/pkg/cli/output"
	"github.com/inngest/rpcvalidate/pkg/errdetail"
	"github.com/urfave/cli/v3"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode base64 google.rpc.BadRequest error details",
		UsageText: "rpcvalidate decode <base64>...",
		Description: "Decodes the value of a google.rpc.BadRequest detail, eg. from the " +
			"\"details\" of a Connect JSON error, and lists its field violations.",
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return fmt.Errorf("at least one base64 payload is required")
	}

	decoded := make([]*errdetail.BadRequest, 0, len(inputs))
	for i, in := range inputs {
		br, err := errdetail.DecodeBadRequest(in)
		if err != nil {
			return fmt.Errorf("payload %d: %w", i+1, err)
		}
		decoded = append(decoded, br)
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		if len(decoded) == 1 {
			return output.JSON(w, decoded[0])
		}
		return output.JSON(w, decoded)
	}

	for i, br := range decoded {
		if len(decoded) > 1 {
			heading := fmt.Sprintf("Payload #%d", i+1)
			if i > 0 {
				heading = "\n" + heading
			}
			if _, err := fmt.Fprintln(w, output.BoldStyle.Render(heading)); err != nil {
				return err
			}
		}
		if err := output.TextFieldViolations(w, br.FieldViolations); err != nil {
			return err
		}
	}
	return nil
}
