package reason

import (
	"context"
	"fmt"

	"github.com/inngest/rpcvalidate/pkg/cli/output"
	"github.com/inngest/rpcvalidate/pkg/reason"
	"github.com/urfave/cli/v3"
)

// Code is the JSON form of a converted rule id.
type Code struct {
	RuleID     string `json:"rule_id"`
	ReasonCode string `json:"reason_code"`
	Valid      bool   `json:"valid"`
	Conforms   bool   `json:"conforms"`
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "reason",
		Usage:     "Convert rule ids to reason codes",
		UsageText: "rpcvalidate reason <rule-id>...",
		Description: "Shows the reason code sent for each rule id, eg. " +
			"string.min_len becomes STRING_MIN_LEN, and whether it is well formed.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail if any reason code is malformed or longer than the conventional limit",
			},
		},
		Action: action,
	}
}

func Codes(ruleIDs []string) []Code {
	out := make([]Code, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		code := reason.ToReasonCode(id)
		out = append(out, Code{
			RuleID:     id,
			ReasonCode: code,
			Valid:      reason.IsValid(code),
			Conforms:   reason.Conforms(code),
		})
	}
	return out
}

func action(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one rule id is required")
	}

	codes := Codes(ids)

	w := cmd.Root().Writer
	var err error
	if cmd.Bool("json") {
		err = output.JSON(w, codes)
	} else {
		err = output.TextReasonCodes(w, ids)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("strict") {
		for _, c := range codes {
			if !c.Conforms {
				return fmt.Errorf("rule id %q does not produce a conforming reason code", c.RuleID)
			}
		}
	}
	return nil
}
