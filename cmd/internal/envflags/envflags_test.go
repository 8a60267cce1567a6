package envflags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func run(t *testing.T, args []string, fn func(cmd *cli.Command)) {
	t.Helper()
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.StringFlag{Name: "addr", Value: ":8080"},
			&cli.BoolFlag{Name: "reflection"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fn(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestGetEnvOrFlag(t *testing.T) {
	t.Setenv("TEST_CONFIG", "from-env.yaml")

	run(t, nil, func(cmd *cli.Command) {
		require.Equal(t, "from-env.yaml", GetEnvOrFlag(cmd, "config", "TEST_CONFIG"))
	})
	run(t, []string{"--config", "from-flag.yaml"}, func(cmd *cli.Command) {
		require.Equal(t, "from-flag.yaml", GetEnvOrFlag(cmd, "config", "TEST_CONFIG"))
	})
}

func TestFlagOr(t *testing.T) {
	yes := true
	no := false

	run(t, nil, func(cmd *cli.Command) {
		require.Equal(t, ":8080", StringFlagOr(cmd, "addr", ""))
		require.Equal(t, ":9000", StringFlagOr(cmd, "addr", ":9000"))
		require.False(t, BoolFlagOr(cmd, "reflection", nil))
		require.True(t, BoolFlagOr(cmd, "reflection", &yes))
	})
	run(t, []string{"--addr", ":7000", "--reflection"}, func(cmd *cli.Command) {
		require.Equal(t, ":7000", StringFlagOr(cmd, "addr", ":9000"))
		require.True(t, BoolFlagOr(cmd, "reflection", &no))
	})
}
