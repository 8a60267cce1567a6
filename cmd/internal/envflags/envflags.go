package envflags

import (
	"os"

	"github.com/urfave/cli/v3"
)

// GetEnvOrFlag returns the command line flag value, or falls back to the environment variable if the flag is empty
func GetEnvOrFlag(cmd *cli.Command, flagName, envName string) string {
	value := cmd.String(flagName)
	if value == "" {
		value = os.Getenv(envName)
	}
	return value
}

// BoolFlagOr returns the flag value when it was set explicitly, else
// fallback.
func BoolFlagOr(cmd *cli.Command, flagName string, fallback *bool) bool {
	if cmd.IsSet(flagName) {
		return cmd.Bool(flagName)
	}
	return fallback != nil && *fallback
}

// StringFlagOr returns the flag value when it was set explicitly, then
// fallback when that is non-empty, then the flag's default.
func StringFlagOr(cmd *cli.Command, flagName, fallback string) string {
	if cmd.IsSet(flagName) || fallback == "" {
		return cmd.String(flagName)
	}
	return fallback
}
