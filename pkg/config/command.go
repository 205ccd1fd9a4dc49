package config

import (
	"github.com/CodeMonkeyCybersecurity/retire/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Persistent flags registered on the root command.
const (
	FlagConfig  = "config"
	FlagEnvFile = "env-file"
)

// LoadForCommand loads configuration with cmd's flags taking precedence.
func LoadForCommand(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	if err := cli.BindFlagsToViper(cmd, v); err != nil {
		return nil, retire_err.NewValidationError("flags could not be bound", err)
	}
	return Load(v, flagValue(cmd, FlagConfig), flagValue(cmd, FlagEnvFile))
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}
