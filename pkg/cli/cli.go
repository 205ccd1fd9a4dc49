// pkg/cli/cli.go
//
// Flag helpers shared by the retire command tree. Flags are bound into a
// viper instance so a single lookup resolves flag, environment, config file
// and default in that order.
package cli

import (
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// KeyFor maps a flag name onto its viper key ("journal-dir" -> "journal_dir").
func KeyFor(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
}

// AddStringFlag adds a string flag.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string) {
	cmd.Flags().StringP(name, shorthand, def, help)
}

// AddDurationFlag adds a duration flag.
func AddDurationFlag(cmd *cobra.Command, name string, def time.Duration, help string) {
	cmd.Flags().Duration(name, def, help)
}

// BindFlagsToViper binds every flag on cmd, local and inherited, to v.
// Binding continues past failures so all of them are reported together.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(KeyFor(f.Name), f); err != nil {
			result = multierror.Append(result, cerr.Wrapf(err, "bind flag --%s", f.Name))
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return result
}

// SetViperEnvPrefix lets v resolve keys from PREFIX_KEY environment variables.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}
