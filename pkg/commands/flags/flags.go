// Package flags holds the flags shared by several chainballotx commands. Flags used by a single
// command are declared next to it.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Names of the persistent root flags.
const (
	ConfigFlag   = "config"
	NetworkFlag  = "network"
	LogLevelFlag = "log-level"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// MustInt returns the int value, ignoring the error.
func MustInt(i int, _ error) int { return i }

// Global adds the persistent --config, --network and --log-level flags to the root command.
// Every subcommand reads them through cmd.Flags().
func Global(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(ConfigFlag, "c", "", "Path to the YAML config file")
	cmd.PersistentFlags().StringP(NetworkFlag, "n", "", "Network name, overrides the config (devnet, testnet, mainnet)")
	cmd.PersistentFlags().String(LogLevelFlag, "", "Log level (debug, info, warn, error)")
}

// Sender adds the required --sender flag, the bech32 address that will sign the transaction.
func Sender(cmd *cobra.Command) {
	cmd.Flags().StringP("sender", "s", "", "Address of the signer (required)")
	_ = cmd.MarkFlagRequired("sender")
}

// Address adds the --address flag. When required is set the command fails without it.
func Address(cmd *cobra.Command, required bool) {
	usage := "Wallet address"
	if required {
		usage += " (required)"
	}
	cmd.Flags().StringP("address", "a", "", usage)
	if required {
		_ = cmd.MarkFlagRequired("address")
	}
}

// Output adds the --out/-o flag for writing the result to a file instead of stdout.
// --output is accepted as an alias.
func Output(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "Write the output to this file")

	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "output" {
			return pflag.NormalizedName("out")
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}

// JSON adds the --json flag for machine readable output.
func JSON(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
