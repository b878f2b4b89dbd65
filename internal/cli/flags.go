package cli

import (
	"github.com/spf13/cobra"
)

// registerKeyFlag adds the repeatable --key flag. Its value is read through
// config.Config.Keys so that env vars and the config file apply as well.
func registerKeyFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("key", "k", nil,
		"YAML key by which the rendered documents are compared, e.g. metadata.namespace (repeatable; default: kind, metadata.name)")
}

// registerInputFlag adds --input for reading manifests from a file.
func registerInputFlag(cmd *cobra.Command, input *string) {
	cmd.Flags().StringVarP(input, "input", "i", "-", `manifest file to read ("-" for stdin)`)
}

// registerOutputFlag adds --output for writing manifests to a file.
func registerOutputFlag(cmd *cobra.Command, output *string, usage string) {
	cmd.Flags().StringVarP(output, "output", "o", "", usage)
}
