// Package cmd implements the falopa command-line interface (§6): a single
// `falopa <file>` invocation that parses, type-checks and evaluates a
// source file with the strong strategy, printing one solution per line
// with an interactive continuation prompt.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "falopa [file]",
	Short: "falopa runs a dependently-flavoured logic-functional program",
	Long: `falopa reads a source file, parses its mixfix surface syntax, kind-
and type-checks it, then evaluates it with the strong strategy, printing
each solution and waiting for an acknowledgement ("; ") before searching
for the next one. Output ends with "done." once the search is exhausted.`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

// Execute runs the root command; main delegates to this and turns any
// returned error into a non-zero exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
