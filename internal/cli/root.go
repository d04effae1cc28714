// Package cli provides the wordimize command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags in main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCmd builds a fresh command tree. Cobra commands keep flag state
// between runs, so tests build their own.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wordimize",
		Short: "Make as many words as you can from one source word",
		Long: `Wordimize picks a source word. Make words from its letters:
at least three letters, each letter used no more often than it appears in
the source word, no repeats, real words only. Six wrong answers in one
round and you get a new source word.

Run "wordimize serve" for the HTTP/websocket API or "wordimize play" to
play in the terminal.`,
		SilenceUsage: true,
	}
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	root.SetVersionTemplate("wordimize {{.Version}}\n")
	root.PersistentFlags().StringP("config", "c", "", "YAML config file (optional)")

	root.AddCommand(newServeCmd(), newPlayCmd(), newVersionCmd())
	return root
}

// Execute runs the command tree.
func Execute() error {
	return NewRootCmd().Execute()
}

func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	return p
}
