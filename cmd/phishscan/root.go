// Package main provides the entry point for the phishscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for phishscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishscan",
		Short: "URL phishing classifier with verdict fusion",
		Long: `Phishscan decides whether a URL is Phishing, Suspicious, or Legitimate.

Three independent sources vote on every URL: a local machine-learning
model over lexical and host features, Google Safe Browsing, and
VirusTotal. The final verdict is the majority vote; when no two sources
agree the URL stays Suspicious.

Reputation lookups require API keys in the GOOGLE_API_KEY and
VIRUSTOTAL_API_KEY environment variables. Without keys the local model
still runs and the missing sources vote Suspicious.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
