package cli

import (
	"fmt"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func NewRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "elevate",
		Short:         "Elevate lounge booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(logger))
	root.AddCommand(newSlotsCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func Execute(logger *slog.Logger) {
	if err := NewRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "elevate %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}
