package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "rotated",
	Short:   "rotated issues and rotates refresh sessions",
	Version: Version,
	Long: `rotated serves the refresh, archive and logout endpoints of the goRotate
session lifecycle manager, backed by Redis or a local bbolt file.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
