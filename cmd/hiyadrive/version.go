package main

import (
	"fmt"
	"strings"

	"github.com/Myangsun/HiyaDrive"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hiyadrive",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hiyadrive version %s\n", strings.TrimSpace(hiyadrive.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
