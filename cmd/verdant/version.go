package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/verdant"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of verdant",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "verdant version %s\n", strings.TrimSpace(verdant.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
