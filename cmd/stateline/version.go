package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stateline",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stateline version %s\n", strings.TrimSpace(stateline.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
