package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the status graph visualization",
	Long:  `Inspects the descriptor repository and outputs a Mermaid diagram (graph TD) of the status graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			opts.Dir = args[0]
		}
		if err := cli.RunGraph(cmd.Context(), opts); err != nil {
			fmt.Printf("Error generating graph: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
