package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline/internal/cli"
)

var planCmd = &cobra.Command{
	Use:   "plan <target>",
	Short: "Resolve the prerequisite chain toward a target status",
	Long: `Builds the chain of prior statuses and setup actions needed to reach the
target, against the given test data file, without executing anything.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		opts.DataPath, _ = cmd.Flags().GetString("data")
		opts.Event, _ = cmd.Flags().GetString("event")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		if opts.DataPath == "" {
			fmt.Println("Error: --data is required")
			os.Exit(1)
		}
		if err := cli.RunPlan(cmd.Context(), opts, args[0]); err != nil {
			fmt.Printf("Plan failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("data", "d", "", "Path to the test data file")
	planCmd.Flags().StringP("event", "e", "", "Explicit transition event")
	planCmd.Flags().Bool("json", false, "Output the report as JSON")
}
