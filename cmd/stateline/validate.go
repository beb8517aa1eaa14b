package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the status graph for consistency",
	Long:  `Resolves every registered status and reports dead edges, unregistered targets and missing descriptors.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			opts.Dir = args[0]
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			if err := cli.RunWatch(sigCtx, opts); err != nil {
				fmt.Printf("Watcher failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := cli.RunValidate(cmd.Context(), opts); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Re-validate on descriptor changes")
}
