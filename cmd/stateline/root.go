package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "stateline",
	Short: "Stateline resolves prerequisite chains between application statuses",
	Long: `Stateline models application behavior as a graph of reachable statuses
and resolves the chain of setup actions needed to bring persisted test
data to any target status, across execution platforms.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the status descriptors")
	rootCmd.PersistentFlags().String("registry", "", "Path to the status registry artifact (default: <dir>/registry.json)")
	rootCmd.PersistentFlags().String("platform", "web", "Execution platform driving this process")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose logging")
}

// optionsFromFlags builds RunOptions from the command's resolved flags.
func optionsFromFlags(cmd *cobra.Command) cli.RunOptions {
	dir, _ := cmd.Flags().GetString("dir")
	registry, _ := cmd.Flags().GetString("registry")
	platform, _ := cmd.Flags().GetString("platform")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.RunOptions{
		Dir:          dir,
		RegistryPath: registry,
		Platform:     platform,
		Debug:        debug,
	}
}
