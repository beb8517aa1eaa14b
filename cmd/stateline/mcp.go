package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/internal/cli"
	"github.com/aretw0/stateline/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the engine as an MCP server",
	Long:  `Serves chain planning and status-graph introspection over the model context protocol, on stdio or SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		port, _ := cmd.Flags().GetInt("sse-port")

		logger := cli.CreateLogger(opts.Debug)
		engine, err := cli.CreateEngine(opts, logger)
		if err != nil {
			fmt.Printf("Error initializing stateline: %v\n", err)
			os.Exit(1)
		}

		server := mcp.NewServer(engine, strings.TrimSpace(stateline.Version))
		if port > 0 {
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			err = server.ServeSSE(sigCtx, port)
		} else {
			err = server.ServeStdio()
		}
		if err != nil {
			fmt.Printf("MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("sse-port", 0, "Serve over SSE on this port instead of stdio")
}
