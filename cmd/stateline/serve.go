package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/stateline/internal/cli"
	"github.com/aretw0/stateline/internal/presentation/tui"
	"github.com/aretw0/stateline/pkg/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the introspection HTTP server",
	Long:  `Exposes registered statuses, descriptor details, dry-run chain plans and metrics over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		port, _ := cmd.Flags().GetString("port")

		logger := cli.CreateLogger(opts.Debug)
		engine, err := cli.CreateEngine(opts, logger)
		if err != nil {
			fmt.Printf("Error initializing stateline: %v\n", err)
			os.Exit(1)
		}

		tui.PrintBanner()
		handler := httpapi.NewHandler(engine, engine.Metrics(), logger)
		srv := &http.Server{Addr: ":" + port, Handler: handler}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Stateline server on %s\n", srv.Addr)
			fmt.Printf("Serving descriptors from: %s\n", opts.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		case <-sigCtx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Stateline server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
