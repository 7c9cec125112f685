package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/internal/cli"
	httpAdapter "github.com/aretw0/sensact/pkg/adapters/http"
	"github.com/aretw0/sensact/pkg/observability"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the rule sets and goal runs as a JSON API over HTTP, with
Prometheus metrics on /metrics and reload notifications on /events.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		port, _ := cmd.Flags().GetString("port")
		model, _ := cmd.Flags().GetString("model")
		logger := cli.CreateLogger(opts.Debug, opts.LogFormat)

		// 1. Metrics
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		// 2. Engine
		engine, closeAll, err := cli.NewEngine(opts, logger, sensact.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closeAll()

		// 3. Handler
		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
		}
		if model != "" {
			handlerOpts = append(handlerOpts, httpAdapter.WithRoot(modelRoot(model)))
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(engine, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Sensact Server on %s\n", srv.Addr)
			fmt.Printf("Serving rule sets from: %s\n", opts.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding runs a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Sensact Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringP("model", "m", "", "GUI model document runs use when the request carries none")
}

// modelRoot re-reads the model for every run so each run starts from the
// document's initial state.
func modelRoot(path string) func(context.Context) (ports.Element, error) {
	return func(context.Context) (ports.Element, error) {
		return cli.LoadModel(path)
	}
}

