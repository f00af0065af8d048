package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories/postgres"
	"github.com/smarteats/orderflow/internal/worker"
	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Run the worker that moves due scheduled orders into the live pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		app, err := wireEngine(postgres.NewStore(pool), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error wiring engine: %v\n", err)
			os.Exit(1)
		}
		defer app.events.Close()

		sched := worker.NewScheduler(app.machine, cfg.Worker.PollInterval)
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}
