package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/smarteats/orderflow/internal/engine"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories/postgres"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive delivered orders to date-partitioned Parquet files",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		store := postgres.NewStore(pool)
		exporter, err := engine.NewArchiveExporter(store.Orders, cfg.Export)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating exporter: %v\n", err)
			os.Exit(1)
		}

		count, err := exporter.Export(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Archived %d delivered orders to %s", count, cfg.Export.Destination)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
