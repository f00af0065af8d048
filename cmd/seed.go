package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
	"github.com/smarteats/orderflow/internal/factories"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
	"github.com/smarteats/orderflow/internal/repositories/postgres"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with restaurants, menus, drivers and customers",
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

		if err := runSeed(ctx, postgres.NewStore(pool), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, store *repositories.Store, cfg *models.Config) error {
	existing, err := store.Restaurants.Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("Database already holds %d restaurants, skipping seed", existing)
		return nil
	}

	restaurantFactory := &factories.RestaurantFactory{}
	menuFactory := &factories.MenuItemFactory{}
	driverFactory := &factories.DriverFactory{}

	bar := progressbar.Default(int64(cfg.Seed.Restaurants), "seeding restaurants")
	restaurants := make([]*models.Restaurant, 0, cfg.Seed.Restaurants)
	menuItems := make([]*models.MenuItem, 0, cfg.Seed.Restaurants*cfg.Seed.MenuItemsPerPlace)
	for i := 0; i < cfg.Seed.Restaurants; i++ {
		restaurant := restaurantFactory.CreateRestaurant(cfg)
		for j := 0; j < cfg.Seed.MenuItemsPerPlace; j++ {
			item := menuFactory.CreateMenuItem(restaurant)
			restaurant.MenuItems = append(restaurant.MenuItems, item.ID)
			menuItems = append(menuItems, item)
		}
		restaurants = append(restaurants, restaurant)
		bar.Add(1)
	}
	if err := store.Restaurants.BulkCreate(ctx, restaurants); err != nil {
		return fmt.Errorf("failed to seed restaurants: %w", err)
	}
	if err := store.MenuItems.BulkCreate(ctx, menuItems); err != nil {
		return fmt.Errorf("failed to seed menu items: %w", err)
	}

	bar = progressbar.Default(int64(cfg.Seed.Drivers), "seeding drivers")
	drivers := make([]*models.Driver, 0, cfg.Seed.Drivers)
	for i := 0; i < cfg.Seed.Drivers; i++ {
		drivers = append(drivers, driverFactory.CreateDriver(cfg))
		bar.Add(1)
	}
	if err := store.Drivers.BulkCreate(ctx, drivers); err != nil {
		return fmt.Errorf("failed to seed drivers: %w", err)
	}

	bar = progressbar.Default(int64(cfg.Seed.Customers), "seeding loyalty accounts")
	for i := 0; i < cfg.Seed.Customers; i++ {
		account := &models.LoyaltyPoints{
			ID:        cuid.New(),
			UserEmail: fmt.Sprintf("customer%03d@smarteats.in", i+1),
			Tier:      models.TierBronze,
			UpdatedAt: time.Now(),
		}
		if err := store.Loyalty.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to seed loyalty accounts: %w", err)
		}
		bar.Add(1)
	}

	log.Printf("Seeded %d restaurants, %d menu items, %d drivers, %d customers",
		len(restaurants), len(menuItems), len(drivers), cfg.Seed.Customers)
	return nil
}
