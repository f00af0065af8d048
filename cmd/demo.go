package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/smarteats/orderflow/internal/engine"
	"github.com/smarteats/orderflow/internal/factories"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
	"github.com/smarteats/orderflow/internal/repositories/memory"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a full order lifecycle in memory and print every event",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := runDemo(context.Background(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Demo failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

type appEngine struct {
	store      *repositories.Store
	pricing    *engine.PricingEngine
	loyalty    *engine.LoyaltyLedger
	carts      *engine.CartAggregate
	machine    *engine.OrderStateMachine
	assignment *engine.DriverAssignmentProtocol
	events     *engine.EventEmitter
}

// wireEngine assembles the full pipeline on top of any store.
func wireEngine(store *repositories.Store, cfg *models.Config) (*appEngine, error) {
	out, err := engine.NewOutputDestination(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	events := engine.NewEventEmitter(out, cfg.Kafka.TopicPrefix)
	pricing := engine.NewPricingEngine(cfg.Pricing)
	loyalty := engine.NewLoyaltyLedger(store.Loyalty)
	carts := engine.NewCartAggregate(store.Carts)
	notifier := engine.NewNotifier(store.Notifications)
	machine := engine.NewOrderStateMachine(store, pricing, loyalty, carts, notifier, events)
	assignment := engine.NewDriverAssignmentProtocol(store, machine, loyalty, events, cfg.Assignment)

	return &appEngine{
		store:      store,
		pricing:    pricing,
		loyalty:    loyalty,
		carts:      carts,
		machine:    machine,
		assignment: assignment,
		events:     events,
	}, nil
}

func runDemo(ctx context.Context, cfg *models.Config) error {
	store := memory.NewStore()
	app, err := wireEngine(store, cfg)
	if err != nil {
		return err
	}
	defer app.events.Close()

	restaurantFactory := &factories.RestaurantFactory{}
	menuFactory := &factories.MenuItemFactory{}
	driverFactory := &factories.DriverFactory{}

	restaurant := restaurantFactory.CreateRestaurant(cfg)
	if err := store.Restaurants.Create(ctx, restaurant); err != nil {
		return err
	}
	var items []*models.MenuItem
	for i := 0; i < 3; i++ {
		item := menuFactory.CreateMenuItem(restaurant)
		if err := store.MenuItems.Create(ctx, item); err != nil {
			return err
		}
		items = append(items, item)
	}

	driver := driverFactory.CreateDriver(cfg)
	driver.Status = models.DriverStatusApproved
	driver.IsOnline = true
	if err := store.Drivers.Create(ctx, driver); err != nil {
		return err
	}

	customer := models.Actor{Email: "demo@smarteats.in", Name: "Demo Customer", Role: models.RoleCustomer}
	restaurantActor := models.Actor{Email: restaurant.Email, Name: restaurant.Name, Role: models.RoleRestaurant}
	driverActor := models.Actor{Email: driver.Email, Name: driver.Name, Role: models.RoleDriver}

	for _, item := range items {
		line := models.LineItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   1,
			ImageURL:   item.ImageURL,
		}
		if _, err := app.carts.AddItem(ctx, customer, restaurant, line); err != nil {
			return err
		}
	}

	order, err := app.machine.PlaceOrder(ctx, customer, engine.CheckoutOptions{
		PromoCode:       "SAVE20",
		PaymentMethod:   models.PaymentMethodCOD,
		DeliveryAddress: "42 Demo Street, " + cfg.CityName,
		Latitude:        cfg.CityLat,
		Longitude:       cfg.CityLon,
	})
	if err != nil {
		return err
	}
	log.Printf("Placed order %s: subtotal=%d discount=%d taxes=%d total=%d",
		order.OrderNumber, order.Subtotal, order.Discount, order.Taxes, order.TotalAmount)

	for _, next := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
	} {
		if order, err = app.machine.Transition(ctx, restaurantActor, order.ID, next); err != nil {
			return err
		}
		log.Printf("Order %s is now %s", order.OrderNumber, order.OrderStatus)
		time.Sleep(100 * time.Millisecond)
	}

	available, err := app.assignment.ListAvailable(ctx, driver)
	if err != nil {
		return err
	}
	log.Printf("Driver %s sees %d available orders", driver.Name, len(available))

	if order, err = app.assignment.Accept(ctx, driver, order.ID); err != nil {
		return err
	}
	log.Printf("Driver %s accepted order %s", driver.Name, order.OrderNumber)

	if order, err = app.machine.Transition(ctx, driverActor, order.ID, models.OrderStatusOnTheWay); err != nil {
		return err
	}
	if order, err = app.assignment.CompleteDelivery(ctx, driver, order.ID); err != nil {
		return err
	}
	log.Printf("Order %s delivered, customer earned %d points", order.OrderNumber, order.PointsEarned)

	account, err := app.loyalty.Account(ctx, customer.Email)
	if err != nil {
		return err
	}
	log.Printf("Loyalty balance for %s: %d points (%s tier)", customer.Email, account.AvailablePoints, account.Tier)
	return nil
}
