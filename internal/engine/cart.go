package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

// CartAggregate owns the per-customer staging cart. One active cart per
// customer; all lines belong to a single restaurant.
type CartAggregate struct {
	carts repositories.CartRepository
}

func NewCartAggregate(carts repositories.CartRepository) *CartAggregate {
	return &CartAggregate{carts: carts}
}

func (c *CartAggregate) Get(ctx context.Context, actor models.Actor) (*models.Cart, error) {
	return c.carts.GetByCustomer(ctx, actor.Email)
}

// AddItem merges the line into the customer's cart, creating the cart on the
// first add. Items from a different restaurant are rejected with
// ErrRestaurantMismatch; the caller confirms and uses ReplaceCart instead.
func (c *CartAggregate) AddItem(ctx context.Context, actor models.Actor, restaurant *models.Restaurant, item models.LineItem) (*models.Cart, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	cart, err := c.carts.GetByCustomer(ctx, actor.Email)
	if errors.Is(err, models.ErrNotFound) {
		cart = &models.Cart{
			ID:             cuid.New(),
			CustomerEmail:  actor.Email,
			RestaurantID:   restaurant.ID,
			RestaurantName: restaurant.Name,
			Items:          []models.LineItem{item},
			UpdatedAt:      time.Now(),
		}
		cart.RecalculateSubtotal()
		if err := c.carts.Create(ctx, cart); err != nil {
			return nil, fmt.Errorf("creating cart: %w", err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}

	if cart.RestaurantID != restaurant.ID {
		return nil, fmt.Errorf("cart belongs to %s, item from %s: %w",
			cart.RestaurantName, restaurant.Name, models.ErrRestaurantMismatch)
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == item.MenuItemID && cart.Items[i].CustomizationKey == item.CustomizationKey {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	cart.RecalculateSubtotal()
	cart.UpdatedAt = time.Now()
	if err := c.carts.Update(ctx, cart); err != nil {
		return nil, fmt.Errorf("updating cart: %w", err)
	}
	return cart, nil
}

// ReplaceCart drops any existing cart and starts a new one for the given
// restaurant. Used after the customer confirms a restaurant switch.
func (c *CartAggregate) ReplaceCart(ctx context.Context, actor models.Actor, restaurant *models.Restaurant, item models.LineItem) (*models.Cart, error) {
	if err := c.Clear(ctx, actor); err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return c.AddItem(ctx, actor, restaurant, item)
}

// SetQuantity adjusts one line. Quantity <= 0 removes the line; a cart with
// no remaining valid lines is deleted.
func (c *CartAggregate) SetQuantity(ctx context.Context, actor models.Actor, menuItemID, customizationKey string, quantity int) (*models.Cart, error) {
	cart, err := c.carts.GetByCustomer(ctx, actor.Email)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	for _, it := range cart.Items {
		if it.MenuItemID == menuItemID && it.CustomizationKey == customizationKey {
			if quantity <= 0 {
				continue
			}
			it.Quantity = quantity
		}
		items = append(items, it)
	}
	cart.Items = items

	if cart.IsEmpty() {
		if err := c.carts.Delete(ctx, cart.ID); err != nil {
			return nil, fmt.Errorf("deleting empty cart: %w", err)
		}
		return nil, nil
	}

	cart.RecalculateSubtotal()
	cart.UpdatedAt = time.Now()
	if err := c.carts.Update(ctx, cart); err != nil {
		return nil, fmt.Errorf("updating cart: %w", err)
	}
	return cart, nil
}

func (c *CartAggregate) Clear(ctx context.Context, actor models.Actor) error {
	cart, err := c.carts.GetByCustomer(ctx, actor.Email)
	if err != nil {
		return err
	}
	return c.carts.Delete(ctx, cart.ID)
}

// Reorder rebuilds a cart from a past order's item snapshot. Deterministic:
// reordering the same order twice yields identical carts.
func (c *CartAggregate) Reorder(ctx context.Context, actor models.Actor, order *models.Order) (*models.Cart, error) {
	items := order.ValidItems()
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	if err := c.Clear(ctx, actor); err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	cart := &models.Cart{
		ID:             cuid.New(),
		CustomerEmail:  actor.Email,
		RestaurantID:   order.RestaurantID,
		RestaurantName: order.RestaurantName,
		Items:          append([]models.LineItem(nil), items...),
		UpdatedAt:      time.Now(),
	}
	cart.RecalculateSubtotal()
	if err := c.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("creating cart from order %s: %w", order.OrderNumber, err)
	}
	return cart, nil
}
