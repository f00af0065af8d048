package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

// edge is one allowed move in the order status graph.
type edge struct {
	from, to string
}

// transitions maps each allowed edge to the actor role that may drive it.
// ready -> picked_up and on_the_way -> delivered are absent on purpose: they
// only happen through DriverAssignmentProtocol, which binds the driver
// atomically on Accept and settles payout and loyalty on CompleteDelivery.
var transitions = map[edge]string{
	{models.OrderStatusScheduled, models.OrderStatusPlaced}:    models.RoleSystem,
	{models.OrderStatusPlaced, models.OrderStatusConfirmed}:    models.RoleRestaurant,
	{models.OrderStatusPlaced, models.OrderStatusCancelled}:    models.RoleRestaurant,
	{models.OrderStatusConfirmed, models.OrderStatusPreparing}: models.RoleRestaurant,
	{models.OrderStatusConfirmed, models.OrderStatusCancelled}: models.RoleRestaurant,
	{models.OrderStatusPreparing, models.OrderStatusReady}:     models.RoleRestaurant,
	{models.OrderStatusPickedUp, models.OrderStatusOnTheWay}:   models.RoleDriver,
}

// OrderStateMachine owns the canonical order status graph. Every transition
// is a single conditional store write guarded by the expected prior status,
// so concurrent callers cannot move an order backwards or skip states.
type OrderStateMachine struct {
	store    *repositories.Store
	pricing  *PricingEngine
	loyalty  *LoyaltyLedger
	carts    *CartAggregate
	notifier *Notifier
	events   *EventEmitter
	now      func() time.Time
}

func NewOrderStateMachine(
	store *repositories.Store,
	pricing *PricingEngine,
	loyalty *LoyaltyLedger,
	carts *CartAggregate,
	notifier *Notifier,
	events *EventEmitter,
) *OrderStateMachine {
	return &OrderStateMachine{
		store:    store,
		pricing:  pricing,
		loyalty:  loyalty,
		carts:    carts,
		notifier: notifier,
		events:   events,
		now:      time.Now,
	}
}

// CheckoutOptions carries everything the customer chose at checkout.
type CheckoutOptions struct {
	PromoCode       string
	PointsToRedeem  int64
	PaymentMethod   string // "cod", "card", "upi"
	DeliveryAddress string
	Latitude        float64
	Longitude       float64
	Instructions    string
	Scheduled       bool
	ScheduledFor    time.Time
}

// PlaceOrder converts the customer's cart into an order: validates the cart,
// prices the bill, redeems loyalty points, deletes the cart and notifies the
// restaurant and the customer. Validation failures abort before any write.
func (s *OrderStateMachine) PlaceOrder(ctx context.Context, actor models.Actor, opts CheckoutOptions) (*models.Order, error) {
	if !actor.Is(models.RoleCustomer) {
		return nil, fmt.Errorf("role %q cannot place orders: %w", actor.Role, models.ErrInvalidTransition)
	}
	if opts.DeliveryAddress == "" {
		return nil, models.ErrEmptyAddress
	}

	cart, err := s.carts.Get(ctx, actor)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}

	items := models.FilterValidItems(cart.Items)
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	account, err := s.loyalty.Account(ctx, actor.Email)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Quote(items, opts.PromoCode, opts.PointsToRedeem, account.AvailablePoints)
	if err != nil {
		return nil, err
	}

	status := models.OrderStatusPlaced
	if opts.Scheduled {
		status = models.OrderStatusScheduled
	}
	paymentStatus := models.PaymentStatusPaid
	if opts.PaymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}

	now := s.now()
	order := &models.Order{
		ID:                cuid.New(),
		OrderNumber:       orderNumber(now),
		CustomerEmail:     actor.Email,
		CustomerName:      actor.Name,
		RestaurantID:      cart.RestaurantID,
		RestaurantName:    cart.RestaurantName,
		Items:             items,
		Subtotal:          quote.Subtotal,
		DeliveryFee:       quote.DeliveryFee,
		Taxes:             quote.Taxes,
		Discount:          quote.Discount + quote.PointsDiscount,
		PointsEarned:      s.pricing.PointsEarned(quote.Total),
		PointsRedeemed:    quote.PointsRedeemed,
		TotalAmount:       quote.Total,
		PaymentMethod:     opts.PaymentMethod,
		PaymentStatus:     paymentStatus,
		OrderStatus:       status,
		IsScheduled:       opts.Scheduled,
		ScheduledFor:      opts.ScheduledFor,
		DeliveryAddress:   opts.DeliveryAddress,
		DeliveryLatitude:  opts.Latitude,
		DeliveryLongitude: opts.Longitude,
		Instructions:      opts.Instructions,
		PlacedAt:          now,
	}

	if err := s.store.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("creating order %s: %w", order.OrderNumber, err)
	}

	// Redeemed points are debited at placement; the balance may have moved
	// since the quote, in which case the order is cancelled again rather
	// than leaving a bill the points no longer cover.
	if err := s.loyalty.Redeem(ctx, order); err != nil {
		if _, cErr := s.store.Orders.UpdateStatusIf(ctx, order.ID, status, models.OrderStatusCancelled); cErr != nil {
			log.Printf("Failed to cancel order %s after redemption failure: %v", order.OrderNumber, cErr)
		}
		return nil, err
	}
	if order.PointsRedeemed > 0 {
		s.events.Emit(TopicLoyaltyPosted, LoyaltyPostedEvent{
			BaseEvent: baseEvent(TopicLoyaltyPosted, order),
			Points:    -order.PointsRedeemed,
			Kind:      models.PointsTypeRedeemed,
		})
	}

	if err := s.store.Carts.Delete(ctx, cart.ID); err != nil {
		log.Printf("Failed to delete cart %s after checkout: %v", cart.ID, err)
	}

	s.notifier.Notify(ctx, order.RestaurantID,
		"New Order Received",
		fmt.Sprintf("New order #%s from %s - %d items - Rs %d", order.OrderNumber, order.CustomerName, len(items), order.TotalAmount),
		models.NotificationTypeOrder, orderData(order))
	if opts.Scheduled {
		s.notifier.Notify(ctx, order.CustomerEmail,
			"Order Scheduled",
			fmt.Sprintf("Your order #%s is scheduled for %s", order.OrderNumber, opts.ScheduledFor.Format("Jan 2 15:04")),
			models.NotificationTypeOrder, orderData(order))
	} else {
		s.notifier.Notify(ctx, order.CustomerEmail,
			"Order Placed",
			fmt.Sprintf("Your order #%s has been placed successfully", order.OrderNumber),
			models.NotificationTypeOrder, orderData(order))
	}

	s.events.Emit(TopicOrderPlaced, OrderPlacedEvent{
		BaseEvent:   baseEvent(TopicOrderPlaced, order),
		Status:      order.OrderStatus,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(items),
		IsScheduled: order.IsScheduled,
	})

	return order, nil
}

// Transition advances an order along one edge of the status graph. The move
// is rejected when the order is not in the expected state, when the actor's
// role does not own the edge, or when a concurrent caller won the write.
func (s *OrderStateMachine) Transition(ctx context.Context, actor models.Actor, orderID, next string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.OrderStatus

	role, allowed := transitions[edge{from, next}]
	if !allowed {
		return nil, models.TransitionError(orderID, from, next)
	}
	if !actor.Is(role) && !actor.Privileged() {
		return nil, fmt.Errorf("role %q may not move order %s to %s: %w", actor.Role, orderID, next, models.ErrInvalidTransition)
	}
	if role == models.RoleDriver && !actor.Privileged() && order.DriverEmail != actor.Email {
		return nil, fmt.Errorf("order %s is assigned to another driver: %w", orderID, models.ErrInvalidTransition)
	}

	return s.advance(ctx, order, next)
}

// deliver is the on_the_way -> delivered edge. It is kept out of the public
// transition table: DriverAssignmentProtocol.CompleteDelivery drives it, so a
// delivery always clears the driver's busy flag and settles payout and
// loyalty points.
func (s *OrderStateMachine) deliver(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.OrderStatusOnTheWay {
		return nil, models.TransitionError(orderID, order.OrderStatus, models.OrderStatusDelivered)
	}
	if !actor.Privileged() && order.DriverEmail != actor.Email {
		return nil, fmt.Errorf("order %s is assigned to another driver: %w", orderID, models.ErrInvalidTransition)
	}

	return s.advance(ctx, order, models.OrderStatusDelivered)
}

// advance performs the conditional status write plus the follow-up
// notification and event. Callers have already authorized the move.
func (s *OrderStateMachine) advance(ctx context.Context, order *models.Order, next string) (*models.Order, error) {
	from := order.OrderStatus

	ok, err := s.store.Orders.UpdateStatusIf(ctx, order.ID, from, next)
	if err != nil {
		return nil, fmt.Errorf("updating order %s status: %w", order.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("order %s left state %s concurrently: %w", order.ID, from, models.ErrConflict)
	}

	order.OrderStatus = next
	if next == models.OrderStatusDelivered {
		order.DeliveredAt = s.now()
	}

	s.notifyTransition(ctx, order, next)
	s.events.Emit(TopicOrderStatus, OrderStatusChangedEvent{
		BaseEvent: baseEvent(TopicOrderStatus, order),
		From:      from,
		To:        next,
	})

	return order, nil
}

// Cancel moves an order to cancelled. Restaurants may reject their own
// placed or confirmed orders; admin and system may force-cancel any order
// that has not reached a terminal state.
func (s *OrderStateMachine) Cancel(ctx context.Context, actor models.Actor, orderID, reason string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.OrderStatus

	if order.Terminal() {
		return nil, models.TransitionError(orderID, from, models.OrderStatusCancelled)
	}
	if !actor.Privileged() {
		if _, allowed := transitions[edge{from, models.OrderStatusCancelled}]; !allowed || !actor.Is(models.RoleRestaurant) {
			return nil, models.TransitionError(orderID, from, models.OrderStatusCancelled)
		}
	}

	ok, err := s.store.Orders.UpdateStatusIf(ctx, orderID, from, models.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancelling order %s: %w", orderID, err)
	}
	if !ok {
		return nil, fmt.Errorf("order %s left state %s concurrently: %w", orderID, from, models.ErrConflict)
	}

	order.OrderStatus = models.OrderStatusCancelled
	order.CancelledAt = s.now()

	// A force-cancel mid-delivery strands the assigned driver unless the
	// busy flag is released here.
	if order.DriverID != "" {
		if _, err := s.store.Drivers.SetBusyIf(ctx, order.DriverID, true, false); err != nil {
			log.Printf("Failed to release driver %s after cancelling order %s: %v", order.DriverEmail, order.OrderNumber, err)
		}
	}

	message := fmt.Sprintf("Your order #%s has been cancelled", order.OrderNumber)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	s.notifier.Notify(ctx, order.CustomerEmail, "Order Cancelled", message, models.NotificationTypeOrder, orderData(order))

	s.events.Emit(TopicOrderCancelled, OrderCancelledEvent{
		BaseEvent: baseEvent(TopicOrderCancelled, order),
		From:      from,
		Reason:    reason,
	})

	return order, nil
}

// PromoteScheduled moves every scheduled order whose time has come to
// placed. Invoked by the polling worker; returns how many were promoted.
func (s *OrderStateMachine) PromoteScheduled(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.Orders.ListScheduledDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing due scheduled orders: %w", err)
	}

	promoted := 0
	for _, order := range due {
		ok, err := s.store.Orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusScheduled, models.OrderStatusPlaced)
		if err != nil {
			return promoted, fmt.Errorf("promoting order %s: %w", order.OrderNumber, err)
		}
		if !ok {
			continue // another worker got there first
		}
		order.OrderStatus = models.OrderStatusPlaced
		promoted++

		s.notifier.Notify(ctx, order.RestaurantID,
			"Scheduled Order Due",
			fmt.Sprintf("Scheduled order #%s is now due for preparation", order.OrderNumber),
			models.NotificationTypeOrder, orderData(order))
		s.events.Emit(TopicOrderStatus, OrderStatusChangedEvent{
			BaseEvent: baseEvent(TopicOrderStatus, order),
			From:      models.OrderStatusScheduled,
			To:        models.OrderStatusPlaced,
		})
	}
	return promoted, nil
}

// MarkReviewed flags a delivered order as reviewed by its customer.
func (s *OrderStateMachine) MarkReviewed(ctx context.Context, actor models.Actor, orderID string) error {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.CustomerEmail != actor.Email {
		return models.ErrNotFound
	}
	if order.OrderStatus != models.OrderStatusDelivered {
		return models.TransitionError(orderID, order.OrderStatus, "reviewed")
	}
	return s.store.Orders.SetReviewed(ctx, orderID)
}

func (s *OrderStateMachine) notifyTransition(ctx context.Context, order *models.Order, next string) {
	switch next {
	case models.OrderStatusConfirmed:
		s.notifier.Notify(ctx, order.CustomerEmail, "Order Confirmed",
			fmt.Sprintf("%s has confirmed your order and will start preparing soon", order.RestaurantName),
			models.NotificationTypeOrder, orderData(order))
	case models.OrderStatusPreparing:
		s.notifier.Notify(ctx, order.CustomerEmail, "Preparing Your Food",
			fmt.Sprintf("%s is now preparing your order", order.RestaurantName),
			models.NotificationTypeOrder, orderData(order))
	case models.OrderStatusReady:
		s.notifier.Notify(ctx, order.CustomerEmail, "Order Ready for Pickup",
			fmt.Sprintf("Your order from %s is ready and waiting for a delivery partner", order.RestaurantName),
			models.NotificationTypeOrder, orderData(order))
		s.broadcastReady(ctx, order)
	case models.OrderStatusOnTheWay:
		s.notifier.Notify(ctx, order.CustomerEmail, "On the Way",
			fmt.Sprintf("%s is on the way with your order", order.DriverName),
			models.NotificationTypeDelivery, orderData(order))
	case models.OrderStatusDelivered:
		s.notifier.Notify(ctx, order.CustomerEmail, "Order Delivered",
			fmt.Sprintf("Your order #%s has been delivered. Enjoy your meal!", order.OrderNumber),
			models.NotificationTypeDelivery, orderData(order))
	}
}

// broadcastReady fans a pickup notification out to every online, approved
// driver. Failures are per-driver and never block the transition.
func (s *OrderStateMachine) broadcastReady(ctx context.Context, order *models.Order) {
	drivers, err := s.store.Drivers.ListOnlineApproved(ctx)
	if err != nil {
		log.Printf("Failed to list drivers for ready broadcast of order %s: %v", order.OrderNumber, err)
		return
	}
	for _, d := range drivers {
		s.notifier.Notify(ctx, d.Email, "New Delivery Available",
			fmt.Sprintf("Order #%s from %s is ready for pickup. Rs %d", order.OrderNumber, order.RestaurantName, order.TotalAmount),
			models.NotificationTypeDelivery, orderData(order))
	}
}

func orderNumber(t time.Time) string {
	millis := fmt.Sprintf("%d", t.UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return "SE" + millis
}

func orderData(order *models.Order) map[string]string {
	return map[string]string{"order_id": order.ID}
}
