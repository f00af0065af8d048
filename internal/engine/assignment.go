package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

// DriverAssignmentProtocol matches an available driver to a ready order.
// A driver holds at most one active delivery: the busy flag is reserved
// first, then the order is claimed with a single conditional write, and the
// flag is rolled back when another driver wins the race.
type DriverAssignmentProtocol struct {
	store   *repositories.Store
	machine *OrderStateMachine
	loyalty *LoyaltyLedger
	events  *EventEmitter
	payout  int64
}

func NewDriverAssignmentProtocol(
	store *repositories.Store,
	machine *OrderStateMachine,
	loyalty *LoyaltyLedger,
	events *EventEmitter,
	cfg models.AssignmentConfig,
) *DriverAssignmentProtocol {
	return &DriverAssignmentProtocol{
		store:   store,
		machine: machine,
		loyalty: loyalty,
		events:  events,
		payout:  cfg.DeliveryPayout,
	}
}

// ListAvailable returns ready, unassigned orders visible to the driver.
func (p *DriverAssignmentProtocol) ListAvailable(ctx context.Context, driver *models.Driver) ([]*models.Order, error) {
	if !driver.CanDeliver() {
		return nil, models.ErrDriverNotEligible
	}
	return p.store.Orders.ListUnassignedReady(ctx)
}

// Accept claims a ready order for the driver. On success the order moves to
// picked_up with the driver bound and the driver is busy. Exactly one of two
// racing drivers wins; the loser gets ErrAlreadyAssigned with its busy flag
// restored.
func (p *DriverAssignmentProtocol) Accept(ctx context.Context, driver *models.Driver, orderID string) (*models.Order, error) {
	if !driver.CanDeliver() {
		return nil, models.ErrDriverNotEligible
	}

	reserved, err := p.store.Drivers.SetBusyIf(ctx, driver.ID, false, true)
	if err != nil {
		return nil, fmt.Errorf("reserving driver %s: %w", driver.Email, err)
	}
	if !reserved {
		return nil, models.ErrDriverBusy
	}

	claimed, err := p.store.Orders.AssignDriverIf(ctx, orderID, driver)
	if err != nil {
		p.releaseDriver(ctx, driver)
		return nil, fmt.Errorf("claiming order %s: %w", orderID, err)
	}
	if !claimed {
		// Lost the race: another driver holds the order, or it left ready.
		p.releaseDriver(ctx, driver)
		return nil, models.ErrAlreadyAssigned
	}

	driver.IsBusy = true

	order, err := p.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	p.machine.notifier.Notify(ctx, order.CustomerEmail, "Order Picked Up",
		fmt.Sprintf("%s has picked up your order #%s", driver.Name, order.OrderNumber),
		models.NotificationTypeDelivery, orderData(order))
	p.events.Emit(TopicDriverAssigned, DriverAssignedEvent{
		BaseEvent:   baseEvent(TopicDriverAssigned, order),
		DriverEmail: driver.Email,
		Status:      order.OrderStatus,
	})

	return order, nil
}

// CompleteDelivery finishes the driver's active order: on_the_way ->
// delivered, clears the busy flag, credits the flat payout and posts the
// customer's loyalty accrual.
func (p *DriverAssignmentProtocol) CompleteDelivery(ctx context.Context, driver *models.Driver, orderID string) (*models.Order, error) {
	actor := models.Actor{Email: driver.Email, Name: driver.Name, Role: models.RoleDriver}
	order, err := p.machine.deliver(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if err := p.store.Drivers.RecordDelivery(ctx, driver.ID, p.payout); err != nil {
		return order, fmt.Errorf("recording delivery for driver %s: %w", driver.Email, err)
	}
	driver.IsBusy = false
	driver.TotalDeliveries++
	driver.TotalEarnings += p.payout

	if err := p.loyalty.Accrue(ctx, order); err != nil {
		// The delivery stands; the accrual is retried by the caller.
		log.Printf("Failed to accrue points for order %s: %v", order.OrderNumber, err)
	} else if order.PointsEarned > 0 {
		p.events.Emit(TopicLoyaltyPosted, LoyaltyPostedEvent{
			BaseEvent: baseEvent(TopicLoyaltyPosted, order),
			Points:    order.PointsEarned,
			Kind:      models.PointsTypeEarned,
		})
	}

	p.events.Emit(TopicOrderDelivered, OrderDeliveredEvent{
		BaseEvent:    baseEvent(TopicOrderDelivered, order),
		Payout:       p.payout,
		PointsEarned: order.PointsEarned,
	})

	return order, nil
}

// releaseDriver is the compensating action for a failed claim. Losing it is
// logged loudly: a stuck busy flag blocks the driver until support clears it.
func (p *DriverAssignmentProtocol) releaseDriver(ctx context.Context, driver *models.Driver) {
	if _, err := p.store.Drivers.SetBusyIf(ctx, driver.ID, true, false); err != nil {
		log.Printf("Failed to release busy flag for driver %s: %v", driver.Email, err)
	}
}
