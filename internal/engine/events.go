package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/smarteats/orderflow/internal/models"
)

const (
	TopicOrderPlaced    = "order_placed"
	TopicOrderStatus    = "order_status_changed"
	TopicOrderCancelled = "order_cancelled"
	TopicDriverAssigned = "driver_assigned"
	TopicOrderDelivered = "order_delivered"
	TopicLoyaltyPosted  = "loyalty_posted"
)

// BaseEvent is the common envelope for all lifecycle events.
type BaseEvent struct {
	Timestamp     int64  `json:"timestamp"`
	EventType     string `json:"eventType"`
	OrderID       string `json:"orderId,omitempty"`
	OrderNumber   string `json:"orderNumber,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	RestaurantID  string `json:"restaurantId,omitempty"`
	DriverID      string `json:"driverId,omitempty"`
}

type OrderPlacedEvent struct {
	BaseEvent
	Status      string `json:"status"`
	TotalAmount int64  `json:"totalAmount"`
	ItemCount   int    `json:"itemCount"`
	IsScheduled bool   `json:"isScheduled"`
}

type OrderStatusChangedEvent struct {
	BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

type DriverAssignedEvent struct {
	BaseEvent
	DriverEmail string `json:"driverEmail"`
	Status      string `json:"status"`
}

type OrderDeliveredEvent struct {
	BaseEvent
	Payout       int64 `json:"driverPayout"`
	PointsEarned int64 `json:"pointsEarned"`
}

type OrderCancelledEvent struct {
	BaseEvent
	From   string `json:"from"`
	Reason string `json:"reason,omitempty"`
}

type LoyaltyPostedEvent struct {
	BaseEvent
	Points int64  `json:"points"`
	Kind   string `json:"kind"`
}

// EventEmitter serializes lifecycle events onto an OutputDestination. Event
// emission never blocks or fails a transition; write errors are logged.
type EventEmitter struct {
	out         OutputDestination
	topicPrefix string
}

func NewEventEmitter(out OutputDestination, topicPrefix string) *EventEmitter {
	return &EventEmitter{out: out, topicPrefix: topicPrefix}
}

func (e *EventEmitter) Emit(topic string, event interface{}) {
	if e == nil || e.out == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error serializing event for topic %s: %v", topic, err)
		return
	}
	if err := e.out.WriteMessage(e.topic(topic), msg); err != nil {
		log.Printf("Failed to write event to topic %s: %v", topic, err)
	}
}

func (e *EventEmitter) Close() error {
	if e == nil || e.out == nil {
		return nil
	}
	return e.out.Close()
}

func (e *EventEmitter) topic(suffix string) string {
	if e.topicPrefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s_%s", e.topicPrefix, suffix)
}

func baseEvent(eventType string, order *models.Order) BaseEvent {
	return BaseEvent{
		Timestamp:     time.Now().Unix(),
		EventType:     eventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerEmail: order.CustomerEmail,
		RestaurantID:  order.RestaurantID,
		DriverID:      order.DriverID,
	}
}
