package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a status change would skip or revisit
// a state.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the possible states of an order. Orders only move forward
// through the sequence below; an order whose ingredients are insufficient stops
// at StatusIngredientsChecked.
type Status string

const (
	StatusInitiated          Status = "initiated"
	StatusIngredientsChecked Status = "ingredients_checked"
	StatusSubmitted          Status = "submitted"
	StatusTypeDecided        Status = "type_decided"
	StatusCompleted          Status = "completed"
)

var statusSequence = []Status{
	StatusInitiated,
	StatusIngredientsChecked,
	StatusSubmitted,
	StatusTypeDecided,
	StatusCompleted,
}

func (s Status) rank() int {
	for i, st := range statusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Next returns the status that immediately follows s, or false for the
// terminal status.
func (s Status) Next() (Status, bool) {
	r := s.rank()
	if r < 0 || r+1 >= len(statusSequence) {
		return "", false
	}
	return statusSequence[r+1], true
}

// FulfillmentType designates how a completed order reaches the customer.
type FulfillmentType string

const (
	FulfillmentUnset    FulfillmentType = ""
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

// InventoryChoice selects which availability source answers ingredient queries.
type InventoryChoice string

const (
	InventoryCurrent InventoryChoice = "current_restaurant"
	InventorySister  InventoryChoice = "sister_restaurant"
)

// LineItem is a priced entry on a submitted order.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity_kg,omitempty"`
	Price    float64 `json:"price"`
}

// Order is the state carried through the processing pipeline for a single
// customer message. It is created per request and never persisted.
type Order struct {
	ID     string          `json:"order_id"`
	Status Status          `json:"status"`
	Type   FulfillmentType `json:"order_type,omitempty"`

	Intent              string          `json:"intent"`
	FoodType            string          `json:"food_type"`
	RequiredIngredients Ingredients     `json:"required_ingredients"`
	InventoryChoice     InventoryChoice `json:"inventory_choice"`

	IngredientsAvailable bool     `json:"ingredients_available"`
	MissingIngredients   []string `json:"missing_ingredients"`

	OrderTime             time.Time  `json:"order_time"`
	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`

	CustomerName    string `json:"customer_name,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	CustomerMessage string `json:"customer_message"`

	Items      []LineItem `json:"items"`
	TotalPrice *float64   `json:"total_price"`

	Errors   []string  `json:"errors"`
	Notes    []string  `json:"notes"`
	Messages []Message `json:"messages"`
}

// NewOrder returns an order with every field at its default for the given
// customer message.
func NewOrder(message string, now time.Time) *Order {
	return &Order{
		Status:             StatusInitiated,
		InventoryChoice:    InventoryCurrent,
		MissingIngredients: []string{},
		OrderTime:          now,
		CustomerMessage:    message,
		Items:              []LineItem{},
		Errors:             []string{},
		Notes:              []string{},
		Messages:           []Message{},
	}
}

// AddError records a non-fatal problem on the order.
func (o *Order) AddError(msg string) {
	o.Errors = append(o.Errors, msg)
}

// AddNote records a processing note on the order.
func (o *Order) AddNote(msg string) {
	o.Notes = append(o.Notes, msg)
}

// Advance moves the order to status to, which must immediately follow the
// current status.
func (o *Order) Advance(to Status) error {
	next, ok := o.Status.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}
