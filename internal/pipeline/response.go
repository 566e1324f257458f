package pipeline

import (
	"time"

	"orderintake/internal/models"
)

// PickupETA carries the pickup estimate of a response.
type PickupETA struct {
	EstimatedPickupTime *time.Time `json:"estimated_pickup_time"`
}

// DeliveryETA carries the delivery estimate of a response.
type DeliveryETA struct {
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
}

// Response is the JSON answer for a processed order. Exactly one of the
// estimate keys is present: the pickup key for pickup orders and the delivery
// key otherwise, null until a time is known.
type Response struct {
	OrderID            string                 `json:"order_id"`
	Status             models.Status          `json:"status"`
	OrderType          models.FulfillmentType `json:"order_type,omitempty"`
	TotalPrice         *float64               `json:"total_price"`
	Notes              []string               `json:"notes"`
	Errors             []string               `json:"errors"`
	MissingIngredients []string               `json:"missing_ingredients"`
	Items              []models.LineItem      `json:"items"`
	Messages           []models.Message       `json:"messages"`
	*PickupETA
	*DeliveryETA
}

// NewResponse builds the response for order
func NewResponse(order *models.Order) Response {
	resp := Response{
		OrderID:            order.ID,
		Status:             order.Status,
		OrderType:          order.Type,
		TotalPrice:         order.TotalPrice,
		Notes:              order.Notes,
		Errors:             order.Errors,
		MissingIngredients: order.MissingIngredients,
		Items:              order.Items,
		Messages:           order.Messages,
	}
	if order.Type == models.FulfillmentPickup {
		resp.PickupETA = &PickupETA{EstimatedPickupTime: order.EstimatedPickupTime}
	} else {
		resp.DeliveryETA = &DeliveryETA{EstimatedDeliveryTime: order.EstimatedDeliveryTime}
	}
	return resp
}
