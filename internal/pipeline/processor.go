// Package pipeline runs a customer message through interpretation, ingredient
// checking, pricing and fulfillment.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderintake/internal/interpreter"
	"orderintake/internal/inventory"
	"orderintake/internal/metrics"
	"orderintake/internal/models"
	"orderintake/internal/monitoring"
	"orderintake/internal/sufficiency"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Stage names, used for metrics and logs.
const (
	StageInterpret        = "interpret_order"
	StageCheckIngredients = "check_ingredients"
	StageSubmit           = "submit_order"
	StageDecideType       = "decide_order_type"
	StagePickupTime       = "calculate_pickup_time"
	StagePickupOrder      = "process_pickup_order"
	StageDeliveryTime     = "calculate_delivery_time"
	StageDeliveryOrder    = "process_delivery_order"
)

// Interpreter turns a conversation into a structured order.
type Interpreter interface {
	Interpret(ctx context.Context, history []models.Message) interpreter.Result
}

// SourceSelector picks the inventory that answers for an order.
type SourceSelector interface {
	For(choice models.InventoryChoice) inventory.Source
}

// Pricing holds the fixed price components.
type Pricing struct {
	BasePrice decimal.Decimal
	PerKgRate decimal.Decimal
}

// DefaultPricing is a 10.00 base plus 0.50 per kilogram of ingredients.
var DefaultPricing = Pricing{
	BasePrice: decimal.NewFromInt(10),
	PerKgRate: decimal.RequireFromString("0.50"),
}

// Fulfillment controls the pickup/delivery decision and estimates.
type Fulfillment struct {
	// DeliveryEnabled allows delivery for orders that carry an address.
	DeliveryEnabled bool
	PickupOffset    time.Duration
	DeliveryOffset  time.Duration
}

// DefaultFulfillment is pickup only, ready in 30 minutes.
var DefaultFulfillment = Fulfillment{
	PickupOffset:   30 * time.Minute,
	DeliveryOffset: 45 * time.Minute,
}

// Deps are the collaborators of a Processor. Metrics and Monitor are optional.
type Deps struct {
	Interpreter Interpreter
	Inventory   SourceSelector
	Checker     *sufficiency.Checker
	Pricing     Pricing
	Fulfillment Fulfillment
	Clock       func() time.Time
	Metrics     *metrics.Collector
	Monitor     *monitoring.Monitor
	Logger      *zap.Logger
}

// Request is one customer message with optional customer details and the
// conversation so far.
type Request struct {
	Message         string           `json:"message"`
	CustomerName    string           `json:"customer_name,omitempty"`
	PhoneNumber     string           `json:"phone_number,omitempty"`
	DeliveryAddress string           `json:"delivery_address,omitempty"`
	History         []models.Message `json:"history,omitempty"`
}

// Processor sequences the order stages.
type Processor struct {
	deps Deps
}

// NewProcessor creates a processor, filling unset dependencies with defaults
func NewProcessor(deps Deps) *Processor {
	if deps.Checker == nil {
		deps.Checker = sufficiency.NewChecker(sufficiency.FirstFailure)
	}
	if deps.Pricing == (Pricing{}) {
		deps.Pricing = DefaultPricing
	}
	if deps.Fulfillment.PickupOffset == 0 && deps.Fulfillment.DeliveryOffset == 0 {
		deps.Fulfillment.PickupOffset = DefaultFulfillment.PickupOffset
		deps.Fulfillment.DeliveryOffset = DefaultFulfillment.DeliveryOffset
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Processor{deps: deps}
}

// Process handles one customer message start to finish. Stage problems are
// recorded on the returned order; Process itself never fails.
func (p *Processor) Process(ctx context.Context, req Request) *models.Order {
	order := models.NewOrder(req.Message, p.deps.Clock())
	order.CustomerName = req.CustomerName
	order.PhoneNumber = req.PhoneNumber
	order.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	order.Messages = append(order.Messages, req.History...)

	p.run(ctx, order)

	p.deps.Metrics.RecordOrder(string(order.Status), string(order.Type))
	p.deps.Monitor.RecordOrder(order)
	p.deps.Logger.Info("order processed",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("order_type", string(order.Type)),
		zap.Int("errors", len(order.Errors)),
	)
	return order
}

func (p *Processor) run(ctx context.Context, order *models.Order) {
	p.timed(StageInterpret, func() error { return p.interpretOrder(ctx, order) })

	if err := p.timed(StageCheckIngredients, func() error { return p.checkIngredients(ctx, order) }); err != nil {
		return
	}
	if !order.IngredientsAvailable {
		order.AddError("Cannot submit order: missing ingredients")
		return
	}

	if err := p.timed(StageSubmit, func() error { return p.submitOrder(order) }); err != nil {
		return
	}
	if err := p.timed(StageDecideType, func() error { return p.decideOrderType(order) }); err != nil {
		return
	}

	switch order.Type {
	case models.FulfillmentDelivery:
		p.timed(StageDeliveryTime, func() error { return p.calculateDeliveryTime(order) })
		p.timed(StageDeliveryOrder, func() error { return p.processDeliveryOrder(order) })
	default:
		p.timed(StagePickupTime, func() error { return p.calculatePickupTime(order) })
		p.timed(StagePickupOrder, func() error { return p.processPickupOrder(order) })
	}
}

// timed runs a stage, records its duration and turns a returned error into an
// order error.
func (p *Processor) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.deps.Metrics.ObserveStage(stage, time.Since(start))
	if err != nil {
		p.deps.Logger.Error("stage failed", zap.String("stage", stage), zap.Error(err))
	}
	return err
}

func (p *Processor) advance(order *models.Order, to models.Status) error {
	if err := order.Advance(to); err != nil {
		order.AddError(err.Error())
		return err
	}
	return nil
}

func (p *Processor) interpretOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Messages = append(order.Messages, models.Message{Role: models.RoleUser, Content: order.CustomerMessage})

	res := p.deps.Interpreter.Interpret(ctx, order.Messages)

	order.Intent = res.Intent
	order.FoodType = res.FoodType
	order.RequiredIngredients = res.Ingredients
	order.InventoryChoice = res.InventoryChoice
	order.Errors = append(order.Errors, res.Errors...)
	order.Notes = append(order.Notes, res.Notes...)
	if res.Reply != "" {
		order.Messages = append(order.Messages, models.Message{Role: models.RoleAssistant, Content: res.Reply})
	}

	if res.Fallback {
		p.deps.Metrics.RecordInterpretationFailure(res.FailureReason)
		return nil
	}
	order.AddNote(fmt.Sprintf("Order interpreted at %s", p.deps.Clock().Format(time.RFC3339)))
	return nil
}

func (p *Processor) checkIngredients(ctx context.Context, order *models.Order) error {
	if err := p.advance(order, models.StatusIngredientsChecked); err != nil {
		return err
	}

	if len(order.RequiredIngredients) == 0 {
		order.IngredientsAvailable = false
		order.AddError("Cannot check ingredients: no ingredients interpreted")
		return nil
	}

	source := p.deps.Inventory.For(order.InventoryChoice)
	report := source.Lookup(ctx, order.RequiredIngredients.Names())
	order.Errors = append(order.Errors, report.Diagnostics...)
	p.recordLookups(source.Name(), order.RequiredIngredients.Names(), report)

	res := p.deps.Checker.Check(order.RequiredIngredients, report)
	order.IngredientsAvailable = res.Fulfillable
	order.MissingIngredients = res.Missing
	if res.Fulfillable {
		order.AddNote(res.Reason)
	} else {
		order.Errors = append(order.Errors, res.Diagnostics...)
	}
	return nil
}

func (p *Processor) recordLookups(source string, names []string, report inventory.Report) {
	for _, name := range names {
		stock, found := report.Stock[name]
		outcome := "available"
		switch {
		case !found:
			outcome = "not_found"
		case stock.Quantity == nil && !stock.Unmetered:
			outcome = "unavailable"
		}
		p.deps.Metrics.RecordInventoryLookup(source, outcome)
	}
}

func (p *Processor) submitOrder(order *models.Order) error {
	if err := p.advance(order, models.StatusSubmitted); err != nil {
		return err
	}

	rate := p.deps.Pricing.PerKgRate
	total := p.deps.Pricing.BasePrice
	items := make([]models.LineItem, 0, len(order.RequiredIngredients))
	for _, req := range order.RequiredIngredients {
		kg, err := sufficiency.ParseKilograms(req.Amount)
		if err != nil {
			order.AddError(fmt.Sprintf("Cannot price %s: %v", req.Name, err))
			continue
		}
		amount := decimal.NewFromFloat(kg)
		cost := rate.Mul(amount)
		total = total.Add(cost)
		items = append(items, models.LineItem{
			Name:     req.Name,
			Quantity: kg,
			Price:    cost.Round(2).InexactFloat64(),
		})
	}

	total = total.Round(2)
	price := total.InexactFloat64()
	order.Items = items
	order.TotalPrice = &price
	order.AddNote(fmt.Sprintf("Order submitted with total price: $%s", total.StringFixed(2)))
	return nil
}

func (p *Processor) decideOrderType(order *models.Order) error {
	if err := p.advance(order, models.StatusTypeDecided); err != nil {
		return err
	}

	if p.deps.Fulfillment.DeliveryEnabled && order.DeliveryAddress != "" {
		order.Type = models.FulfillmentDelivery
		order.AddNote("Order type set to delivery")
		return nil
	}
	order.Type = models.FulfillmentPickup
	order.AddNote("Order type set to pickup")
	return nil
}

func (p *Processor) calculatePickupTime(order *models.Order) error {
	eta := p.deps.Clock().Add(p.deps.Fulfillment.PickupOffset)
	order.EstimatedPickupTime = &eta
	order.AddNote(fmt.Sprintf("Estimated pickup time set to: %s", eta.Format(time.RFC3339)))
	return nil
}

func (p *Processor) processPickupOrder(order *models.Order) error {
	if err := p.advance(order, models.StatusCompleted); err != nil {
		return err
	}
	order.AddNote(fmt.Sprintf("Pickup order processed. Ready for pickup at: %s", order.EstimatedPickupTime.Format(time.RFC3339)))
	return nil
}

func (p *Processor) calculateDeliveryTime(order *models.Order) error {
	eta := p.deps.Clock().Add(p.deps.Fulfillment.DeliveryOffset)
	order.EstimatedDeliveryTime = &eta
	order.AddNote(fmt.Sprintf("Estimated delivery time set to: %s", eta.Format(time.RFC3339)))
	return nil
}

func (p *Processor) processDeliveryOrder(order *models.Order) error {
	if err := p.advance(order, models.StatusCompleted); err != nil {
		return err
	}
	order.AddNote(fmt.Sprintf("Delivery order processed. Estimated delivery time: %s", order.EstimatedDeliveryTime.Format(time.RFC3339)))
	return nil
}
