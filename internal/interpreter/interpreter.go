// Package interpreter turns a conversation into a structured order with the
// help of a language model.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderintake/internal/models"
	"orderintake/internal/models/providers"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Failure reasons reported in Result.FailureReason.
const (
	FailureModel      = "model"
	FailureParse      = "parse"
	FailureValidation = "validation"
)

// Result is a structured order plus the diagnostics produced while deriving it.
type Result struct {
	Intent          string
	FoodType        string
	Ingredients     models.Ingredients
	InventoryChoice models.InventoryChoice

	// Reply is the raw model text, empty when the model call failed.
	Reply string

	Fallback      bool
	FailureReason string
	Errors        []string
	Notes         []string
}

// structuredOrder is the JSON object the model is asked to produce.
type structuredOrder struct {
	Intent          string             `json:"intent" validate:"required"`
	FoodType        string             `json:"food_type" validate:"required"`
	Ingredients     models.Ingredients `json:"ingredients"`
	InventoryChoice string             `json:"inventory_choice" validate:"omitempty,oneof=current_restaurant sister_restaurant"`
}

// Interpreter asks a model to interpret customer messages.
type Interpreter struct {
	completer providers.Completer
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an interpreter over completer
func New(completer providers.Completer, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		completer: completer,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for note timestamps.
func (i *Interpreter) WithClock(now func() time.Time) *Interpreter {
	i.now = now
	return i
}

// Interpret sends the system prompt followed by history to the model once.
// It never fails: unusable replies yield the default "unknown" order.
func (i *Interpreter) Interpret(ctx context.Context, history []models.Message) Result {
	messages := make([]models.Message, 0, len(history)+1)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: SystemPrompt})
	messages = append(messages, history...)

	reply, err := i.completer.Complete(ctx, messages)
	if err != nil {
		i.logger.Error("model call failed", zap.Error(err))
		res := fallback(FailureModel)
		res.Errors = append(res.Errors, fmt.Sprintf("Error interpreting order: %v", err))
		res.Notes = append(res.Notes, fmt.Sprintf("Failed to interpret order at %s", i.now().Format(time.RFC3339)))
		return res
	}

	order, err := i.parse(reply)
	if err != nil {
		i.logger.Warn("unusable model reply", zap.Error(err), zap.Int("reply_length", len(reply)))
		reason := FailureParse
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reason = FailureValidation
		}
		res := fallback(reason)
		res.Reply = reply
		res.Errors = append(res.Errors, fmt.Sprintf("Error parsing LLM response: %v", err))
		res.Notes = append(res.Notes, "Failed to parse LLM response")
		return res
	}

	choice := models.InventoryChoice(order.InventoryChoice)
	if choice == "" {
		choice = models.InventoryCurrent
	}
	ingredients := order.Ingredients
	if ingredients == nil {
		ingredients = models.Ingredients{}
	}

	return Result{
		Intent:          order.Intent,
		FoodType:        order.FoodType,
		Ingredients:     ingredients,
		InventoryChoice: choice,
		Reply:           reply,
	}
}

func (i *Interpreter) parse(reply string) (*structuredOrder, error) {
	body, err := extractObject(reply)
	if err != nil {
		return nil, err
	}

	var order structuredOrder
	if err := json.Unmarshal([]byte(body), &order); err != nil {
		return nil, err
	}
	order.Intent = strings.TrimSpace(order.Intent)
	order.FoodType = strings.TrimSpace(order.FoodType)
	order.InventoryChoice = strings.TrimSpace(order.InventoryChoice)

	if err := i.validate.Struct(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// extractObject returns the outermost {...} span so replies wrapped in code
// fences or prose still parse.
func extractObject(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in model reply")
	}
	return reply[start : end+1], nil
}

func fallback(reason string) Result {
	return Result{
		Intent:          "unknown",
		FoodType:        "unknown",
		Ingredients:     models.Ingredients{},
		InventoryChoice: models.InventoryCurrent,
		Fallback:        true,
		FailureReason:   reason,
	}
}
