// Package sufficiency decides whether the inventory can cover the ingredients
// of a structured order.
package sufficiency

import (
	"fmt"
	"strconv"
	"strings"

	"orderintake/internal/inventory"
	"orderintake/internal/models"
)

// ReasonAllAvailable is the reason reported for a fulfillable order.
const ReasonAllAvailable = "All ingredients available in sufficient quantities"

// Policy controls how many shortfalls are reported.
type Policy string

const (
	// FirstFailure stops at the first ingredient that cannot be covered.
	FirstFailure Policy = "first_failure"
	// CollectAll checks every ingredient and reports all shortfalls.
	CollectAll Policy = "collect_all"
)

// ParsePolicy maps a config value to a Policy. Empty means FirstFailure.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FirstFailure:
		return FirstFailure, nil
	case CollectAll:
		return CollectAll, nil
	default:
		return "", fmt.Errorf("unknown shortfall policy %q", s)
	}
}

// Result is the outcome of a sufficiency check.
type Result struct {
	Fulfillable bool
	Missing     []string
	Reason      string
	Diagnostics []string
}

// Checker compares required amounts with reported stock.
type Checker struct {
	policy Policy
}

// NewChecker creates a checker using the given policy
func NewChecker(policy Policy) *Checker {
	if policy == "" {
		policy = FirstFailure
	}
	return &Checker{policy: policy}
}

// Policy returns the shortfall policy of the checker.
func (c *Checker) Policy() Policy {
	return c.policy
}

// Check walks required in order. An ingredient missing from the report is
// missing, a nil quantity is unavailable, and a quantity below the requested
// amount is insufficient.
func (c *Checker) Check(required models.Ingredients, report inventory.Report) Result {
	res := Result{Missing: []string{}}
	var reasons []string

	for _, req := range required {
		reason, ok := checkOne(req, report)
		if ok {
			continue
		}
		res.Missing = append(res.Missing, req.Name)
		reasons = append(reasons, reason)
		res.Diagnostics = append(res.Diagnostics, reason)
		if c.policy == FirstFailure {
			break
		}
	}

	if len(res.Missing) == 0 {
		res.Fulfillable = true
		res.Reason = ReasonAllAvailable
		return res
	}
	res.Reason = strings.Join(reasons, "; ")
	return res
}

func checkOne(req models.Requirement, report inventory.Report) (string, bool) {
	stock, found := report.Stock[req.Name]
	if !found {
		return "Missing ingredient: " + req.Name, false
	}

	need, err := ParseKilograms(req.Amount)
	if err != nil {
		return fmt.Sprintf("%s: %v", req.Name, err), false
	}

	switch {
	case stock.Unmetered:
		return "", true
	case stock.Quantity == nil:
		return "Ingredient unavailable: " + req.Name, false
	case *stock.Quantity < need:
		return fmt.Sprintf("Insufficient quantity of %s: need %skg, have %skg",
			req.Name, formatKg(need), formatKg(*stock.Quantity)), false
	}
	return "", true
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
