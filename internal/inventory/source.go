// Package inventory answers "how much of this ingredient is on hand" against
// the local store, the static table, or the sister restaurant.
package inventory

import (
	"context"

	"orderintake/internal/models"
)

// Stock is what a source knows about one ingredient.
//
// A nil Quantity means the ingredient is known but unavailable. Unmetered
// marks sources that only answer in-stock / out-of-stock; such an ingredient
// covers any requested amount.
type Stock struct {
	Quantity  *float64 `json:"quantity"`
	Unmetered bool     `json:"unmetered,omitempty"`
}

// Report is the answer of a source for a batch of names. Names absent from
// Stock were not found at all. Diagnostics carry non-fatal lookup problems.
type Report struct {
	Stock       map[string]Stock
	Diagnostics []string
}

func newReport() Report {
	return Report{Stock: make(map[string]Stock)}
}

func (r *Report) diag(msg string) {
	r.Diagnostics = append(r.Diagnostics, msg)
}

// Source looks up ingredient availability.
type Source interface {
	Name() string
	Lookup(ctx context.Context, names []string) Report
}

// Selector chooses the source that answers for an inventory choice.
type Selector struct {
	current Source
	sister  Source
}

// NewSelector creates a selector. Either source may be nil, in which case the
// matching choice reports every ingredient unavailable.
func NewSelector(current, sister Source) *Selector {
	return &Selector{current: current, sister: sister}
}

// For returns the source for choice.
func (s *Selector) For(choice models.InventoryChoice) Source {
	switch choice {
	case models.InventoryCurrent:
		if s.current != nil {
			return s.current
		}
	case models.InventorySister:
		if s.sister != nil {
			return s.sister
		}
	}
	return unavailableSource{choice: choice}
}

// unavailableSource reports every name as unavailable.
type unavailableSource struct {
	choice models.InventoryChoice
}

func (u unavailableSource) Name() string { return "unavailable" }

func (u unavailableSource) Lookup(_ context.Context, names []string) Report {
	r := newReport()
	for _, n := range names {
		r.Stock[n] = Stock{}
	}
	r.diag("No inventory source configured for choice: " + string(u.choice))
	return r
}

func ptr(v float64) *float64 { return &v }
