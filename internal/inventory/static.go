package inventory

import (
	"context"
	"strings"
)

// DefaultStaticInventory is used when no database is configured.
var DefaultStaticInventory = map[string]bool{
	"pepperoni":    true,
	"cheese":       true,
	"dough":        true,
	"tomato sauce": true,
	"mushrooms":    false,
	"olives":       true,
}

// StaticSource answers from a fixed in-stock table. Names are matched
// case-insensitively and anything not listed is unavailable.
type StaticSource struct {
	table map[string]bool
}

// NewStaticSource creates a static source. A nil table uses DefaultStaticInventory.
func NewStaticSource(table map[string]bool) *StaticSource {
	if table == nil {
		table = DefaultStaticInventory
	}
	normalized := make(map[string]bool, len(table))
	for k, v := range table {
		normalized[strings.ToLower(k)] = v
	}
	return &StaticSource{table: normalized}
}

// Name implements Source
func (s *StaticSource) Name() string { return "static" }

// Lookup implements Source
func (s *StaticSource) Lookup(_ context.Context, names []string) Report {
	r := newReport()
	for _, n := range names {
		r.Stock[n] = Stock{Unmetered: s.table[strings.ToLower(n)]}
	}
	return r
}
