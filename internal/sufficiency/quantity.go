package sufficiency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatError reports an amount that is not a "<number>kg" literal.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Invalid format: %s. Expected format: '<number>kg'", e.Value)
}

// ParseKilograms converts amounts such as "0.5kg", "4" or "  2.25 KG " into a
// magnitude in kilograms.
func ParseKilograms(s string) (float64, error) {
	number := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "kg", ""))
	v, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, &FormatError{Value: s}
	}
	return v, nil
}
