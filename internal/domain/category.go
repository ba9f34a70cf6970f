package domain

import "fmt"

// Category is one of the six fixed emission domains an activity belongs to.
// The set is closed: aggregation always reports all six, and ties between
// categories are broken by the order of Categories().
type Category string

const (
	CategoryTransport Category = "Transport"
	CategoryFood      Category = "Food"
	CategoryEnergy    Category = "Energy"
	CategoryWaste     Category = "Waste"
	CategoryWater     Category = "Water"
	CategoryShopping  Category = "Shopping"
)

var categoryOrder = []Category{
	CategoryTransport,
	CategoryFood,
	CategoryEnergy,
	CategoryWaste,
	CategoryWater,
	CategoryShopping,
}

// Categories returns every category in canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory validates a raw category value.
func ParseCategory(raw string) (Category, error) {
	for _, c := range categoryOrder {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", raw)
}
