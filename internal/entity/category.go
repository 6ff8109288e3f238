package entity

import "strings"

// Category is the closed set of product categories the fee and customs
// schedules distinguish. Labels are resolved once with ParseCategory.
type Category int

const (
	CategoryNone Category = iota
	CategoryBag
	CategoryWatch
	CategoryJewelry
	CategoryAccessory
	CategoryClothing
	CategoryShoes
	CategoryOther
)

var categoryLabels = map[string]Category{
	"가방":   CategoryBag,
	"시계":   CategoryWatch,
	"쥬얼리":  CategoryJewelry,
	"보석":   CategoryJewelry,
	"악세서리": CategoryAccessory,
	"의류":   CategoryClothing,
	"신발":   CategoryShoes,
}

// ParseCategory maps a marketplace label to a Category. An empty label is
// CategoryNone, an unrecognised one CategoryOther.
func ParseCategory(label string) Category {
	label = strings.TrimSpace(label)
	if label == "" {
		return CategoryNone
	}
	if c, ok := categoryLabels[label]; ok {
		return c
	}
	return CategoryOther
}

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryBag:
		return "bag"
	case CategoryWatch:
		return "watch"
	case CategoryJewelry:
		return "jewelry"
	case CategoryAccessory:
		return "accessory"
	case CategoryClothing:
		return "clothing"
	case CategoryShoes:
		return "shoes"
	default:
		return "other"
	}
}
