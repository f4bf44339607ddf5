// Package season answers which wild plants are ripe in a given month.
package season

import (
	"fmt"
	"slices"
	"strings"
)

// Category is one of the item tables.
type Category string

const (
	Fruits Category = "fruits"
	Herbs  Category = "herbs"
	Nuts   Category = "nuts"
)

// Categories lists every category in display order.
var Categories = []Category{Fruits, Herbs, Nuts}

// Unknown is shown for missing periods, descriptions and locations.
const Unknown = "Unbekannt"

var monthNames = [...]string{
	1: "Januar", 2: "Februar", 3: "März", 4: "April", 5: "Mai", 6: "Juni",
	7: "Juli", 8: "August", 9: "September", 10: "Oktober", 11: "November", 12: "Dezember",
}

// Label is the German display name of the category.
func (c Category) Label() string {
	switch c {
	case Fruits:
		return "Früchte"
	case Herbs:
		return "Kräuter"
	case Nuts:
		return "Nüsse"
	}
	return string(c)
}

func (c Category) order() int {
	if i := slices.Index(Categories, c); i >= 0 {
		return i
	}
	return len(Categories)
}

// ParseCategory accepts a table name; "all" and "" select every category.
func ParseCategory(s string) ([]Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return Categories, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return []Category{c}, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q (want fruits, herbs, nuts or all)", s)
}

// Item is one row of a category table.
type Item struct {
	Category     Category
	Name         string
	Start        int // first month of ripeness, 0 when unknown
	End          int // last month of ripeness, 0 when unknown
	Reasons      string
	Location     string
	Lookalikes   []string
	SeasonalInfo string
	Images       []string
}

// Period is the formatted ripeness period of the item.
func (it Item) Period() string {
	return FormatPeriod(it.Start, it.End)
}

// MonthName returns the German name of month 1..12, "" otherwise.
func MonthName(month int) string {
	if !validMonth(month) {
		return ""
	}
	return monthNames[month]
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}

// InRange reports whether month falls inside the inclusive period start..end.
// A period whose start lies after its end wraps over the turn of the year.
func InRange(start, end, month int) bool {
	if !validMonth(start) || !validMonth(end) || !validMonth(month) {
		return false
	}
	if start == 1 && end == 12 {
		return true
	}
	if start <= end {
		return month >= start && month <= end
	}
	return month >= start || month <= end
}

// FormatPeriod renders a ripeness period with German month names.
func FormatPeriod(start, end int) string {
	if !validMonth(start) || !validMonth(end) {
		return Unknown
	}
	if start == 1 && end == 12 {
		return "Ganzjährig"
	}
	if start == end {
		return monthNames[start]
	}
	return monthNames[start] + "-" + monthNames[end]
}

// ForMonth returns the items ripe in month, ordered by category and name.
func ForMonth(items []Item, month int) []Item {
	var out []Item
	for _, it := range items {
		if InRange(it.Start, it.End, month) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b Item) int {
		if d := a.Category.order() - b.Category.order(); d != 0 {
			return d
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}
