package core

import "strings"

// Category is the raw category key of a record. Stored values are kept
// verbatim, even when they are not one of the known keys.
type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Health        Category = "health"
	Education     Category = "education"
	Housing       Category = "housing"
	Other         Category = "other"
)

// CategoryInfo holds display data for a category.
type CategoryInfo struct {
	Key   Category
	Name  string
	Icon  string
	Known bool
}

var categories = []CategoryInfo{
	{Key: Food, Name: "Food", Icon: "🍜", Known: true},
	{Key: Transport, Name: "Transport", Icon: "🚗", Known: true},
	{Key: Shopping, Name: "Shopping", Icon: "🛒", Known: true},
	{Key: Entertainment, Name: "Entertainment", Icon: "🎬", Known: true},
	{Key: Health, Name: "Health", Icon: "🏥", Known: true},
	{Key: Education, Name: "Education", Icon: "📚", Known: true},
	{Key: Housing, Name: "Housing", Icon: "🏠", Known: true},
	{Key: Other, Name: "Other", Icon: "📝", Known: true},
}

// Categories returns the fixed category set in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// ParseCategory resolves user input to a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Known() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	for _, info := range categories {
		if info.Key == c {
			return true
		}
	}
	return false
}

// Info returns the display data of c. Unknown keys get the "other" name and
// icon while Key keeps the raw value.
func (c Category) Info() CategoryInfo {
	for _, info := range categories {
		if info.Key == c {
			return info
		}
	}
	fallback := categories[len(categories)-1]
	fallback.Key = c
	fallback.Known = false
	return fallback
}

// Label is the icon followed by the display name.
func (c Category) Label() string {
	info := c.Info()
	return info.Icon + " " + info.Name
}
