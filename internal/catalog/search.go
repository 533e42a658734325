package catalog

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxSuggestions = 5
	MinQueryLen    = 2
)

type Suggestions struct {
	Visible bool      `json:"visible"`
	Items   []Product `json:"items"`
}

// Suggest returns up to MaxSuggestions products whose name or type contains
// the trimmed, lower-cased query. Results keep catalog order.
func (c *Catalog) Suggest(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLen {
		return []Product{}
	}

	out := make([]Product, 0, MaxSuggestions)
	for _, p := range c.products {
		if !matches(p, q) {
			continue
		}
		out = append(out, p.clone())
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Suggestions wraps Suggest for the UI: the box is hidden for short queries
// and when nothing matched.
func (c *Catalog) Suggestions(query string) Suggestions {
	items := c.Suggest(query)
	return Suggestions{Visible: len(items) > 0, Items: items}
}

func matches(p Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Type), q)
}
