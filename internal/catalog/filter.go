package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// LastChanceStock is the exclusive stock ceiling for the last-chance tab.
const LastChanceStock = 10

var ErrUnknownTab = errors.New("unknown tab")

type TabMode int

const (
	TabAll TabMode = iota
	TabLowestPrice
	TabLastChance
)

func (m TabMode) String() string {
	switch m {
	case TabAll:
		return "all"
	case TabLowestPrice:
		return "lowest-price"
	case TabLastChance:
		return "last-chance"
	default:
		return fmt.Sprintf("TabMode(%d)", int(m))
	}
}

func (m TabMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func ParseTabMode(s string) (TabMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, nil
	case "lowest-price", "lowest":
		return TabLowestPrice, nil
	case "last-chance", "lastchance":
		return TabLastChance, nil
	default:
		return TabAll, fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
}

func (c *Catalog) Filter(mode TabMode) []Product {
	switch mode {
	case TabLowestPrice:
		out := c.Products()
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
		return out
	case TabLastChance:
		out := make([]Product, 0, len(c.products))
		for _, p := range c.products {
			if p.Stock < LastChanceStock {
				out = append(out, p.clone())
			}
		}
		return out
	default:
		return c.Products()
	}
}
