package pagination

import (
	"fmt"

	"pagedoc/internal/domain"
)

// Params tunes the page packing. The heuristics were tuned for an A4 page
// rendered at 96 dpi and are exposed so hosts with other page sizes or fonts
// can retune them.
type Params struct {
	// Capacity is the maximum content height of one page.
	Capacity float64 `mapstructure:"capacity"`
	// SafetyMargin is subtracted from Capacity before packing.
	SafetyMargin float64 `mapstructure:"safety_margin"`
	// Gap is the vertical space between consecutive blocks.
	Gap float64 `mapstructure:"gap"`
	// TallThreshold is the height above which a block is moved to the next
	// page early once the page is FillRatio full.
	TallThreshold float64 `mapstructure:"tall_threshold"`
	FillRatio     float64 `mapstructure:"fill_ratio"`
	// DefaultHeight is used for blocks the host has not measured yet.
	DefaultHeight float64 `mapstructure:"default_height"`
}

// DefaultParams returns the packing used for A4 pages.
func DefaultParams() Params {
	return Params{
		Capacity:      1122,
		SafetyMargin:  100,
		Gap:           8,
		TallThreshold: 60,
		FillRatio:     0.7,
		DefaultHeight: 40,
	}
}

// Measurer reports the rendered height of a block, if it has been measured.
type Measurer interface {
	Height(blockID string) (float64, bool)
}

// Heights is a static Measurer backed by a map.
type Heights map[string]float64

func (h Heights) Height(id string) (float64, bool) {
	v, ok := h[id]
	return v, ok
}

// PageID returns the id of the n-th page (zero based).
func PageID(n int) string {
	return fmt.Sprintf("page-%d", n+1)
}

// Paginate partitions blocks into pages. The concatenation of the returned
// pages' blocks is always exactly blocks, in order. A page is never started
// empty: the block that overflows a page opens the next one even if it is
// taller than a page by itself.
func Paginate(blocks []domain.Block, p Params, m Measurer) []domain.Page {
	if p.Capacity <= 0 || len(blocks) == 0 {
		return []domain.Page{{ID: PageID(0), Blocks: domain.CloneBlocks(blocks)}}
	}

	threshold := p.Capacity - p.SafetyMargin
	var pages []domain.Page
	var cur []domain.Block
	height := 0.0

	for _, b := range blocks {
		h := p.DefaultHeight
		if m != nil {
			if v, ok := m.Height(b.ID); ok {
				h = v
			}
		}

		wouldExceed := height+h+p.Gap > threshold
		tallNearEnd := h > p.TallThreshold && height > threshold*p.FillRatio

		if (wouldExceed || tallNearEnd) && len(cur) > 0 {
			pages = append(pages, domain.Page{ID: PageID(len(pages)), Blocks: cur})
			cur = []domain.Block{b.Clone()}
			height = h
			continue
		}
		cur = append(cur, b.Clone())
		height += h + p.Gap
	}
	if len(cur) > 0 {
		pages = append(pages, domain.Page{ID: PageID(len(pages)), Blocks: cur})
	}
	return pages
}

// Flatten concatenates the pages' blocks in page order.
func Flatten(pages []domain.Page) []domain.Block {
	var out []domain.Block
	for _, p := range pages {
		out = append(out, p.Blocks...)
	}
	return out
}

// PageOf returns the index of the page holding blockID, or -1.
func PageOf(pages []domain.Page, blockID string) int {
	for i, p := range pages {
		if domain.IndexOf(p.Blocks, blockID) >= 0 {
			return i
		}
	}
	return -1
}
