// Package selection tracks block-level selection and reorders blocks by drag.
//
// A selection is a set of block ids. The empty set means there is no block
// selection and the caret lives inside a block.
package selection

import "pagedoc/internal/domain"

// Set is an order-insensitive set of selected block ids.
type Set map[string]struct{}

// Of builds a set from ids.
func Of(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// All selects every block.
func All(blocks []domain.Block) Set {
	return Of(domain.BlockIDs(blocks)...)
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Empty() bool { return len(s) == 0 }

// InOrder returns the selected ids in document order, skipping ids that are
// no longer in blocks.
func (s Set) InOrder(blocks []domain.Block) []string {
	out := []string{}
	for _, b := range blocks {
		if s.Has(b.ID) {
			out = append(out, b.ID)
		}
	}
	return out
}

// Blocks returns copies of the selected blocks in document order.
func (s Set) Blocks(blocks []domain.Block) []domain.Block {
	var out []domain.Block
	for _, b := range blocks {
		if s.Has(b.ID) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Bounds returns the first and last indexes of selected blocks, or -1, -1.
func (s Set) Bounds(blocks []domain.Block) (first, last int) {
	first, last = -1, -1
	for i, b := range blocks {
		if s.Has(b.ID) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}
