package domain

// Page is a derived grouping of consecutive blocks that fit one printed page.
// Pages are recomputed from the document; they never own their blocks.
type Page struct {
	ID     string  `json:"id"`
	Blocks []Block `json:"blocks"`
}

// PendingFocus asks the next surface that renders BlockID to take keyboard
// focus and place the caret at Offset, or at the end when Offset is nil.
type PendingFocus struct {
	BlockID string `json:"blockId"`
	Offset  *int   `json:"offset"`
}

// FocusAt builds a token with an explicit caret offset.
func FocusAt(blockID string, offset int) *PendingFocus {
	return &PendingFocus{BlockID: blockID, Offset: &offset}
}

// FocusEnd builds a token that places the caret at the end of the block.
func FocusEnd(blockID string) *PendingFocus {
	return &PendingFocus{BlockID: blockID}
}

// Mention is an insertable variable offered by the @ menu.
type Mention struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}
