package domain

// PageState is the layout snapshot handed to a host for rendering.
type PageState struct {
	Pages        []Page        `json:"pages"`
	Selected     []string      `json:"selected"`
	PendingFocus *PendingFocus `json:"pendingFocus,omitempty"`
	CanUndo      bool          `json:"canUndo"`
	CanRedo      bool          `json:"canRedo"`
}
