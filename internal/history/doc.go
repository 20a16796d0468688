// Package history keeps snapshot-based undo/redo for a block document.
//
// Every entry is a full copy of the block list. Edits are recorded through a
// debounce window so that a burst of keystrokes becomes a single undo step;
// the top of the undo stack is always the most recently committed state.
package history
