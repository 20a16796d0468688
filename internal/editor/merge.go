package editor

import (
	"log"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

// RequestMergeToPrevious merges blockID into the block before it in the
// whole document. It is sent when Backspace at the start of a page's first
// block would need to reach the previous page. The surviving block receives
// focus at the merge boundary. A request for the document's first block is
// ignored.
func (e *Editor) RequestMergeToPrevious(blockID string) bool {
	e.mu.Lock()
	o, ok := e.mergeToPreviousLocked(blockID)
	e.mu.Unlock()
	e.finish(o)
	return ok
}

// RequestMergeFromNext merges the block after blockID into it. It is sent
// when Delete at the end of a page's last block would need to reach the next
// page. A request for the document's last block is ignored.
func (e *Editor) RequestMergeFromNext(blockID string) bool {
	e.mu.Lock()
	o, ok := e.mergeFromNextLocked(blockID)
	e.mu.Unlock()
	e.finish(o)
	return ok
}

func (e *Editor) mergeToPreviousLocked(blockID string) (outcome, bool) {
	i := domain.IndexOf(e.blocks, blockID)
	if i <= 0 {
		log.Printf("[EDITOR] merge to previous page ignored for block %s", blockID)
		return outcome{}, false
	}
	return e.mergeAtLocked(i - 1), true
}

func (e *Editor) mergeFromNextLocked(blockID string) (outcome, bool) {
	i := domain.IndexOf(e.blocks, blockID)
	if i < 0 || i >= len(e.blocks)-1 {
		log.Printf("[EDITOR] merge from next page ignored for block %s", blockID)
		return outcome{}, false
	}
	return e.mergeAtLocked(i), true
}

// mergeAtLocked appends blocks[i+1] onto blocks[i] and removes it, aiming
// the caret at the seam.
func (e *Editor) mergeAtLocked(i int) outcome {
	blocks := domain.CloneBlocks(e.blocks)
	keep := &blocks[i]
	offset := content.Length(keep.Content)
	keep.Content = content.Concat(keep.Content, blocks[i+1].Content)
	id := keep.ID
	blocks = append(blocks[:i+1], blocks[i+2:]...)

	o := e.setBlocksLocked(blocks)
	o.resync = append(o.resync, id)
	e.focus.Request(domain.FocusAt(id, offset))
	return o
}
