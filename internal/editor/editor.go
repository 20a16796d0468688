// Package editor is the paginated block editor core.
//
// The Editor owns the document's block list. Pages are derived from it by the
// pagination engine and each page is edited through a Surface, which applies
// the per-block key and input rules to its slice and reports the result back
// to the Editor. Edits that would reach past a page boundary are turned into
// merge requests that the Editor resolves against the whole document.
package editor

import (
	"log"
	"sync"
	"time"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/focus"
	"pagedoc/internal/history"
	"pagedoc/internal/menu"
	"pagedoc/internal/pagination"
	"pagedoc/internal/selection"
)

// Options configures an Editor. The zero value is usable: A4 pagination,
// synchronous relayout and history commits, and no callbacks.
type Options struct {
	// Value is the serialized document to load.
	Value string
	// AllowEmpty lets the document hold zero blocks.
	AllowEmpty bool

	Params *pagination.Params
	// PaginateDelay debounces relayout after page-local edits. Zero relayouts
	// synchronously.
	PaginateDelay time.Duration
	// Measurer reports block heights. Defaults to the mounted surfaces.
	Measurer pagination.Measurer

	History      history.Options
	FocusRetries int
	Mentions     []domain.Mention

	// OnChange receives the serialized document after every mutation.
	OnChange func(value string)
	// OnPageChange receives the blocks a page reported after a page-local edit.
	OnPageChange func(pageID string, blocks []domain.Block)
	// OnSave is called for the save shortcut.
	OnSave  func(value string)
	Emitter Emitter
}

// Editor coordinates one document.
type Editor struct {
	mu sync.Mutex

	blocks     []domain.Block
	pages      []domain.Page
	params     pagination.Params
	allowEmpty bool
	dirty      bool

	selected selection.Set
	marquee  selection.Marquee
	focused  string
	caret    Caret
	// pendingSlash is a block created by the plus button whose slash menu
	// opens once it renders.
	pendingSlash string

	measurer  pagination.Measurer
	history   *history.History
	scheduler *pagination.Scheduler
	focus     *focus.Coordinator
	menus     *menu.Controller

	onChange     func(string)
	onPageChange func(string, []domain.Block)
	onSave       func(string)
	emitter      Emitter
}

// New creates an editor and loads opts.Value.
func New(opts Options) *Editor {
	params := pagination.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	reg := focus.NewRegistry()
	e := &Editor{
		params:       params,
		allowEmpty:   opts.AllowEmpty,
		measurer:     opts.Measurer,
		focus:        focus.NewCoordinator(reg, opts.FocusRetries),
		menus:        menu.NewController(opts.Mentions),
		onChange:     opts.OnChange,
		onPageChange: opts.OnPageChange,
		onSave:       opts.OnSave,
		emitter:      opts.Emitter,
	}
	if e.measurer == nil {
		e.measurer = reg
	}

	hopts := opts.History
	userCommit := hopts.OnCommit
	hopts.OnCommit = func() {
		if userCommit != nil {
			userCommit()
		}
		e.emitHistory()
	}
	e.history = history.New(hopts)
	e.scheduler = pagination.NewScheduler(opts.PaginateDelay, e.layoutInput, e.measurer, e.publishPages)

	e.Load(opts.Value)
	return e
}

// Load replaces the document with a serialized value and starts a fresh
// history with it as the baseline. Unparseable values load the default
// document.
func (e *Editor) Load(value string) {
	blocks := content.Decode(value, e.allowEmpty)
	e.mu.Lock()
	o := e.setBlocksLocked(blocks)
	e.selected = nil
	e.focused = ""
	e.pendingSlash = ""
	e.dirty = false
	e.menus.Close()
	e.mu.Unlock()

	e.focus.Request(nil)
	e.history.Reset(blocks)
	o.record = false
	o.resyncAll = true
	o.quiet = true
	e.finish(o)
}

// Close commits any pending history entry.
func (e *Editor) Close() {
	e.history.Flush()
}

// ─────────────────────────────────────────────────────────────
// Read access
// ─────────────────────────────────────────────────────────────

// Blocks returns a copy of the document.
func (e *Editor) Blocks() []domain.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.CloneBlocks(e.blocks)
}

// Value returns the serialized document.
func (e *Editor) Value() string {
	return content.Encode(e.Blocks())
}

// Pages returns a copy of the current page partition.
func (e *Editor) Pages() []domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePages(e.pages)
}

// State returns everything a host needs to render the document.
func (e *Editor) State() domain.PageState {
	e.mu.Lock()
	st := domain.PageState{
		Pages:    clonePages(e.pages),
		Selected: e.selected.InOrder(e.blocks),
	}
	e.mu.Unlock()
	st.PendingFocus = e.focus.Pending()
	st.CanUndo = e.history.CanUndo()
	st.CanRedo = e.history.CanRedo()
	return st
}

// Dirty reports whether the document changed since it was loaded or saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkSaved clears the dirty flag.
func (e *Editor) MarkSaved() {
	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Registry is where rendering surfaces mount their block handles.
func (e *Editor) Registry() *focus.Registry { return e.focus.Registry() }

// PendingFocus returns the unclaimed focus token, if any.
func (e *Editor) PendingFocus() *domain.PendingFocus { return e.focus.Pending() }

// Menu returns the open slash or mention menu.
func (e *Editor) Menu() (menu.State, bool) { return e.menus.State() }

// SetMentions replaces the list offered by the @ menu.
func (e *Editor) SetMentions(mentions []domain.Mention) { e.menus.SetMentions(mentions) }

// Surface returns the editing surface of a page, or nil.
func (e *Editor) Surface(pageID string) *Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pageIndexLocked(pageID) < 0 {
		return nil
	}
	return &Surface{e: e, pageID: pageID}
}

// Surfaces returns one surface per page, in page order.
func (e *Editor) Surfaces() []*Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Surface, len(e.pages))
	for i, p := range e.pages {
		out[i] = &Surface{e: e, pageID: p.ID}
	}
	return out
}

// SurfaceOf returns the surface currently holding blockID.
func (e *Editor) SurfaceOf(blockID string) *Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := pagination.PageOf(e.pages, blockID)
	if i < 0 {
		return nil
	}
	return &Surface{e: e, pageID: e.pages[i].ID}
}

// ─────────────────────────────────────────────────────────────
// Layout
// ─────────────────────────────────────────────────────────────

// SetCapacity changes the page height and schedules a relayout.
func (e *Editor) SetCapacity(capacity float64) {
	e.mu.Lock()
	e.params.Capacity = capacity
	e.mu.Unlock()
	e.scheduler.Request()
}

// Relayout recomputes the pages now, e.g. after the host measured blocks.
func (e *Editor) Relayout() {
	e.scheduler.Run()
}

// RequestRelayout schedules a debounced relayout.
func (e *Editor) RequestRelayout() {
	e.scheduler.Request()
}

func (e *Editor) layoutInput() ([]domain.Block, pagination.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.CloneBlocks(e.blocks), e.params
}

func (e *Editor) publishPages(pages []domain.Page) {
	e.mu.Lock()
	// A page-local edit may have landed while the layout was computed.
	if content.Encode(pagination.Flatten(pages)) != content.Encode(e.blocks) {
		pages = pagination.Paginate(e.blocks, e.params, e.measurer)
	}
	e.pages = pages
	out := clonePages(pages)
	e.mu.Unlock()
	e.emit(EventPages, out)
}

// RenderPass is called by the host after each render. It lets a pending
// focus token find its block and opens a slash menu requested by the plus
// button once the new block is mounted.
func (e *Editor) RenderPass() {
	id, offset, ok := e.focus.RenderPass(e.Blocks())

	e.mu.Lock()
	defer e.mu.Unlock()
	if ok {
		e.focused = id
		e.caret = At(offset)
	}
	if e.pendingSlash != "" {
		if _, mounted := e.focus.Registry().Get(e.pendingSlash); mounted {
			e.menus.Open(menu.Slash, e.pendingSlash)
			e.pendingSlash = ""
		}
	}
}

// Focus records that blockID holds keyboard focus with the given caret.
func (e *Editor) Focus(blockID string, caret Caret) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = blockID
	e.caret = caret
}

// Blur records that no block holds focus.
func (e *Editor) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = ""
	e.menus.Close()
}

// Focused returns the focused block and its caret.
func (e *Editor) Focused() (string, Caret, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused, e.caret, e.focused != ""
}

// ─────────────────────────────────────────────────────────────
// Mutation plumbing
// ─────────────────────────────────────────────────────────────

// outcome describes what a mutation changed, so notifications can run after
// the lock is released.
type outcome struct {
	changed   bool
	selection bool
	record    bool
	// relayout schedules a debounced relayout; otherwise pages are current.
	relayout  bool
	resync    []string
	resyncAll bool
	// quiet skips the change callbacks, e.g. for a load.
	quiet     bool

	pageID     string
	pageBlocks []domain.Block
}

// setBlocksLocked replaces the whole document and repaginates synchronously
// so the pages never go stale after a structural change.
func (e *Editor) setBlocksLocked(blocks []domain.Block) outcome {
	if len(blocks) == 0 && !e.allowEmpty {
		blocks = []domain.Block{domain.NewEmptyBlock()}
	}
	e.blocks = domain.CloneBlocks(blocks)
	e.pages = pagination.Paginate(e.blocks, e.params, e.measurer)
	e.dirty = true
	return outcome{changed: true, record: true}
}

// pageChangedLocked splices a page's new slice into the document. Blocks the
// page now holds are removed from every other page first, so a block that
// moved between pages is never duplicated.
func (e *Editor) pageChangedLocked(pi int, local []domain.Block) outcome {
	ids := make(map[string]bool, len(local))
	for _, b := range local {
		ids[b.ID] = true
	}
	var all []domain.Block
	for j := range e.pages {
		if j == pi {
			all = append(all, local...)
			continue
		}
		kept := e.pages[j].Blocks[:0:0]
		for _, b := range e.pages[j].Blocks {
			if !ids[b.ID] {
				kept = append(kept, b)
			}
		}
		e.pages[j].Blocks = kept
		all = append(all, kept...)
	}
	if len(all) == 0 && !e.allowEmpty {
		local = []domain.Block{domain.NewEmptyBlock()}
		all = local
	}
	e.pages[pi].Blocks = domain.CloneBlocks(local)
	e.blocks = domain.CloneBlocks(all)
	e.dirty = true
	return outcome{
		changed:    true,
		record:     true,
		relayout:   true,
		pageID:     e.pages[pi].ID,
		pageBlocks: domain.CloneBlocks(local),
	}
}

// updateBlocksLocked edits blocks in place without changing their order.
// fn reports whether it changed the block.
func (e *Editor) updateBlocksLocked(fn func(b *domain.Block) bool) outcome {
	changed := map[string]domain.Block{}
	for i := range e.blocks {
		if fn(&e.blocks[i]) {
			e.blocks[i].Content = content.Normalize(e.blocks[i].Content)
			changed[e.blocks[i].ID] = e.blocks[i].Clone()
		}
	}
	if len(changed) == 0 {
		return outcome{}
	}
	for p := range e.pages {
		for i, b := range e.pages[p].Blocks {
			if nb, ok := changed[b.ID]; ok {
				e.pages[p].Blocks[i] = nb.Clone()
			}
		}
	}
	e.dirty = true
	ids := make([]string, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	return outcome{changed: true, record: true, relayout: true, resync: ids}
}

func (e *Editor) pageIndexLocked(pageID string) int {
	for i, p := range e.pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}

// PageChanged merges a page's reported blocks into the document. It is the
// entry point for hosts that edit page slices themselves.
func (e *Editor) PageChanged(pageID string, blocks []domain.Block) bool {
	e.mu.Lock()
	pi := e.pageIndexLocked(pageID)
	if pi < 0 {
		e.mu.Unlock()
		log.Printf("[EDITOR] page change for unknown page %s ignored", pageID)
		return false
	}
	o := e.pageChangedLocked(pi, content.Sanitize(blocks, true))
	e.mu.Unlock()
	e.finish(o)
	return true
}

// finish runs the notifications for a mutation. It must be called without
// holding the lock.
func (e *Editor) finish(o outcome) {
	if o.selection {
		e.emit(EventSelection, e.Selected())
	}
	if !o.changed {
		return
	}
	blocks := e.Blocks()
	if o.record {
		e.history.Record(blocks)
	}

	reg := e.focus.Registry()
	if o.resyncAll {
		reg.Reconcile(blocks, true)
	} else {
		reg.Reconcile(blocks, false)
		if len(o.resync) > 0 {
			reg.Reconcile(pick(blocks, o.resync), true)
		}
	}

	if !o.quiet {
		if o.pageID != "" && e.onPageChange != nil {
			e.onPageChange(o.pageID, o.pageBlocks)
		}
		value := content.Encode(blocks)
		if e.onChange != nil {
			e.onChange(value)
		}
		e.emit(EventChanged, value)
	}

	if o.relayout {
		e.scheduler.Request()
	} else {
		e.emit(EventPages, e.Pages())
	}
	e.emitHistory()
}

func pick(blocks []domain.Block, ids []string) []domain.Block {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Block
	for _, b := range blocks {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

func clonePages(pages []domain.Page) []domain.Page {
	out := make([]domain.Page, len(pages))
	for i, p := range pages {
		out[i] = domain.Page{ID: p.ID, Blocks: domain.CloneBlocks(p.Blocks)}
	}
	return out
}
