// Package menu implements the slash command and mention menus: opening on a
// trigger character, tracking the query typed after it, filtering and
// keyboard navigation.
package menu

import (
	"strings"
	"sync"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

type Kind int

const (
	None Kind = iota
	Slash
	Mention
)

const (
	SlashTrigger   = "/"
	MentionTrigger = "@"
)

func (k Kind) trigger() string {
	if k == Mention {
		return MentionTrigger
	}
	return SlashTrigger
}

// State is a snapshot of the open menu.
type State struct {
	Kind     Kind             `json:"kind"`
	BlockID  string           `json:"blockId"`
	Query    string           `json:"query"`
	Index    int              `json:"index"`
	Options  []Option         `json:"options,omitempty"`
	Mentions []domain.Mention `json:"mentions,omitempty"`
}

// Choice is the option picked from a menu.
type Choice struct {
	Kind    Kind
	BlockID string
	Query   string
	Option  Option
	Mention domain.Mention
}

// Controller holds at most one open menu, anchored to a block.
type Controller struct {
	mu       sync.Mutex
	kind     Kind
	blockID  string
	query    string
	index    int
	mentions []domain.Mention
}

func NewController(mentions []domain.Mention) *Controller {
	return &Controller{mentions: append([]domain.Mention(nil), mentions...)}
}

// SetMentions replaces the insertable mention list.
func (c *Controller) SetMentions(mentions []domain.Mention) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mentions = append([]domain.Mention(nil), mentions...)
	c.index = 0
}

// Open anchors a menu of the given kind to blockID with an empty query.
func (c *Controller) Open(kind Kind, blockID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = kind
	c.blockID = blockID
	c.query = ""
	c.index = 0
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = None
	c.blockID = ""
	c.query = ""
	c.index = 0
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind != None
}

// OpenOn reports whether a menu is anchored to blockID.
func (c *Controller) OpenOn(blockID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind != None && c.blockID == blockID
}

// Input updates the query from the live text of blockID: everything after
// the last trigger character. The menu closes when the trigger is gone.
// Input for other blocks is ignored.
func (c *Controller) Input(blockID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind == None || c.blockID != blockID {
		return
	}
	i := strings.LastIndex(text, c.kind.trigger())
	if i < 0 {
		c.kind, c.blockID, c.query, c.index = None, "", "", 0
		return
	}
	q := text[i+len(c.kind.trigger()):]
	if q != c.query {
		c.query = q
		c.index = 0
	}
}

func (c *Controller) countLocked() int {
	switch c.kind {
	case Slash:
		return len(FilterSlash(c.query))
	case Mention:
		return len(FilterMentions(c.mentions, c.query))
	}
	return 0
}

// Next highlights the following option, wrapping around.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.countLocked(); n > 0 {
		c.index = (c.index + 1) % n
	}
}

// Prev highlights the preceding option, wrapping around.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.countLocked(); n > 0 {
		c.index = (c.index - 1 + n) % n
	}
}

// State returns the open menu with its filtered options.
func (c *Controller) State() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind == None {
		return State{}, false
	}
	s := State{Kind: c.kind, BlockID: c.blockID, Query: c.query, Index: c.index}
	if c.kind == Slash {
		s.Options = FilterSlash(c.query)
	} else {
		s.Mentions = FilterMentions(c.mentions, c.query)
	}
	return s, true
}

// Choose returns the highlighted option and closes the menu. It reports
// false when no option is highlighted; the menu stays open in that case.
func (c *Controller) Choose() (Choice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := Choice{Kind: c.kind, BlockID: c.blockID, Query: c.query}
	switch c.kind {
	case Slash:
		opts := FilterSlash(c.query)
		if c.index >= len(opts) {
			return Choice{}, false
		}
		ch.Option = opts[c.index]
	case Mention:
		ms := FilterMentions(c.mentions, c.query)
		if c.index >= len(ms) {
			return Choice{}, false
		}
		ch.Mention = ms[c.index]
	default:
		return Choice{}, false
	}
	c.kind, c.blockID, c.query, c.index = None, "", "", 0
	return ch, true
}

// Apply performs the choice on its block: a slash option removes the typed
// command and retypes the block, a mention replaces the typed query with a
// {{id}} placeholder.
func (ch Choice) Apply(b domain.Block) domain.Block {
	b = b.Clone()
	token := ch.Kind.trigger() + ch.Query
	at, ok := lastOffset(b.Content, token)
	if ok {
		b.Content = content.DeleteRange(b.Content, at, at+content.TextLength(token))
	}
	switch ch.Kind {
	case Slash:
		b.Type = ch.Option.Type
	case Mention:
		if ok {
			b.Content = content.InsertText(b.Content, at, Placeholder(ch.Mention.ID))
		}
	}
	return b
}

// Placeholder is the text inserted for a mention.
func Placeholder(id string) string {
	return "{{" + id + "}}"
}

func lastOffset(segs []domain.TextSegment, token string) (int, bool) {
	text := content.PlainText(segs)
	i := strings.LastIndex(text, token)
	if i < 0 {
		return 0, false
	}
	return content.TextLength(text[:i]), true
}
