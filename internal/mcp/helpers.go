package mcpserver

import (
	"strings"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/pagination"
)

// blockSummary is the agent-facing view of a block: inline styles are
// rendered as markup so a single string round-trips through set_block_text.
type blockSummary struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Text   string `json:"text"`
	Markup string `json:"markup"`
	Align  string `json:"align,omitempty"`
	Indent int    `json:"indent,omitempty"`
	Page   string `json:"page,omitempty"`
	Number int    `json:"number,omitempty"`
}

func summarizeBlocks(blocks []domain.Block, pages []domain.Page) []blockSummary {
	out := make([]blockSummary, len(blocks))
	for i, b := range blocks {
		out[i] = blockSummary{
			ID:     b.ID,
			Type:   string(b.Type),
			Text:   content.PlainText(b.Content),
			Markup: content.ToMarkup(b.Content),
			Align:  string(b.Align),
			Indent: b.Indent,
		}
		if p := pagination.PageOf(pages, b.ID); p >= 0 {
			out[i].Page = pages[p].ID
		}
		if b.Type == domain.BlockTypeNumber {
			out[i].Number = content.NumberLabel(blocks, i)
		}
	}
	return out
}

// pageSummary lists the block ids laid out on one page.
type pageSummary struct {
	ID       string   `json:"id"`
	BlockIDs []string `json:"blockIds"`
}

func summarizePages(pages []domain.Page) []pageSummary {
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = pageSummary{ID: p.ID, BlockIDs: domain.BlockIDs(p.Blocks)}
	}
	return out
}

// splitIDs parses a comma-separated id list, dropping blanks.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}
