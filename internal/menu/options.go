package menu

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"pagedoc/internal/domain"
)

// Option is one entry of the slash menu.
type Option struct {
	Type        domain.BlockType `json:"type"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
}

var slashOptions = []Option{
	{Type: domain.BlockTypeText, Label: "Text", Description: "Start writing with plain text."},
	{Type: domain.BlockTypeH1, Label: "Heading 1", Description: "Large section heading."},
	{Type: domain.BlockTypeH2, Label: "Heading 2", Description: "Medium section heading."},
	{Type: domain.BlockTypeH3, Label: "Heading 3", Description: "Small section heading."},
	{Type: domain.BlockTypeBullet, Label: "Bulleted list", Description: "Create a simple list."},
	{Type: domain.BlockTypeNumber, Label: "Numbered list", Description: "Create a list with numbers."},
}

// SlashOptions returns every slash menu option in display order.
func SlashOptions() []Option {
	return append([]Option(nil), slashOptions...)
}

const (
	fuzzyMinQuery    = 3
	fuzzyMaxDistance = 2
)

// FilterSlash keeps the options whose label contains query, ignoring case.
// When nothing matches a query of three or more characters, options whose
// label prefix is within a small edit distance of the query are offered
// instead, closest first.
func FilterSlash(query string) []Option {
	q := strings.ToLower(query)
	var out []Option
	for _, o := range slashOptions {
		if strings.Contains(strings.ToLower(o.Label), q) {
			out = append(out, o)
		}
	}
	if len(out) > 0 || utf8.RuneCountInString(q) < fuzzyMinQuery {
		return out
	}

	type scored struct {
		opt  Option
		dist int
	}
	var near []scored
	for _, o := range slashOptions {
		d := levenshtein.ComputeDistance(q, prefix(strings.ToLower(o.Label), utf8.RuneCountInString(q)))
		if d <= fuzzyMaxDistance {
			near = append(near, scored{o, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, s := range near {
		out = append(out, s.opt)
	}
	return out
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// FilterMentions keeps the mentions whose name contains query, ignoring case.
func FilterMentions(mentions []domain.Mention, query string) []domain.Mention {
	q := strings.ToLower(query)
	var out []domain.Mention
	for _, m := range mentions {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}
