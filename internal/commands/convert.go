package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

const (
	formatMarkup = "markup"
	formatJSON   = "json"
)

func addConvert(topLevel *cobra.Command) {
	var to string

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "convert between serialized blocks and inline markup",
		Long: `--to markup prints one line per block: the block type, a tab, then the
content as inline markup (<b>, <u>). --to json reads such lines back, or plain
lines as text blocks, and prints the serialized block array. FILE may be "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return convert(cmd.OutOrStdout(), string(data), to)
		},
	}
	cmd.Flags().StringVar(&to, "to", formatMarkup, "output format: markup or json")
	topLevel.AddCommand(cmd)
}

func convert(w io.Writer, input, to string) error {
	switch to {
	case formatMarkup:
		for _, b := range content.Decode(input, true) {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", b.Type, content.ToMarkup(b.Content)); err != nil {
				return err
			}
		}
		return nil
	case formatJSON:
		_, err := fmt.Fprintln(w, content.Encode(parseMarkupLines(input)))
		return err
	}
	return fmt.Errorf("unknown format %q (want %s or %s)", to, formatMarkup, formatJSON)
}

// parseMarkupLines turns "type<TAB>markup" lines into blocks. Lines without
// a known type prefix become text blocks; blank lines are skipped.
func parseMarkupLines(input string) []domain.Block {
	var blocks []domain.Block
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, markup := domain.BlockTypeText, line
		if prefix, rest, ok := strings.Cut(line, "\t"); ok && domain.BlockType(prefix).Valid() {
			t, markup = domain.BlockType(prefix), rest
		}
		blocks = append(blocks, domain.Block{
			ID:      domain.NewBlockID(),
			Type:    t,
			Content: content.FromMarkup(markup),
		})
	}
	if len(blocks) == 0 {
		blocks = []domain.Block{domain.NewEmptyBlock()}
	}
	return blocks
}
