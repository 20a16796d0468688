package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pagedoc/internal/config"
	"pagedoc/internal/content"
	"pagedoc/internal/domain"
	"pagedoc/internal/pagination"
)

func addPaginate(topLevel *cobra.Command, cfg *config.Config) {
	var (
		heightsFile string
		capacity    float64
	)

	cmd := &cobra.Command{
		Use:   "paginate DOCUMENT",
		Short: "split a serialized document into pages",
		Long: `Reads a serialized block array (or "-" for stdin) and prints the page
partition as JSON. Block heights come from --heights, a JSON object mapping
block id to measured height; unmeasured blocks use pagination.default_height.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			heights := pagination.Heights{}
			if heightsFile != "" {
				data, err := readInput(cmd, heightsFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &heights); err != nil {
					return fmt.Errorf("parse heights: %w", err)
				}
			}
			params := cfg.Pagination.Params
			if cmd.Flags().Changed("capacity") {
				params.Capacity = capacity
			}
			return paginate(cmd.OutOrStdout(), string(doc), params, heights)
		},
	}
	cmd.Flags().StringVar(&heightsFile, "heights", "", "JSON file of block heights")
	cmd.Flags().Float64Var(&capacity, "capacity", 0, "page capacity, overrides pagination.capacity")
	topLevel.AddCommand(cmd)
}

type pageOut struct {
	ID       string   `json:"id"`
	BlockIDs []string `json:"blockIds"`
	Height   float64  `json:"height"`
}

func paginate(w io.Writer, doc string, params pagination.Params, heights pagination.Heights) error {
	blocks := content.Decode(doc, false)
	pages := pagination.Paginate(blocks, params, heights)

	out := make([]pageOut, len(pages))
	for i, p := range pages {
		out[i] = pageOut{ID: p.ID, BlockIDs: domain.BlockIDs(p.Blocks)}
		for j, b := range p.Blocks {
			h, ok := heights.Height(b.ID)
			if !ok {
				h = params.DefaultHeight
			}
			if j > 0 {
				out[i].Height += params.Gap
			}
			out[i].Height += h
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
