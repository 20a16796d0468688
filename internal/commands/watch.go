package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pagedoc/internal/app"
	"pagedoc/internal/config"
	"pagedoc/internal/editor"
)

func addWatch(topLevel *cobra.Command, cfg *config.Config) {
	cmd := &cobra.Command{
		Use:   "watch [FILE]",
		Short: "live-reload a serialized document and print its pages on every write",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Watch.Path
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no file given and watch.path is not set")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// Only the file is watched: no database is opened.
			a := app.New(*cfg, nil)
			defer a.Shutdown(context.Background())

			out := cmd.OutOrStdout()
			ed, err := a.WatchFile(path, func(ed *editor.Editor) {
				pages := ed.Pages()
				fmt.Fprintf(out, "%s: %d blocks on %d pages\n", path, len(ed.Blocks()), len(pages))
				for _, p := range pages {
					fmt.Fprintf(out, "  %s: %d blocks\n", p.ID, len(p.Blocks))
				}
			})
			if err != nil {
				return err
			}
			defer ed.Close()

			<-ctx.Done()
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
