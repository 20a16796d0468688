package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pagedoc/internal/config"
	mcpserver "pagedoc/internal/mcp"
)

// ServeMCP runs pagedoc as a standalone MCP server on stdin/stdout.
// It initializes storage and services and runs until interrupted.
func ServeMCP(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := New(cfg, nil)
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Emitter:   a.emitter,
		Documents: a.docs,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
