package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sceneseek/internal/adapters/driving/mcp"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can find
scenes by image and index the library.

By default the server communicates over stdio. Use --port to serve HTTP
instead. When the scheduler is enabled in settings, periodic indexing runs
alongside the server; --watch also indexes new videos as they appear.

Examples:
  # Stdio mode (for desktop assistants)
  sceneseek serve

  # HTTP mode with library watching
  sceneseek serve --port 8080 --watch

Assistant configuration:
  {
    "mcpServers": {
      "sceneseek": {
        "command": "/path/to/sceneseek",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "index new library videos as they appear")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if serveWatch && (indexer == nil || libraryPath == "") {
		return errors.New("watching requires an index service and a library path")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:     queryService,
		Indexer:   indexer,
		Inspector: inspector,
	})
	if err != nil {
		return err
	}

	// The server ending stops the scheduler and watcher.
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Start(ctx)
		})
		defer scheduler.Stop() //nolint:errcheck
	}

	if serveWatch {
		w := newWatcher(libraryPath, 0, nil)
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		if servePort > 0 {
			addr := fmt.Sprintf(":%d", servePort)
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
