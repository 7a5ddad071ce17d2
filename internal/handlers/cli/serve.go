package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/handlers/webhook"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"

	"github.com/urfave/cli/v3"
)

// serverShutdownTimeout bounds how long the webhook listener waits for
// in-flight requests when the serve command stops.
const serverShutdownTimeout = 10 * time.Second

// serveCommand returns a CLI command that starts the batch processing
// pipeline together with the webhook listener feeding it.
//
// Usage example:
//
//	cexwatch serve
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func serveCommand(bp batchproc.Service, server *webhook.Server) *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Description: "Starts the webhook listener and the batch processing pipeline.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := bp.Start(ctx); err != nil {
				return err
			}
			defer bp.Close()

			server.Start(ctx)

			<-quit

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "error shutting down webhook server", "error", err)
			}

			return nil
		},
	}
}

// replayCommand returns a CLI command that runs one captured payload
// file through the same pipeline the webhook feeds, then exits. Useful
// for re-processing a batch that was dropped or captured for debugging.
//
// Usage example:
//
//	cexwatch replay --file payload.json
func replayCommand(bp batchproc.Service) *cli.Command {
	return &cli.Command{
		Name:        "replay",
		Description: "Processes a single captured webhook payload file through the pipeline.",
		Usage:       "Runs one payload file synchronously and exits. Must provide the file path.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the captured payload file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			payload, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}

			return bp.ProcessPayload(ctx, payload)
		},
	}
}
