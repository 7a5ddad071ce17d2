package cli

import (
	"context"
	"os"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/handlers/webhook"

	"github.com/urfave/cli/v3"
)

// LabelAdmin defines the administrative operations for managing the
// exchange address labels the pipeline classifies against.
type LabelAdmin interface {
	// SetLabel attaches an exchange label to an address.
	SetLabel(ctx context.Context, address, label string) error

	// DeleteLabel removes the exchange label attached to an address.
	DeleteLabel(ctx context.Context, address string) error
}

// Run initializes and executes the cexwatch CLI application.
//
// It registers all available commands, including:
//
//   - `serve`: Starts the webhook listener and the batch processing pipeline.
//   - `replay`: Runs one captured payload file through the pipeline.
//   - `label`: Attaches an exchange label to an address.
//   - `unlabel`: Removes the exchange label from an address.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - bp: The batchproc service implementation used by the pipeline commands.
//   - server: The webhook server started by the serve command.
//   - labels: The label administration implementation used by label commands.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, bp batchproc.Service, server *webhook.Server, labels LabelAdmin) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "cexwatch",
		Description:           "Command-line interface for managing and running the cexwatch pipeline.",
		Usage:                 "cexwatch [command] [flags]",
		Commands: []*cli.Command{
			serveCommand(bp, server),
			replayCommand(bp),
			setLabelCommand(labels),
			deleteLabelCommand(labels),
		},
	}

	return app.Run(ctx, os.Args)
}
