package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

// setLabelCommand returns a CLI command that attaches an exchange label
// to an on-chain address, making transfers touching it classify as
// exchange flow.
//
// Usage example:
//
//	cexwatch label --address 0xABC123... --label "Binance 14"
func setLabelCommand(labels LabelAdmin) *cli.Command {
	return &cli.Command{
		Name:        "label",
		Description: "Attach an exchange label to an address used for flow classification.",
		Usage:       "Labels an address as belonging to an exchange. Must provide both address and label.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "On-chain address to label",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "label",
				Usage:    "Exchange label to attach (e.g., \"Binance 14\")",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				address = c.String("address")
				label   = c.String("label")
			)

			return labels.SetLabel(ctx, address, label)
		},
	}
}

// deleteLabelCommand returns a CLI command that removes the exchange
// label attached to an address.
//
// Usage example:
//
//	cexwatch unlabel --address 0xABC123...
func deleteLabelCommand(labels LabelAdmin) *cli.Command {
	return &cli.Command{
		Name:        "unlabel",
		Description: "Remove the exchange label attached to an address.",
		Usage:       "Stops classifying the address as an exchange. Must provide the address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "On-chain address to unlabel",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return labels.DeleteLabel(ctx, c.String("address"))
		},
	}
}
