package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/whalewatch"
)

const (
	// maxWhaleLines caps how many transfers the whale list shows.
	maxWhaleLines = 20

	// whaleAlertColor is the embed accent color for whale alerts.
	whaleAlertColor = 0xff0000
)

// formatParticipant renders one side of a transfer: the bolded exchange
// label when the address is known, otherwise the abbreviated address in
// backticks.
func formatParticipant(address string, labels cexflow.LabelIndex) string {
	if label, ok := labels.Resolve(address); ok {
		return fmt.Sprintf("**%s**", label)
	}
	if address == "" {
		return "`N/A`"
	}

	return fmt.Sprintf("`%s`", shortenAddress(address, 6, 4))
}

// formatWhaleList builds the markdown list of the largest transfers,
// capped at maxWhaleLines rows and Discord's field length limit.
//
// Row format: "• TxLink: Amount ETH (~$USD) From: X -> To: Y".
func formatWhaleList(records []whalewatch.Record, labels cexflow.LabelIndex, price *batchproc.Price) string {
	if len(records) == 0 {
		return "`None detected meeting threshold in this batch.`"
	}

	var b strings.Builder
	lines := 0
	for _, record := range records {
		if lines >= maxWhaleLines {
			b.WriteString(fmt.Sprintf("\n*... (showing top %d of %d)*", lines, len(records)))
			break
		}

		usd := "N/A USD"
		if price != nil {
			usd = weiToUSD(record.ValueWei, price.USD)
		}

		row := fmt.Sprintf("• %s: **%s** (*~%s*) From: %s -> To: %s\n",
			formatTxLink(record.Hash),
			formatWeiToETH(record.ValueWei),
			usd,
			formatParticipant(record.From, labels),
			formatParticipant(record.To, labels),
		)

		if b.Len()+len(row) > maxFieldValueLength {
			b.WriteString("\n*... (list shortened due to length limit)*")
			break
		}
		b.WriteString(row)
		lines++
	}

	return b.String()
}

// formatBlockRange renders the block span covered by the report,
// collapsing single-block batches.
func formatBlockRange(minBlock, maxBlock int64) string {
	if minBlock == maxBlock {
		return fmt.Sprintf("Block #%s", formatNumber(minBlock))
	}

	return fmt.Sprintf("Blocks #%s - #%s", formatNumber(minBlock), formatNumber(maxBlock))
}

// buildWhaleEmbed renders the full whale alert embed.
func buildWhaleEmbed(report batchproc.WhaleReport) embed {
	blockRange := formatBlockRange(report.MinBlock, report.MaxBlock)

	totalUSD := "N/A USD"
	if report.Price != nil {
		totalUSD = weiToUSD(report.Whales.TotalValueWei, report.Price.USD)
	}

	return embed{
		Title: fmt.Sprintf("\U0001F6A8\U0001F6A8\U0001F6A8 ETH Whale Alert Summary: %s (%s TXs)",
			blockRange,
			formatNumber(int64(report.Whales.Count)),
		),
		Description: fmt.Sprintf("Detected **%s** large transfer(s) in %s.\nTotal value: **%s** (*~%s*)",
			formatNumber(int64(report.Whales.Count)),
			blockRange,
			formatWeiToETH(report.Whales.TotalValueWei),
			totalUSD,
		),
		Color: whaleAlertColor,
		Fields: []embedField{
			{
				Name:  fmt.Sprintf("Largest Transactions (up to %d)", len(report.Whales.Top)),
				Value: formatWhaleList(report.Whales.Top, report.Labels, report.Price),
			},
		},
		Timestamp: time.UnixMilli(report.LatestTimestampMS).UTC().Format(time.RFC3339),
		Footer: &embedFooter{
			Text: "ETH Whale Monitor",
		},
	}
}

// NotifyWhaleReport implements the batchproc.WhaleReportNotifier
// interface, posting the whale alert embed to the whale webhook channel.
// A missing webhook URL turns the send into a no-op.
func (c *client) NotifyWhaleReport(ctx context.Context, report batchproc.WhaleReport) error {
	if c.whaleWebhookURL == "" {
		return nil
	}

	return c.send(ctx, c.whaleWebhookURL, webhookMessage{
		Embeds: []embed{buildWhaleEmbed(report)},
	})
}

// Compile-time assertion to ensure *client satisfies the batchproc.WhaleReportNotifier interface
var _ batchproc.WhaleReportNotifier = new(client)
