package discord

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/gabapcia/cexwatch/internal/batchproc"
)

const (
	// defaultTopFlowEntries caps how many exchanges the flow list shows
	// unless overridden via WithTopFlowEntries.
	defaultTopFlowEntries = 15

	// flowReportColor is the embed accent color for flow reports.
	flowReportColor = 0x627eea
)

// flowLine is one exchange's row in the report list, pre-sorted by
// combined volume.
type flowLine struct {
	label     string
	inflow    *big.Int
	outflow   *big.Int
	totalFlow *big.Int
}

// sortedFlowLines flattens the accumulator into lines ordered by total
// flow descending, ties broken alphabetically by label.
func sortedFlowLines(report batchproc.FlowReport) []flowLine {
	lines := make([]flowLine, 0, len(report.Flows.Flows))
	for label, flow := range report.Flows.Flows {
		lines = append(lines, flowLine{
			label:     label,
			inflow:    flow.Inflow,
			outflow:   flow.Outflow,
			totalFlow: new(big.Int).Add(flow.Inflow, flow.Outflow),
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		if cmp := lines[i].totalFlow.Cmp(lines[j].totalFlow); cmp != 0 {
			return cmp > 0
		}
		return lines[i].label < lines[j].label
	})

	return lines
}

// formatFlowValue renders one direction of an exchange's flow as
// "X ETH (*~$Y*)", omitting the USD figure when no price is available.
func formatFlowValue(value *big.Int, price *batchproc.Price) string {
	usd := "N/A USD"
	if price != nil {
		usd = weiToUSD(value, price.USD)
	}

	return fmt.Sprintf("%s (*~%s*)", formatWeiToETH(value), usd)
}

// formatFlowList builds the markdown list of per-exchange flows, capped
// at topN rows and Discord's field length limit, with a truncation
// notice when rows are dropped.
func formatFlowList(lines []flowLine, price *batchproc.Price, topN int) string {
	if len(lines) == 0 {
		return "`None detected in this batch`"
	}

	shown := lines
	truncated := false
	if len(shown) > topN {
		shown = shown[:topN]
		truncated = true
	}

	var b strings.Builder
	rendered := 0
	for _, line := range shown {
		row := fmt.Sprintf("* **%s**: \U0001F4E5 %s | \U0001F4E4 %s\n",
			line.label,
			formatFlowValue(line.inflow, price),
			formatFlowValue(line.outflow, price),
		)

		if b.Len()+len(row) > maxFieldValueLength {
			truncated = true
			break
		}
		b.WriteString(row)
		rendered++
	}

	out := b.String()
	if truncated {
		notice := fmt.Sprintf("\n*... (showing top %d of %d)*", rendered, len(lines))
		if len(out)+len(notice) > maxFieldValueLength {
			out = out[:maxFieldValueLength-len(notice)]
		}
		out += notice
	}

	return out
}

// formatPriceTrend renders the price suffix appended to the report
// title, including the 24h movement direction.
func formatPriceTrend(price *batchproc.Price) string {
	if price == nil {
		return " | ETH Price: N/A"
	}

	trendEmoji := "\U0001F4C8"
	sign := "+"
	if price.Change24h < 0 {
		trendEmoji = "\U0001F4C9"
		sign = ""
	}

	return fmt.Sprintf(" | ETH: %s (%s%s%.2f%% 24h)", formatUSD(price.USD), trendEmoji, sign, price.Change24h)
}

// buildFlowEmbed renders the full flow report embed.
func (c *client) buildFlowEmbed(report batchproc.FlowReport) embed {
	totals := fmt.Sprintf("Inflow: **%s**\nOutflow: **%s**",
		formatFlowValue(report.Flows.TotalInflow, report.Price),
		formatFlowValue(report.Flows.TotalOutflow, report.Price),
	)

	lines := sortedFlowLines(report)
	listValue := formatFlowList(lines, report.Price, c.topFlowEntries)
	if len(listValue) > maxFieldValueLength {
		listValue = listValue[:maxFieldValueLength]
	}

	return embed{
		Title: fmt.Sprintf("\U0001F4CA ETH CEX Flow Report: Blocks %s - %s%s",
			formatNumber(report.MinBlock),
			formatNumber(report.MaxBlock),
			formatPriceTrend(report.Price),
		),
		Color: flowReportColor,
		Fields: []embedField{
			{
				Name:  "Batch CEX Totals",
				Value: totals,
			},
			{
				Name:  fmt.Sprintf("\U0001F3E6 CEX Flows (%d Involved)", len(lines)),
				Value: listValue,
			},
		},
		Timestamp: time.UnixMilli(report.LatestTimestampMS).UTC().Format(time.RFC3339),
		Footer: &embedFooter{
			Text: fmt.Sprintf("ETH CEX Flow Monitor | %s Total TXs Analyzed in Batch", formatNumber(int64(report.TransactionCount))),
		},
	}
}

// NotifyFlowReport implements the batchproc.FlowReportNotifier interface,
// posting the flow report embed to the flow webhook channel. A missing
// webhook URL turns the send into a no-op.
func (c *client) NotifyFlowReport(ctx context.Context, report batchproc.FlowReport) error {
	if c.flowWebhookURL == "" {
		return nil
	}

	return c.send(ctx, c.flowWebhookURL, webhookMessage{
		Embeds: []embed{c.buildFlowEmbed(report)},
	})
}

// Compile-time assertion to ensure *client satisfies the batchproc.FlowReportNotifier interface
var _ batchproc.FlowReportNotifier = new(client)
