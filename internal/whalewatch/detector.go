// Package whalewatch detects unusually large native-currency transfers
// inside a transaction batch. A transfer qualifies as a whale movement
// when its value is greater than or equal to a configured threshold; the
// detector reports the total qualifying volume and the top movements
// ranked by value.
package whalewatch

import (
	"context"
	"math/big"
	"sort"

	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/wei"

	"github.com/shopspring/decimal"
)

// Transaction is the minimal view of a transfer the detector inspects.
type Transaction struct {
	// Hash uniquely identifies the transaction on chain.
	Hash string
	// From is the sender address.
	From string
	// To is the recipient address. Empty for contract creations.
	To string
	// ValueWei is the transferred value, encoded per the configured wire format.
	ValueWei string
}

// Record is a single qualifying transfer in a report, with its value
// already parsed into wei.
type Record struct {
	// Hash uniquely identifies the transaction on chain.
	Hash string
	// From is the sender address.
	From string
	// To is the recipient address. Empty for contract creations.
	To string
	// ValueWei is the transferred value in wei.
	ValueWei *big.Int
}

// Report summarizes the whale movements found in one batch.
type Report struct {
	// Count is the number of qualifying transfers in the batch, including
	// those beyond the top ranking.
	Count int
	// TotalValueWei is the sum of all qualifying transfer values.
	TotalValueWei *big.Int
	// Top holds the highest-value transfers in descending order, capped at
	// the detector's configured limit.
	Top []Record
}

// Detector screens transaction batches against a fixed value threshold.
type Detector struct {
	thresholdWei *big.Int
	topN         int
	parser       wei.Parser
}

// NewDetector builds a detector that flags transfers of at least threshold
// ETH and ranks the top topN of them. The threshold is converted to wei
// once at construction time.
func NewDetector(threshold decimal.Decimal, topN int, parser wei.Parser) *Detector {
	return &Detector{
		thresholdWei: wei.FromETH(threshold),
		topN:         topN,
		parser:       parser,
	}
}

// Detect scans txs and returns a report of every transfer whose value meets
// the threshold. Values that fail to parse are logged and treated as zero.
// The ranking is stable: transfers of equal value keep their batch order.
func (d *Detector) Detect(ctx context.Context, txs []Transaction) Report {
	report := Report{TotalValueWei: new(big.Int)}

	qualifying := make([]Record, 0)
	for _, tx := range txs {
		value, err := d.parser.Parse(tx.ValueWei)
		if err != nil {
			logger.Warn(ctx, "failed to parse transaction value",
				"txHash", tx.Hash,
				"value", tx.ValueWei,
				"error", err.Error(),
			)
			continue
		}

		if value.Cmp(d.thresholdWei) < 0 {
			continue
		}

		qualifying = append(qualifying, Record{
			Hash:     tx.Hash,
			From:     tx.From,
			To:       tx.To,
			ValueWei: value,
		})
		report.TotalValueWei.Add(report.TotalValueWei, value)
	}

	report.Count = len(qualifying)

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].ValueWei.Cmp(qualifying[j].ValueWei) > 0
	})

	if len(qualifying) > d.topN {
		qualifying = qualifying[:d.topN]
	}
	report.Top = qualifying

	return report
}
