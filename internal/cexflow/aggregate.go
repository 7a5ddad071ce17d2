// Package cexflow is the batch classification and aggregation engine. Given
// a transaction batch and a per-batch address label index, it classifies
// each transaction's endpoints against the known exchange keyword set and
// accumulates exact per-exchange inflow/outflow totals in wei.
//
// All arithmetic is exact big.Int addition; values never pass through
// floating point during aggregation. USD conversion happens only at report
// formatting time, on already-final totals.
package cexflow

import (
	"context"
	"math/big"

	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/types"
	"github.com/gabapcia/cexwatch/internal/pkg/wei"
)

// Flow holds the monotonically non-decreasing inflow/outflow totals
// accumulated for a single exchange label over one batch pass.
type Flow struct {
	Inflow  *big.Int // wei moved into the exchange
	Outflow *big.Int // wei moved out of the exchange
}

// newFlow returns a Flow with zeroed totals.
func newFlow() *Flow {
	return &Flow{
		Inflow:  new(big.Int),
		Outflow: new(big.Int),
	}
}

// Accumulator is the result of one aggregation pass. Flows is keyed by
// exchange label in its original case as resolved from the label store.
// TotalInflow and TotalOutflow are the sums of all per-label inflow and
// outflow values, an invariant the tests check as a round trip.
type Accumulator struct {
	Flows         map[string]*Flow
	TotalInflow   *big.Int
	TotalOutflow  *big.Int
	ParseFailures int // transactions whose value could not be parsed and counted as zero
}

// IsEmpty reports whether the pass produced no flow at all: no labels
// touched and both totals zero.
func (a *Accumulator) IsEmpty() bool {
	return len(a.Flows) == 0 && a.TotalInflow.Sign() == 0 && a.TotalOutflow.Sign() == 0
}

// Aggregator classifies and accumulates CEX flows. It is immutable after
// construction and safe for concurrent use across batches; each Aggregate
// call returns a fresh Accumulator.
type Aggregator struct {
	keywords Keywords
	parser   wei.Parser
}

// NewAggregator returns an Aggregator using the given exchange keyword set
// and value parser.
func NewAggregator(keywords Keywords, parser wei.Parser) *Aggregator {
	return &Aggregator{
		keywords: keywords,
		parser:   parser,
	}
}

// Aggregate runs one classification pass over the batch. Per transaction:
//
//  1. The value is parsed exactly; malformed values count as zero and are
//     recorded as parse failures, never failing the batch.
//  2. Zero-value transfers are skipped entirely.
//  3. Both endpoints are resolved against the label index and classified
//     against the keyword set, then the flow decision table applies:
//     CEX → external adds to the sender's outflow; external → CEX adds to
//     the recipient's inflow; transfers between two different exchanges
//     count on both legs; transfers within the same exchange and pure
//     peer-to-peer transfers contribute nothing.
//
// The input slice is never mutated, so running Aggregate twice over the
// same batch yields identical output.
func (a *Aggregator) Aggregate(ctx context.Context, txs []Transaction, labels LabelIndex) *Accumulator {
	var (
		flows = types.NewDefaultMap[string](newFlow)

		totalInflow   = new(big.Int)
		totalOutflow  = new(big.Int)
		parseFailures = 0
	)

	for _, tx := range txs {
		value, err := a.parser.Parse(tx.ValueWei)
		if err != nil {
			logger.Warn(ctx, "unparseable transaction value, counting as zero",
				"tx.hash", tx.Hash,
				"tx.value", tx.ValueWei,
				"error", err,
			)
			parseFailures++
		}

		// Zero transfers never count as flow.
		if value.Sign() == 0 {
			continue
		}

		fromLabel, _ := labels.Resolve(tx.From)
		toLabel, _ := labels.Resolve(tx.To)

		fromIsCEX := a.keywords.IsCEX(fromLabel)
		toIsCEX := a.keywords.IsCEX(toLabel)

		switch {
		case fromIsCEX && !toIsCEX:
			flow := flows.Get(fromLabel)
			flow.Outflow.Add(flow.Outflow, value)
			totalOutflow.Add(totalOutflow, value)

		case !fromIsCEX && toIsCEX:
			flow := flows.Get(toLabel)
			flow.Inflow.Add(flow.Inflow, value)
			totalInflow.Add(totalInflow, value)

		case fromIsCEX && toIsCEX && fromLabel != toLabel:
			// Inter-exchange transfer counts on both legs.
			outFlow := flows.Get(fromLabel)
			outFlow.Outflow.Add(outFlow.Outflow, value)
			totalOutflow.Add(totalOutflow, value)

			inFlow := flows.Get(toLabel)
			inFlow.Inflow.Add(inFlow.Inflow, value)
			totalInflow.Add(totalInflow, value)

		default:
			// Same-exchange housekeeping or pure peer-to-peer transfer.
		}
	}

	return &Accumulator{
		Flows:         flows.ToMap(),
		TotalInflow:   totalInflow,
		TotalOutflow:  totalOutflow,
		ParseFailures: parseFailures,
	}
}
