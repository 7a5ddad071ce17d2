package batchproc

import (
	"context"
	"sort"

	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/whalewatch"
)

// SummaryStorage defines the contract for persisting batch summaries.
//
// The store is append-only: one immutable document per processed batch.
type SummaryStorage interface {
	// SaveBatchSummary appends one batch summary document.
	//
	// Returns an error if the write failed.
	SaveBatchSummary(ctx context.Context, summary BatchSummary) error
}

// buildSummary assembles the immutable summary document for a processed
// batch. Flow entries are ordered by label so the persisted document is
// deterministic for a given batch.
func buildSummary(state *batchState, ext extraction, acc *cexflow.Accumulator, whales whalewatch.Report, price *Price) BatchSummary {
	flows := make([]FlowEntry, 0, len(acc.Flows))
	for label, flow := range acc.Flows {
		flows = append(flows, FlowEntry{
			Label:      label,
			InflowWei:  flow.Inflow.String(),
			OutflowWei: flow.Outflow.String(),
		})
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Label < flows[j].Label })

	topWhales := make([]WhaleEntry, 0, len(whales.Top))
	for _, record := range whales.Top {
		topWhales = append(topWhales, WhaleEntry{
			Hash:     record.Hash,
			From:     record.From,
			To:       record.To,
			ValueWei: record.ValueWei.String(),
		})
	}

	return BatchSummary{
		BatchID:           state.batchID,
		ReceivedAt:        state.receivedAt,
		MinBlock:          ext.minBlock,
		MaxBlock:          ext.maxBlock,
		LatestTimestampMS: ext.latestTimestampMS,
		TransactionCount:  len(ext.transactions),
		SkippedInvalid:    ext.skippedInvalid,
		ParseFailures:     acc.ParseFailures,
		Flows:             flows,
		TotalInflowWei:    acc.TotalInflow.String(),
		TotalOutflowWei:   acc.TotalOutflow.String(),
		WhaleCount:        whales.Count,
		WhaleTotalWei:     whales.TotalValueWei.String(),
		TopWhales:         topWhales,
		Price:             price,
	}
}

// persistSummary appends the batch summary to the store, retrying
// transient failures.
//
// A persistence failure degrades rather than fails the batch: reports
// already sent are never rolled back, the error is only logged.
func (s *service) persistSummary(ctx context.Context, summary BatchSummary) {
	err := s.storageRetry.Execute(ctx, func() error {
		return s.summaryStorage.SaveBatchSummary(ctx, summary)
	})
	if err != nil {
		logger.Error(ctx, "error persisting batch summary", "error", err)
	}
}
