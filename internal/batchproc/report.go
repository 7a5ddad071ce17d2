package batchproc

import (
	"context"

	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/whalewatch"

	"golang.org/x/sync/errgroup"
)

// FlowReport carries everything a sink needs to render the per-exchange
// flow summary of one batch.
type FlowReport struct {
	// BatchID identifies the batch the report was built from.
	BatchID string
	// MinBlock and MaxBlock bound the block range covered by the batch.
	MinBlock int64
	MaxBlock int64
	// LatestTimestampMS is the most recent block timestamp in the batch.
	LatestTimestampMS int64
	// TransactionCount is the number of valid transactions in the batch.
	TransactionCount int
	// Flows is the aggregated per-exchange flow accumulator.
	Flows *cexflow.Accumulator
	// Price is the market quote for the batch. Nil when unavailable, in
	// which case sinks must omit USD figures.
	Price *Price
}

// WhaleReport carries everything a sink needs to render the whale
// movement summary of one batch.
type WhaleReport struct {
	// BatchID identifies the batch the report was built from.
	BatchID string
	// MinBlock and MaxBlock bound the block range covered by the batch.
	MinBlock int64
	MaxBlock int64
	// LatestTimestampMS is the most recent block timestamp in the batch.
	LatestTimestampMS int64
	// Whales is the detector's report over the batch.
	Whales whalewatch.Report
	// Labels is the batch's address label index, used by sinks to display
	// exchange names instead of raw addresses.
	Labels cexflow.LabelIndex
	// Price is the market quote for the batch. Nil when unavailable, in
	// which case sinks must omit USD figures.
	Price *Price
}

// FlowReportNotifier defines a mechanism for delivering per-exchange
// flow reports to an external sink (e.g. a chat webhook).
type FlowReportNotifier interface {
	// NotifyFlowReport delivers one flow report.
	//
	// Returns an error if the delivery failed.
	NotifyFlowReport(ctx context.Context, report FlowReport) error
}

// WhaleReportNotifier defines a mechanism for delivering whale movement
// reports to an external sink (e.g. a chat webhook).
type WhaleReportNotifier interface {
	// NotifyWhaleReport delivers one whale report.
	//
	// Returns an error if the delivery failed.
	NotifyWhaleReport(ctx context.Context, report WhaleReport) error
}

// sendReports delivers the flow and whale reports for one batch.
//
// The two sends are independent and run concurrently: a failure on one
// channel never suppresses the other, and sender errors are logged
// rather than propagated so notification problems cannot fail a batch.
//
// Send conditions:
//   - the flow report is sent only when the accumulator recorded any
//     exchange activity;
//   - the whale report is sent only when at least one transfer met the
//     threshold.
func (s *service) sendReports(ctx context.Context, ext extraction, state *batchState, labels cexflow.LabelIndex, acc *cexflow.Accumulator, whales whalewatch.Report, price *Price) {
	g, gctx := errgroup.WithContext(ctx)

	if !acc.IsEmpty() {
		g.Go(func() error {
			report := FlowReport{
				BatchID:           state.batchID,
				MinBlock:          ext.minBlock,
				MaxBlock:          ext.maxBlock,
				LatestTimestampMS: ext.latestTimestampMS,
				TransactionCount:  len(ext.transactions),
				Flows:             acc,
				Price:             price,
			}

			if err := s.flowNotifier.NotifyFlowReport(gctx, report); err != nil {
				logger.Error(gctx, "error sending exchange flow report", "error", err)
			}
			return nil
		})
	}

	if whales.Count > 0 {
		g.Go(func() error {
			report := WhaleReport{
				BatchID:           state.batchID,
				MinBlock:          ext.minBlock,
				MaxBlock:          ext.maxBlock,
				LatestTimestampMS: ext.latestTimestampMS,
				Whales:            whales,
				Labels:            labels,
				Price:             price,
			}

			if err := s.whaleNotifier.NotifyWhaleReport(gctx, report); err != nil {
				logger.Error(gctx, "error sending whale report", "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}
