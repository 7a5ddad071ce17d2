package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/cexwatch/internal/batchproc"
)

// batchSummariesSchema creates the append-only summary table. Flow and
// whale collections are stored as JSONB so arbitrary wei magnitudes
// survive as strings.
const batchSummariesSchema = `
	CREATE TABLE IF NOT EXISTS batch_summaries (
		batch_id            TEXT PRIMARY KEY,
		received_at         TIMESTAMPTZ NOT NULL,
		min_block           BIGINT      NOT NULL,
		max_block           BIGINT      NOT NULL,
		latest_timestamp_ms BIGINT      NOT NULL,
		transaction_count   INTEGER     NOT NULL,
		skipped_invalid     INTEGER     NOT NULL,
		parse_failures      INTEGER     NOT NULL,
		flows               JSONB       NOT NULL,
		total_inflow_wei    TEXT        NOT NULL,
		total_outflow_wei   TEXT        NOT NULL,
		whale_count         INTEGER     NOT NULL,
		whale_total_wei     TEXT        NOT NULL,
		top_whales          JSONB       NOT NULL,
		price               JSONB,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// InitSchema creates the summary table if it does not exist yet. Meant
// to be called once during startup.
func (c *client) InitSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, batchSummariesSchema); err != nil {
		return fmt.Errorf("init batch summaries schema: %w", err)
	}

	return nil
}

// SaveBatchSummary implements the batchproc.SummaryStorage interface.
//
// Each processed batch appends exactly one row; summaries are immutable
// and never updated afterwards.
func (c *client) SaveBatchSummary(ctx context.Context, summary batchproc.BatchSummary) error {
	flows, err := json.Marshal(summary.Flows)
	if err != nil {
		return fmt.Errorf("marshal flows: %w", err)
	}

	topWhales, err := json.Marshal(summary.TopWhales)
	if err != nil {
		return fmt.Errorf("marshal top whales: %w", err)
	}

	var price []byte
	if summary.Price != nil {
		price, err = json.Marshal(summary.Price)
		if err != nil {
			return fmt.Errorf("marshal price: %w", err)
		}
	}

	query := `
		INSERT INTO batch_summaries (
			batch_id, received_at, min_block, max_block, latest_timestamp_ms,
			transaction_count, skipped_invalid, parse_failures,
			flows, total_inflow_wei, total_outflow_wei,
			whale_count, whale_total_wei, top_whales, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = c.pool.Exec(ctx, query,
		summary.BatchID,
		summary.ReceivedAt,
		summary.MinBlock,
		summary.MaxBlock,
		summary.LatestTimestampMS,
		summary.TransactionCount,
		summary.SkippedInvalid,
		summary.ParseFailures,
		flows,
		summary.TotalInflowWei,
		summary.TotalOutflowWei,
		summary.WhaleCount,
		summary.WhaleTotalWei,
		topWhales,
		price,
	)
	if err != nil {
		return fmt.Errorf("insert batch summary: %w", err)
	}

	return nil
}

// Compile-time assertion to ensure *client satisfies the batchproc.SummaryStorage interface
var _ batchproc.SummaryStorage = new(client)
