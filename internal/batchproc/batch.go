// Package batchproc coordinates the per-batch processing pipeline: it
// extracts transactions from raw webhook payloads, resolves exchange
// labels, runs flow aggregation and whale detection, emits reports, and
// persists one summary document per batch.
package batchproc

import "time"

// Transaction is a single transfer as delivered by the inbound webhook.
//
// Validation tags enforce the fields a transaction must carry to be
// processable; transactions failing validation are skipped, never fatal
// to the batch.
type Transaction struct {
	// Block is the block number the transaction was included in.
	Block int64 `json:"block" validate:"required"`
	// TimestampMS is the block timestamp in milliseconds since epoch.
	TimestampMS int64 `json:"timestamp_ms" validate:"required"`
	// Hash uniquely identifies the transaction on chain.
	Hash string `json:"txHash" validate:"required"`
	// From is the sender address.
	From string `json:"from" validate:"required"`
	// To is the recipient address. Empty for contract creations.
	To string `json:"to"`
	// ValueWei is the transferred value, encoded per the configured wire format.
	ValueWei string `json:"value_wei" validate:"required"`
}

// FlowEntry is the persisted per-exchange flow line of a batch summary.
// Values are wei rendered as decimal strings so arbitrary magnitudes
// survive serialization.
type FlowEntry struct {
	Label      string `json:"label"`
	InflowWei  string `json:"inflow_wei"`
	OutflowWei string `json:"outflow_wei"`
}

// WhaleEntry is one persisted whale transfer of a batch summary.
type WhaleEntry struct {
	Hash     string `json:"tx_hash"`
	From     string `json:"from"`
	To       string `json:"to"`
	ValueWei string `json:"value_wei"`
}

// Price is a point-in-time market quote for the native currency.
type Price struct {
	// USD is the current price in US dollars.
	USD float64 `json:"usd"`
	// Change24h is the 24-hour price change percentage.
	Change24h float64 `json:"change_24h"`
}

// BatchSummary is the immutable per-batch document appended to the
// summary store after processing completes. It captures everything the
// pipeline derived from one webhook payload.
type BatchSummary struct {
	// BatchID is the unique identifier assigned when the batch was received.
	BatchID string `json:"batch_id"`
	// ReceivedAt is when the payload entered the pipeline.
	ReceivedAt time.Time `json:"received_at"`
	// MinBlock and MaxBlock bound the block range seen in the batch.
	MinBlock int64 `json:"min_block"`
	MaxBlock int64 `json:"max_block"`
	// LatestTimestampMS is the most recent block timestamp in the batch.
	LatestTimestampMS int64 `json:"latest_timestamp_ms"`
	// TransactionCount is the number of transactions that passed validation.
	TransactionCount int `json:"transaction_count"`
	// SkippedInvalid counts transactions dropped by payload validation.
	SkippedInvalid int `json:"skipped_invalid"`
	// ParseFailures counts values the aggregator could not parse.
	ParseFailures int `json:"parse_failures"`

	// Flows holds the per-exchange inflow/outflow volumes.
	Flows []FlowEntry `json:"flows"`
	// TotalInflowWei and TotalOutflowWei are the batch-wide flow totals.
	TotalInflowWei  string `json:"total_inflow_wei"`
	TotalOutflowWei string `json:"total_outflow_wei"`

	// WhaleCount is the number of transfers that met the whale threshold.
	WhaleCount int `json:"whale_count"`
	// WhaleTotalWei is the combined value of all qualifying whale transfers.
	WhaleTotalWei string `json:"whale_total_wei"`
	// TopWhales holds the highest-value whale transfers, capped at the
	// detector's configured limit.
	TopWhales []WhaleEntry `json:"top_whales"`

	// Price is the market quote fetched for the batch. Nil when the price
	// service was unavailable.
	Price *Price `json:"price,omitempty"`
}
