package batchproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/validator"
)

// ErrMalformedPayload is returned when a webhook payload is neither a
// single batch object nor a JSON array of batch objects. It is the only
// error that fails an entire batch.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// payloadEnvelope is the wire shape of one inbound batch object.
type payloadEnvelope struct {
	WhaleTransactions []Transaction `json:"whaleTransactions"`
}

// extraction is the outcome of parsing and validating one raw payload.
type extraction struct {
	transactions      []Transaction // transactions that passed validation
	skippedInvalid    int           // transactions dropped by validation
	minBlock          int64         // lowest block number seen
	maxBlock          int64         // highest block number seen
	latestTimestampMS int64         // most recent block timestamp seen
}

// decodePayload unmarshals the raw body into its envelope form. The
// payload is a tagged union selected by its first non-space byte: '{'
// for a single batch object, '[' for an array of them. Anything else,
// including JSON of the wrong shape, is malformed.
func decodePayload(body []byte) ([]payloadEnvelope, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '{':
		var envelope payloadEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
		}
		// A single object must carry the whaleTransactions field, even
		// empty. Array elements without it are skipped per item instead.
		if envelope.WhaleTransactions == nil {
			return nil, fmt.Errorf("%w: object missing whaleTransactions", ErrMalformedPayload)
		}
		return []payloadEnvelope{envelope}, nil
	case '[':
		var envelopes []payloadEnvelope
		if err := json.Unmarshal(trimmed, &envelopes); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
		}
		return envelopes, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformedPayload)
	}
}

// extractBatch parses a raw webhook body into the set of valid
// transactions plus the block-range and timestamp metadata tracked
// alongside them.
//
// Per-transaction validation failures are logged and counted but never
// fail the batch; only an undecodable payload returns an error, which
// wraps ErrMalformedPayload.
func extractBatch(ctx context.Context, body []byte) (extraction, error) {
	envelopes, err := decodePayload(body)
	if err != nil {
		return extraction{}, err
	}

	var ext extraction
	for _, envelope := range envelopes {
		for _, tx := range envelope.WhaleTransactions {
			if err := validator.Validate(tx); err != nil {
				ext.skippedInvalid++
				logger.Warn(ctx, "skipping invalid transaction",
					"txHash", tx.Hash,
					"error", err.Error(),
				)
				continue
			}

			if len(ext.transactions) == 0 || tx.Block < ext.minBlock {
				ext.minBlock = tx.Block
			}
			if tx.Block > ext.maxBlock {
				ext.maxBlock = tx.Block
			}
			if tx.TimestampMS > ext.latestTimestampMS {
				ext.latestTimestampMS = tx.TimestampMS
			}

			ext.transactions = append(ext.transactions, tx)
		}
	}

	return ext, nil
}
