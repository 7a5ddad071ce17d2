package batchproc

import (
	"context"
	"strings"

	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/types"
)

// LabelStore defines the contract for resolving exchange labels attached
// to on-chain addresses.
//
// Implementations are expected to answer one batched lookup per batch;
// addresses without a label are simply absent from the result, never an
// error.
type LabelStore interface {
	// FetchLabels returns the label for every address in the given list
	// that has one. Unlabeled addresses are omitted from the result map.
	//
	// Parameters:
	//   - ctx: context for cancellation and timeout control.
	//   - addresses: lowercased addresses to look up.
	//
	// Returns:
	//   - A map of address to label, covering only labeled addresses.
	//   - An error if the lookup itself fails.
	FetchLabels(ctx context.Context, addresses []string) (map[string]string, error)
}

// resolveLabels builds the label index for a batch with a single batched
// store lookup over the unique set of sender and recipient addresses.
//
// A store failure degrades rather than fails the batch: the error is
// logged and an empty index is returned, under which no transaction
// classifies as exchange flow.
func (s *service) resolveLabels(ctx context.Context, txs []Transaction) cexflow.LabelIndex {
	addressSet := types.NewSet[string]()
	for _, tx := range txs {
		addressSet.Add(strings.ToLower(tx.From))
		if tx.To != "" {
			addressSet.Add(strings.ToLower(tx.To))
		}
	}

	labels, err := s.labelStore.FetchLabels(ctx, addressSet.ToSlice())
	if err != nil {
		logger.Error(ctx, "label store lookup failed, continuing without labels",
			"addresses", len(addressSet),
			"error", err,
		)
		return cexflow.NewLabelIndex(nil)
	}

	return cexflow.NewLabelIndex(labels)
}
