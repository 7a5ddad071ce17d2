package batchproc

import (
	"context"

	"github.com/gabapcia/cexwatch/internal/pkg/logger"
)

// PriceService defines the contract for fetching the current market
// quote of the native currency.
type PriceService interface {
	// CurrentPrice returns the current USD price and 24-hour change.
	//
	// Returns an error if the quote could not be obtained.
	CurrentPrice(ctx context.Context) (Price, error)
}

// fetchPrice obtains the market quote used by reports and the persisted
// summary. The quote is fetched once per batch.
//
// A price service failure degrades rather than fails the batch: the
// error is logged and nil is returned, in which case reports omit USD
// figures.
func (s *service) fetchPrice(ctx context.Context) *Price {
	price, err := s.priceService.CurrentPrice(ctx)
	if err != nil {
		logger.Warn(ctx, "price lookup failed, reports will omit USD figures", "error", err)
		return nil
	}

	return &price
}
