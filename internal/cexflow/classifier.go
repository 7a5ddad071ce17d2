package cexflow

import (
	"strings"

	"github.com/gabapcia/cexwatch/internal/pkg/types"
)

// Keywords is the static, case-insensitive set of known centralized-exchange
// label strings. It is built once at startup and immutable for the process
// lifetime. Membership is exact-match only: a label is CEX iff its lowercased
// form equals a known keyword, with no substring or fuzzy matching.
type Keywords struct {
	set types.Set[string]
}

// NewKeywords builds a keyword set from the given labels, lowercasing each
// one. Empty strings are ignored.
func NewKeywords(labels []string) Keywords {
	set := types.NewSet[string]()
	for _, label := range labels {
		if label == "" {
			continue
		}
		set.Add(strings.ToLower(label))
	}
	return Keywords{set: set}
}

// IsCEX reports whether the given label identifies a known centralized
// exchange. An empty label (address unlabeled or unresolved) is never CEX.
func (k Keywords) IsCEX(label string) bool {
	if label == "" {
		return false
	}

	_, ok := k.set[strings.ToLower(label)]
	return ok
}

// Len returns the number of configured keywords.
func (k Keywords) Len() int {
	return len(k.set)
}

// DefaultKeywords returns the built-in list of known exchange labels used
// when no explicit keyword list is configured. The labels match the ones
// used by the wallet-label collection.
func DefaultKeywords() []string {
	return []string{
		"bitfinex", "indodax", "htx", "gemini", "korbit", "binance", "okx",
		"gate.io", "kucoin", "lbank", "coinex", "bitmart", "bitrue", "bitkub",
		"bitget", "coinw", "bybit", "deribit", "mexc", "pionex", "hashkey exchange",
		"biconomy.com", "hotcoin", "coindcx", "phemex", "bingx", "crypto.com exchange",
		"deepcoin", "fameex", "toobit", "flipster", "blofin", "bitunix", "bvox",
		"orangex", "backpack exchange", "hashkey global", "ourbit", "arkham",
		"kraken", "coinbase", "robinhood", "bitstamp", "crypto.com",
	}
}
