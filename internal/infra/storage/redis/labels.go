package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabapcia/cexwatch/internal/batchproc"
)

// labelStoragePrefix defines the base key prefix used for storing
// exchange address labels in Redis.
const labelStoragePrefix = "cex"

// labelStorageKey returns the Redis key holding the label for the
// specified address.
//
// Format: "cex:label:{address}"
func labelStorageKey(address string) string {
	return fmt.Sprintf("%s:label:%s", labelStoragePrefix, strings.ToLower(address))
}

// FetchLabels implements the batchproc.LabelStore interface using Redis
// string keys.
//
// It resolves the exchange label for every address in the provided list
// with a single MGET call. Addresses without a label simply do not
// appear in the result; they are never an error.
//
// Parameters:
//   - ctx: context used for cancellation and timeout control.
//   - addresses: lowercased addresses to look up.
//
// Returns:
//   - A map of address to label, covering only labeled addresses.
//   - An error if the Redis query fails or cannot be completed.
func (c *client) FetchLabels(ctx context.Context, addresses []string) (map[string]string, error) {
	if len(addresses) == 0 {
		return map[string]string{}, nil
	}

	keys := make([]string, len(addresses))
	for i, address := range addresses {
		keys[i] = labelStorageKey(address)
	}

	values, err := c.conn.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(addresses))
	for i, value := range values {
		label, ok := value.(string)
		if !ok || label == "" {
			continue
		}

		labels[addresses[i]] = label
	}

	return labels, nil
}

// SetLabel attaches an exchange label to an address. Used by the label
// administration commands.
func (c *client) SetLabel(ctx context.Context, address, label string) error {
	return c.conn.Set(ctx, labelStorageKey(address), label, 0).Err()
}

// DeleteLabel removes the exchange label attached to an address, if any.
// Used by the label administration commands.
func (c *client) DeleteLabel(ctx context.Context, address string) error {
	return c.conn.Del(ctx, labelStorageKey(address)).Err()
}

// Compile-time assertion to ensure *client satisfies the batchproc.LabelStore interface
var _ batchproc.LabelStore = new(client)
