package cexflow

import "strings"

// LabelIndex maps lowercased addresses to the label reported by the label
// store, built fresh for each batch and read-only during aggregation. A nil
// index is valid and resolves nothing, which is the degraded mode used when
// the label store is unreachable: classification then treats every address
// as unlabeled.
type LabelIndex map[string]string

// NewLabelIndex builds an index from address/label pairs. Addresses are
// lowercased; duplicate addresses resolve to the last label seen.
func NewLabelIndex(pairs map[string]string) LabelIndex {
	index := make(LabelIndex, len(pairs))
	for address, label := range pairs {
		index[strings.ToLower(address)] = label
	}
	return index
}

// Resolve returns the label for the given address, case-insensitively. The
// second return reports whether a label was found; empty addresses never
// resolve.
func (ix LabelIndex) Resolve(address string) (string, bool) {
	if address == "" {
		return "", false
	}

	label, ok := ix[strings.ToLower(address)]
	return label, ok
}
