package cexflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeywords(t *testing.T) {
	t.Run("lowercases entries", func(t *testing.T) {
		k := NewKeywords([]string{"Binance", "KRAKEN"})
		assert.Equal(t, 2, k.Len())
		assert.True(t, k.IsCEX("binance"))
		assert.True(t, k.IsCEX("kraken"))
	})

	t.Run("ignores empty strings", func(t *testing.T) {
		k := NewKeywords([]string{"", "binance", ""})
		assert.Equal(t, 1, k.Len())
	})

	t.Run("deduplicates case-insensitively", func(t *testing.T) {
		k := NewKeywords([]string{"okx", "OKX", "OkX"})
		assert.Equal(t, 1, k.Len())
	})
}

func TestKeywords_IsCEX(t *testing.T) {
	k := NewKeywords([]string{"binance", "gate.io", "crypto.com exchange"})

	t.Run("exact match", func(t *testing.T) {
		assert.True(t, k.IsCEX("binance"))
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		assert.True(t, k.IsCEX("Binance"))
		assert.True(t, k.IsCEX("GATE.IO"))
	})

	t.Run("multi-word label", func(t *testing.T) {
		assert.True(t, k.IsCEX("Crypto.com Exchange"))
	})

	t.Run("empty label is never CEX", func(t *testing.T) {
		assert.False(t, k.IsCEX(""))
	})

	t.Run("no substring matching", func(t *testing.T) {
		assert.False(t, k.IsCEX("binance 14"))
		assert.False(t, k.IsCEX("binanc"))
		assert.False(t, k.IsCEX("my binance wallet"))
	})

	t.Run("unknown label", func(t *testing.T) {
		assert.False(t, k.IsCEX("uniswap"))
	})
}

func TestDefaultKeywords(t *testing.T) {
	k := NewKeywords(DefaultKeywords())

	assert.True(t, k.IsCEX("binance"))
	assert.True(t, k.IsCEX("kraken"))
	assert.True(t, k.IsCEX("hashkey exchange"))
	assert.False(t, k.IsCEX(""))
}

func TestLabelIndex_Resolve(t *testing.T) {
	t.Run("lowercases on build and lookup", func(t *testing.T) {
		ix := NewLabelIndex(map[string]string{"0xAbC123": "Binance 14"})

		label, ok := ix.Resolve("0xABC123")
		assert.True(t, ok)
		assert.Equal(t, "Binance 14", label)
	})

	t.Run("unknown address", func(t *testing.T) {
		ix := NewLabelIndex(map[string]string{"0xabc": "binance"})

		label, ok := ix.Resolve("0xdef")
		assert.False(t, ok)
		assert.Empty(t, label)
	})

	t.Run("empty address never resolves", func(t *testing.T) {
		ix := NewLabelIndex(map[string]string{"": "binance"})

		_, ok := ix.Resolve("")
		assert.False(t, ok)
	})

	t.Run("nil index is valid degraded mode", func(t *testing.T) {
		var ix LabelIndex

		label, ok := ix.Resolve("0xabc")
		assert.False(t, ok)
		assert.Empty(t, label)
	})
}
