// Package wei converts transaction value fields into exact arbitrary-precision
// integers. Wei amounts routinely exceed 64-bit range, so all parsing and
// arithmetic is done with math/big; floating point never touches a value on
// its way into an accumulator.
//
// Two historical payload shapes encode values as either decimal-digit strings
// or 0x-prefixed hex strings. The shapes are mutually exclusive per
// deployment, so a Parser is bound to exactly one Format at construction and
// never auto-detects per transaction: a hex string silently read as decimal
// (or vice versa) would misclassify without any error surfacing.
package wei

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// PerETH is the number of wei in one ETH (10^18).
var PerETH = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ErrInvalidValue is returned when a value string does not match the
// parser's configured format. Callers treat the value as zero and record
// the failure; it is never fatal to a batch.
var ErrInvalidValue = errors.New("invalid wei value")

// Format identifies the wire encoding of transaction values.
type Format string

const (
	// FormatDecimal accepts strings matching ^[0-9]+$.
	FormatDecimal Format = "decimal"

	// FormatHex accepts strings matching ^0x[0-9a-fA-F]+$. Used only by
	// legacy-format payloads.
	FormatHex Format = "hex"
)

// ParseFormat validates and returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatDecimal, FormatHex:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown wei value format %q", s)
	}
}

// Parser converts value strings of a single configured Format into exact
// big.Int wei amounts. The zero value is not usable; construct with
// NewParser.
type Parser struct {
	format Format
}

// NewParser returns a Parser bound to the given format.
func NewParser(format Format) Parser {
	return Parser{format: format}
}

// Format returns the wire encoding this parser accepts.
func (p Parser) Format() Format {
	return p.format
}

// Parse converts s into an exact non-negative integer wei amount. On any
// malformed input it returns big zero together with ErrInvalidValue; it
// never panics and never loses precision, regardless of magnitude.
func (p Parser) Parse(s string) (*big.Int, error) {
	switch p.format {
	case FormatHex:
		return parseHex(s)
	default:
		return parseDecimal(s)
	}
}

// parseDecimal parses a decimal-digit string into a big.Int.
func parseDecimal(s string) (*big.Int, error) {
	if !isDecimal(s) {
		return new(big.Int), fmt.Errorf("%w: expected decimal string, got %q", ErrInvalidValue, s)
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int), fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}

	return v, nil
}

// parseHex parses a 0x-prefixed hexadecimal string into a big.Int.
func parseHex(s string) (*big.Int, error) {
	if !isHex(s) {
		return new(big.Int), fmt.Errorf("%w: expected 0x-prefixed hex string, got %q", ErrInvalidValue, s)
	}

	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return new(big.Int), fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}

	return v, nil
}

// isDecimal reports whether s is a non-empty string of ASCII digits.
func isDecimal(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isHex reports whether s is "0x" followed by at least one hex digit.
func isHex(s string) bool {
	if len(s) < 3 || s[0] != '0' || s[1] != 'x' {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// FromETH converts an ETH amount expressed as a fixed-point decimal into an
// exact wei amount. Amounts with up to 18 fractional digits convert exactly;
// anything finer is rounded half away from zero at the wei digit. This is
// the single place a configured ETH threshold becomes a wei threshold.
func FromETH(eth decimal.Decimal) *big.Int {
	return eth.Shift(18).Round(0).BigInt()
}
