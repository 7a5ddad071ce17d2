package discord

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/gabapcia/cexwatch/internal/pkg/wei"
)

// txExplorerURLTemplate links a transaction hash to its block explorer page.
const txExplorerURLTemplate = "https://etherscan.io/tx/%s"

// groupThousands inserts comma separators into a string of digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// formatNumber renders an integer with comma separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + groupThousands(strconv.FormatInt(-n, 10))
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

// formatWeiToETH renders an exact wei amount as an ETH string, e.g.
// "10.5000 ETH". Precision adapts to magnitude: sub-ETH amounts get 8
// fractional digits, amounts of 1000 ETH and above get 2, everything
// else 4.
func formatWeiToETH(value *big.Int) string {
	if value == nil || value.Sign() == 0 {
		return "0.0000 ETH"
	}

	intPart := new(big.Int).Quo(value, wei.PerETH)
	remainder := new(big.Int).Mod(value, wei.PerETH)
	fractional := fmt.Sprintf("%018s", remainder.String())

	precision := 4
	switch {
	case intPart.Sign() == 0 && remainder.Sign() > 0:
		precision = 8
	case intPart.Cmp(big.NewInt(1000)) >= 0:
		precision = 2
	}

	return fmt.Sprintf("%s.%s ETH", groupThousands(intPart.String()), fractional[:precision])
}

// formatUSD renders a dollar amount with comma separators and two
// decimal places, e.g. "$1,234.56".
func formatUSD(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	return fmt.Sprintf("%s$%s.%s", sign, groupThousands(intPart), fracPart)
}

// weiToUSD converts an exact wei amount into a formatted dollar string
// at the given ETH price. The conversion keeps four decimal places of
// ETH before going through floating point; USD figures are display-only
// and never feed back into accumulation.
func weiToUSD(value *big.Int, ethPrice float64) string {
	if value == nil {
		return formatUSD(0)
	}

	scaled := new(big.Int).Mul(value, big.NewInt(10000))
	scaled.Quo(scaled, wei.PerETH)

	ethAmount, _ := new(big.Float).SetInt(scaled).Float64()
	return formatUSD(ethAmount / 10000 * ethPrice)
}

// shortenAddress abbreviates a 0x-prefixed address or hash, keeping
// startChars leading and endChars trailing digits of its body.
func shortenAddress(address string, startChars, endChars int) string {
	if !strings.HasPrefix(address, "0x") {
		if address == "" {
			return "N/A"
		}
		return address
	}

	body := address[2:]
	if len(body) <= startChars+endChars {
		return address
	}

	return fmt.Sprintf("0x%s...%s", body[:startChars], body[len(body)-endChars:])
}

// formatTxLink renders a markdown block-explorer link for a transaction
// hash, with the abbreviated hash as link text.
func formatTxLink(txHash string) string {
	if txHash == "" {
		return "`N/A`"
	}

	return fmt.Sprintf("[%s](%s)", shortenAddress(txHash, 10, 8), fmt.Sprintf(txExplorerURLTemplate, txHash))
}
