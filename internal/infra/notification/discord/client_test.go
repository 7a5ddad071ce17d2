package discord

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/whalewatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlowReport(t *testing.T) batchproc.FlowReport {
	t.Helper()

	return batchproc.FlowReport{
		BatchID:           "batch-1",
		MinBlock:          100,
		MaxBlock:          105,
		LatestTimestampMS: 1700000000000,
		TransactionCount:  42,
		Flows: &cexflow.Accumulator{
			Flows: map[string]*cexflow.Flow{
				"Binance": {
					Inflow:  weiFromString(t, "5000000000000000000"),
					Outflow: new(big.Int),
				},
			},
			TotalInflow:  weiFromString(t, "5000000000000000000"),
			TotalOutflow: new(big.Int),
		},
		Price: &batchproc.Price{USD: 2500, Change24h: -2.25},
	}
}

func testWhaleReport(t *testing.T) batchproc.WhaleReport {
	t.Helper()

	return batchproc.WhaleReport{
		BatchID:           "batch-1",
		MinBlock:          100,
		MaxBlock:          100,
		LatestTimestampMS: 1700000000000,
		Whales: whalewatch.Report{
			Count:         1,
			TotalValueWei: weiFromString(t, "20000000000000000000"),
			Top: []whalewatch.Record{
				{
					Hash:     "0x6942000000000000000000000000000000000000000000000000000000001337",
					From:     "0x28c6c06298d514db089934071355e5743bf21d60",
					To:       "0xcex",
					ValueWei: weiFromString(t, "20000000000000000000"),
				},
			},
		},
		Labels: cexflow.NewLabelIndex(map[string]string{"0xcex": "Binance"}),
		Price:  &batchproc.Price{USD: 2500, Change24h: 1.1},
	}
}

func TestNotifyFlowReport(t *testing.T) {
	t.Run("posts one embed to the flow webhook", func(t *testing.T) {
		var received webhookMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))

			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient(server.URL, "")

		err := c.NotifyFlowReport(t.Context(), testFlowReport(t))

		require.NoError(t, err)
		require.Len(t, received.Embeds, 1)
		e := received.Embeds[0]
		assert.Contains(t, e.Title, "Blocks 100 - 105")
		assert.Contains(t, e.Title, "$2,500.00")
		assert.Contains(t, e.Title, "-2.25% 24h")
		require.Len(t, e.Fields, 2)
		assert.Contains(t, e.Fields[0].Value, "5.0000 ETH")
		assert.Contains(t, e.Fields[1].Name, "1 Involved")
		assert.Contains(t, e.Fields[1].Value, "**Binance**")
	})

	t.Run("empty webhook URL is a no-op", func(t *testing.T) {
		c := NewClient("", "")

		err := c.NotifyFlowReport(t.Context(), testFlowReport(t))

		require.NoError(t, err)
	})

	t.Run("flow entry cap is configurable", func(t *testing.T) {
		var received webhookMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		report := testFlowReport(t)
		report.Flows.Flows["Kraken"] = &cexflow.Flow{
			Inflow:  weiFromString(t, "1000000000000000000"),
			Outflow: new(big.Int),
		}

		c := NewClient(server.URL, "", WithTopFlowEntries(1))

		err := c.NotifyFlowReport(t.Context(), report)

		require.NoError(t, err)
		require.Len(t, received.Embeds, 1)
		list := received.Embeds[0].Fields[1].Value
		assert.Contains(t, list, "**Binance**")
		assert.NotContains(t, list, "**Kraken**")
		assert.Contains(t, list, "(showing top 1 of 2)")
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, "")

		err := c.NotifyFlowReport(t.Context(), testFlowReport(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})
}

func TestNotifyWhaleReport(t *testing.T) {
	t.Run("posts one embed to the whale webhook", func(t *testing.T) {
		var received webhookMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient("", server.URL)

		err := c.NotifyWhaleReport(t.Context(), testWhaleReport(t))

		require.NoError(t, err)
		require.Len(t, received.Embeds, 1)
		e := received.Embeds[0]
		assert.Contains(t, e.Title, "Block #100")
		assert.Contains(t, e.Description, "**1** large transfer(s)")
		assert.Contains(t, e.Description, "20.0000 ETH")
		require.Len(t, e.Fields, 1)
		assert.Contains(t, e.Fields[0].Value, "**Binance**")
		assert.Contains(t, e.Fields[0].Value, "etherscan.io/tx/")
	})

	t.Run("empty webhook URL is a no-op", func(t *testing.T) {
		c := NewClient("", "")

		err := c.NotifyWhaleReport(t.Context(), testWhaleReport(t))

		require.NoError(t, err)
	})
}
