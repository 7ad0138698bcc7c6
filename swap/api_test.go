package swap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetSwapInstructions(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap", r.URL.Path)
		gotQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			gotQuery[key] = values[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"txn": "AQID",
			"type": "legacy",
			"rate": {"amountIn": 0.0005, "amountOut": 123.45, "minAmountOut": 111.1, "priceImpact": 0.2}
		}`))
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, zap.NewNop())

	fee := 0.000005
	quote, err := api.GetSwapInstructions(context.Background(), QuoteRequest{
		From:        "So11111111111111111111111111111111111111112",
		To:          "667w6y7eH5tQucYQXfJ2KmiuGBE8HfYnqqbjLNSw7yww",
		FromAmount:  0.0005,
		Slippage:    10,
		Payer:       "payer-pubkey",
		PriorityFee: &fee,
		ForceLegacy: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "AQID", quote.Txn)
	assert.Equal(t, "legacy", quote.Type)
	assert.InDelta(t, 123.45, quote.Rate.AmountOut, 1e-9)

	assert.Equal(t, "So11111111111111111111111111111111111111112", gotQuery["from"])
	assert.Equal(t, "0.0005", gotQuery["fromAmount"])
	assert.Equal(t, "10", gotQuery["slippage"])
	assert.Equal(t, "payer-pubkey", gotQuery["payer"])
	assert.Equal(t, "true", gotQuery["forceLegacy"])
	assert.Equal(t, "0.000005", gotQuery["priorityFee"])
}

func TestGetSwapInstructionsClientErrorIsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"invalid token"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, zap.NewNop())

	_, err := api.GetSwapInstructions(context.Background(), QuoteRequest{})
	require.Error(t, err)
	// 4xx не ретраится.
	assert.Equal(t, 1, calls)
}

func TestGetSwapInstructionsEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rate": {"amountOut": 1}}`))
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, zap.NewNop())

	_, err := api.GetSwapInstructions(context.Background(), QuoteRequest{})
	assert.Error(t, err)
}
