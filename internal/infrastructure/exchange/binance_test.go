package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinanceAdapter_GetCurrentPrice(t *testing.T) {
	var gotSymbol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ticker/price", r.URL.Path)
		gotSymbol = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"BTCUSDT","price":"67123.45","time":1714564800000}]`))
	}))
	defer server.Close()

	adapter := NewBinanceAdapter(server.URL, 100, time.Second)
	price, err := adapter.GetCurrentPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", gotSymbol)
	assert.Equal(t, 67123.45, price)
}

func TestBinanceAdapter_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "BADUSDT":
			w.Write([]byte(`[{"symbol":"BADUSDT","price":"abc"}]`))
		case "ETHUSDT":
			w.Write([]byte(`[{"symbol":"BTCUSDT","price":"1"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}
	}))
	defer server.Close()

	adapter := NewBinanceAdapter(server.URL, 100, time.Second)
	ctx := context.Background()

	_, err := adapter.GetCurrentPrice(ctx, "BADUSDT")
	assert.Error(t, err)
	_, err = adapter.GetCurrentPrice(ctx, "ETHUSDT")
	assert.ErrorContains(t, err, "symbol not in response")
	_, err = adapter.GetCurrentPrice(ctx, "NOPEUSDT")
	assert.Error(t, err)
}

func TestBinanceAdapter_RateLimitHonorsContext(t *testing.T) {
	adapter := NewBinanceAdapter("http://127.0.0.1:1", 0.001, time.Second)
	// Drain the single burst token.
	require.True(t, adapter.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := adapter.GetCurrentPrice(ctx, "BTCUSDT")
	assert.Error(t, err)
}
