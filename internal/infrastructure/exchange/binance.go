package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

const BinanceFuturesURL = "https://fapi.binance.com"

// BinanceAdapter reads last traded prices from Binance USDT-M futures.
// Only public endpoints are used, so no API key is needed.
type BinanceAdapter struct {
	client  *futures.Client
	limiter *rate.Limiter
}

func NewBinanceAdapter(baseURL string, requestsPerSecond float64, timeout time.Duration) *BinanceAdapter {
	if baseURL == "" {
		baseURL = BinanceFuturesURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := futures.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: timeout}
	client.SetApiEndpoint(strings.TrimRight(baseURL, "/"))

	return &BinanceAdapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (b *BinanceAdapter) GetCurrentPrice(ctx context.Context, pair string) (float64, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	prices, err := b.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: %w", pair, err)
	}
	for _, p := range prices {
		if p.Symbol != pair {
			continue
		}
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("binance ticker %s: bad price %q: %w", pair, p.Price, err)
		}
		return price, nil
	}
	return 0, fmt.Errorf("binance ticker %s: symbol not in response", pair)
}
