package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/infrastructure/exchange"
	"github.com/vitos/liquidation_heatmap/internal/usecase"
)

// Prints one heatmap and one long/short summary to the terminal.
func main() {
	opts := options{}
	flag.StringVar(&opts.symbol, "symbol", "BTC", "asset symbol")
	flag.StringVar(&opts.timeframe, "timeframe", "4h", "15m, 1h, 4h or 24h")
	flag.StringVar(&opts.view, "view", "combined", "combined, longs or shorts")
	flag.BoolVar(&opts.live, "live", false, "fetch the current price from Binance first")
	flag.Parse()

	binance := exchange.NewBinanceAdapter("", 5, 5*time.Second)
	if err := run(context.Background(), opts, binance, os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	symbol    string
	timeframe string
	view      string
	live      bool
}

func run(ctx context.Context, opts options, provider domain.PriceProvider, out io.Writer) error {
	prices := usecase.NewPriceService(provider, domain.DefaultAssets(), nil, nil)
	heatmaps := usecase.NewHeatmapService(usecase.DefaultHeatmapConfig(), prices,
		usecase.NewGridSynthesizer(nil), usecase.NewSimulatedFeed(nil, 0, 0), nil, nil)

	sess, err := heatmaps.ResolveSession(nil, opts.symbol, opts.timeframe, opts.view)
	if err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}

	if opts.live {
		r, err := prices.Refresh(ctx, sess.Symbol)
		if err != nil {
			return fmt.Errorf("refresh price: %w", err)
		}
		fmt.Fprintf(out, "Price range: %.2f - %.2f (current %.2f)\n", r.Min, r.Max, r.Current)
	}

	snap, err := heatmaps.Heatmap(ctx, sess)
	if err != nil {
		return fmt.Errorf("build heatmap: %w", err)
	}

	shades := []rune(" .:-=+#")
	fmt.Fprintf(out, "%s %s %s  current %s\n\n", sess.Symbol, sess.Timeframe, sess.View, snap.CurrentPrice)
	for i, row := range snap.Cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteRune(shades[cell.Intensity])
		}
		fmt.Fprintf(out, "%10s |%s|\n", snap.PriceAxis[i], b.String())
	}
	fmt.Fprintf(out, "%10s  %s\n\n", "", strings.Join(snap.TimeAxis, "  "))

	fmt.Fprintf(out, "Total volume:   %s\n", snap.Insights.TotalText)
	fmt.Fprintf(out, "Hot zone:       %s\n", snap.Insights.HotZoneText)
	fmt.Fprintf(out, "Long/short:     %s\n", snap.Insights.RatioText)
	fmt.Fprintf(out, "Peak activity:  %s\n", snap.Insights.PeakText)

	summary, err := heatmaps.Summary(ctx, sess.Symbol, "")
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	fmt.Fprintf(out, "\nLongs %s / Shorts %s (%s, %s)\n", summary.LongText, summary.ShortText, summary.PercentageText, summary.Pressure)
	return nil
}
