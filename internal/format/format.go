// Package format turns liquidation magnitudes into display strings.
//
// All functions are pure. Rounding is half away from zero on the shortest
// decimal representation of the input, so 12.345 renders as "12.35".
// Non-finite inputs render as "n/a", "∞" or "-∞" instead of leaking into
// the page as NaN or Infinity.
package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

const (
	NotAvailable = "n/a"
	Infinity     = "∞"
)

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

func nonFinite(n float64) (string, bool) {
	switch {
	case math.IsNaN(n):
		return NotAvailable, true
	case math.IsInf(n, 1):
		return Infinity, true
	case math.IsInf(n, -1):
		return "-" + Infinity, true
	}
	return "", false
}

// CompactNumber renders 1500000 as "1.50M", 2500 as "2.5K" and 999 as "999".
func CompactNumber(n float64) string {
	if s, ok := nonFinite(n); ok {
		return s
	}
	d := decimal.NewFromFloat(n)
	switch {
	case n >= 1_000_000:
		return d.Div(million).StringFixed(2) + "M"
	case n >= 1_000:
		return d.Div(thousand).StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// Currency renders a whole-dollar amount with thousands separators: "$1,234,567".
func Currency(n float64) string {
	if s, ok := nonFinite(n); ok {
		return "$" + s
	}
	whole := decimal.NewFromFloat(n).Round(0).IntPart()
	return message.NewPrinter(language.English).Sprintf("$%d", whole)
}

// Percentage renders a signed value with two decimals: "+12.35%", "-5.00%".
// Values that round to zero get the "+" sign.
func Percentage(n float64) string {
	if s, ok := nonFinite(n); ok {
		return s
	}
	d := decimal.NewFromFloat(n).Round(2)
	sign := ""
	if !d.IsNegative() {
		sign = "+"
	}
	return sign + d.StringFixed(2) + "%"
}

// Ratio renders a long/short ratio as "2.33:1". An infinite ratio renders as
// "∞:1" and an undefined one as "n/a".
func Ratio(r domain.Ratio) string {
	switch r.Kind {
	case domain.RatioFinite:
		return decimal.NewFromFloat(r.Value).StringFixed(2) + ":1"
	case domain.RatioInfinite:
		return Infinity + ":1"
	}
	return NotAvailable
}

// PriceLabel is the axis label for a price bucket, e.g. "$67000".
func PriceLabel(p float64) string {
	if s, ok := nonFinite(p); ok {
		return "$" + s
	}
	return "$" + decimal.NewFromFloat(p).StringFixed(0)
}

// PriceDetail is the tooltip price for a cell, e.g. "$67000.00".
func PriceDetail(p float64) string {
	if s, ok := nonFinite(p); ok {
		return "$" + s
	}
	return "$" + decimal.NewFromFloat(p).StringFixed(2)
}

func MinutesAgo(m int) string {
	return fmt.Sprintf("%d min ago", m)
}

// TimeAxisLabels labels every 4th of n buckets with how long ago it starts,
// oldest first: "4h ago", "3h ago", ..., "40m ago".
func TimeAxisLabels(tf domain.Timeframe, n int) []string {
	total := tf.TotalMinutes()
	step := tf.BucketMinutes(n)

	labels := make([]string, 0, (n+3)/4)
	for i := 0; i < n; i += 4 {
		minutesAgo := total - step*float64(i)
		if minutesAgo >= 60 {
			labels = append(labels, strconv.Itoa(int(math.Floor(minutesAgo/60)))+"h ago")
		} else {
			labels = append(labels, strconv.FormatFloat(minutesAgo, 'f', -1, 64)+"m ago")
		}
	}
	return labels
}

// PriceAxisLabels labels rows evenly spaced from r.Max down to r.Min.
func PriceAxisLabels(r domain.PriceRange, rows int) []string {
	labels := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		price := r.Max
		if rows > 1 {
			price = r.Max - float64(i)*r.Span()/float64(rows-1)
		}
		labels = append(labels, PriceLabel(price))
	}
	return labels
}
