package usecase

import "github.com/vitos/liquidation_heatmap/internal/domain"

// PercentageDiff is 100*(long-short)/(long+short), or 0 when both are zero.
// Positive values mean longs are being liquidated harder (bearish pressure).
func PercentageDiff(longTotal, shortTotal float64) float64 {
	sum := longTotal + shortTotal
	if sum == 0 {
		return 0
	}
	return (longTotal - shortTotal) / sum * 100
}

// AggregateSides totals liquidation volume per side.
func AggregateSides(events []domain.LiquidationEvent) domain.SideTotals {
	var totals domain.SideTotals
	for _, e := range events {
		switch e.Side {
		case domain.SideLong:
			totals.LongTotal += e.VolumeUSD
		case domain.SideShort:
			totals.ShortTotal += e.VolumeUSD
		}
	}
	totals.PercentageDiff = PercentageDiff(totals.LongTotal, totals.ShortTotal)
	return totals
}
