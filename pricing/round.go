package pricing

const (
	// AmountPlaces applies to currency and count fields.
	AmountPlaces = 2

	// PercentPlaces applies to PercentDiscount.
	PercentPlaces = 4
)

// Rounded returns r with output rounding applied. It must only be called on
// final results.
func (r MonthResult) Rounded() MonthResult {
	return MonthResult{
		Month:               r.Month,
		NetRevenue:          r.NetRevenue.Round(AmountPlaces),
		AvgNetPricePerAdmin: r.AvgNetPricePerAdmin.Round(AmountPlaces),
		PercentDiscount:     r.PercentDiscount.Round(PercentPlaces),
		AbsoluteDiscount:    r.AbsoluteDiscount.Round(AmountPlaces),
		AdminCount:          r.AdminCount.Round(AmountPlaces),
	}
}

// RoundAll rounds every result into a new slice.
func RoundAll(results []MonthResult) []MonthResult {
	out := make([]MonthResult, len(results))
	for i, r := range results {
		out[i] = r.Rounded()
	}
	return out
}
