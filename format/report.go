package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/pricing"
)

// TotalNetRevenue sums NetRevenue across all months.
func TotalNetRevenue(results []pricing.MonthResult) decimal.Decimal {
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.NetRevenue)
	}
	return total
}

// =============================================================================
// CONSOLE TABLE
// =============================================================================

const (
	monthWidth = 5
	numWidth   = 18
	lineWidth  = monthWidth + 5*(numWidth+1)
)

// Table renders results as a console table with a total row.
func Table(title string, results []pricing.MonthResult) string {
	var sb strings.Builder

	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", lineWidth) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		monthWidth, "Month",
		numWidth, "Net Revenue",
		numWidth, "Avg Net Price/Admin",
		numWidth, "Discount %",
		numWidth, "Absolute Discount",
		numWidth, "Administrations"))
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%-*d %*s %*s %*s %*s %*s\n",
			monthWidth, r.Month,
			numWidth, Currency(r.NetRevenue),
			numWidth, Currency(r.AvgNetPricePerAdmin),
			numWidth, Percentage(r.PercentDiscount),
			numWidth, Currency(r.AbsoluteDiscount),
			numWidth, Number(r.AdminCount)))
	}

	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s\n", monthWidth, "Total", numWidth, Currency(TotalNetRevenue(results))))
	return sb.String()
}

// ComparisonTable renders both models month by month with their revenue gap.
func ComparisonTable(c pricing.Comparison) string {
	var sb strings.Builder
	width := monthWidth + 3*(numWidth+1)

	sb.WriteString("PRICING MODEL COMPARISON\n")
	sb.WriteString(strings.Repeat("=", width) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s\n",
		monthWidth, "Month",
		numWidth, pricing.ModelInitialResponse.DisplayName(),
		numWidth, pricing.ModelFixedDiscount.DisplayName(),
		numWidth, "Difference"))
	sb.WriteString(strings.Repeat("-", width) + "\n")

	for i := range c.InitialResponse {
		ir := c.InitialResponse[i].NetRevenue
		fd := c.FixedDiscount[i].NetRevenue
		sb.WriteString(fmt.Sprintf("%-*d %*s %*s %*s\n",
			monthWidth, c.InitialResponse[i].Month,
			numWidth, Currency(ir),
			numWidth, Currency(fd),
			numWidth, Currency(ir.Sub(fd))))
	}

	irTotal := TotalNetRevenue(c.InitialResponse)
	fdTotal := TotalNetRevenue(c.FixedDiscount)
	sb.WriteString(strings.Repeat("-", width) + "\n")
	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s\n",
		monthWidth, "Total",
		numWidth, Currency(irTotal),
		numWidth, Currency(fdTotal),
		numWidth, Currency(irTotal.Sub(fdTotal))))
	return sb.String()
}

// =============================================================================
// CSV
// =============================================================================

// CSV renders results as machine readable rows with unformatted values.
func CSV(results []pricing.MonthResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Month", "NetRevenue", "AvgNetPricePerAdmin", "PercentDiscount", "AbsoluteDiscount", "AdminCount"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Month),
			r.NetRevenue.StringFixed(pricing.AmountPlaces),
			r.AvgNetPricePerAdmin.StringFixed(pricing.AmountPlaces),
			r.PercentDiscount.StringFixed(pricing.PercentPlaces),
			r.AbsoluteDiscount.StringFixed(pricing.AmountPlaces),
			r.AdminCount.StringFixed(pricing.AmountPlaces),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
