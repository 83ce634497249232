package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/cohort"
)

// =============================================================================
// CALCULATOR - One implementation per pricing model
// =============================================================================

// Calculator produces the unrounded month-by-month projection for one model.
type Calculator interface {
	Model() Model

	// Calculate returns exactly p.TimeHorizon results, months 1..TimeHorizon.
	// Values are raw; Simulate applies output rounding.
	Calculate(p Parameters) []MonthResult
}

var calculators = map[Model]Calculator{
	ModelInitialResponse: InitialResponseCalculator{},
	ModelFixedDiscount:   FixedDiscountCalculator{},
}

// CalculatorFor returns the calculator registered for m.
func CalculatorFor(m Model) (Calculator, bool) {
	c, ok := calculators[m]
	return c, ok
}

// Simulate runs the calculator selected by p.PricingModel and rounds the
// output. Parameters must already be validated.
func Simulate(p Parameters) []MonthResult {
	calc, ok := CalculatorFor(p.PricingModel)
	if !ok {
		panic(fmt.Sprintf("pricing: unknown pricing model %q", p.PricingModel))
	}
	return RoundAll(calc.Calculate(p))
}

// =============================================================================
// INITIAL RESPONSE
// =============================================================================

// InitialResponseCalculator bills every administration at list price and
// loses non-responders after their first month.
type InitialResponseCalculator struct{}

func (InitialResponseCalculator) Model() Model { return ModelInitialResponse }

func (c InitialResponseCalculator) Calculate(p Parameters) []MonthResult {
	cp := p.CohortParams()
	rule := c.Model().Rule(p)
	listPrice := p.ListPricePerAdministration

	results := make([]MonthResult, 0, p.TimeHorizon)
	for month := 1; month <= p.TimeHorizon; month++ {
		acc := cohort.Accrue(month, cp, rule)

		netRevenue := acc.FullPayers.Mul(p.AdministrationsPerPatientPerMonth).Mul(listPrice)

		// Non-responders are never administered, so this is list price
		// whenever anyone is on drug.
		avgNetPrice := decimal.Zero
		if !acc.AllAdmins.IsZero() {
			avgNetPrice = netRevenue.Div(acc.AllAdmins)
		}

		results = append(results, MonthResult{
			Month:               month,
			NetRevenue:          netRevenue,
			AvgNetPricePerAdmin: avgNetPrice,
			PercentDiscount:     percentOffList(avgNetPrice, listPrice),
			AbsoluteDiscount:    listPrice.Sub(avgNetPrice),
			AdminCount:          acc.AllAdmins,
		})
	}
	return results
}

// percentOffList is 1 - price/list, or zero when the list price is zero.
func percentOffList(price, list decimal.Decimal) decimal.Decimal {
	if list.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(price.Div(list))
}

// =============================================================================
// FIXED DISCOUNT
// =============================================================================

// FixedDiscountCalculator bills every administration at a constant
// discount off list price.
type FixedDiscountCalculator struct{}

func (FixedDiscountCalculator) Model() Model { return ModelFixedDiscount }

func (c FixedDiscountCalculator) Calculate(p Parameters) []MonthResult {
	cp := p.CohortParams()
	rule := c.Model().Rule(p)
	listPrice := p.ListPricePerAdministration

	// Constant across the horizon
	netPrice := listPrice.Mul(decimal.NewFromInt(1).Sub(p.FixedDiscountRate))
	percentDiscount := p.FixedDiscountRate
	absoluteDiscount := listPrice.Sub(netPrice)

	results := make([]MonthResult, 0, p.TimeHorizon)
	for month := 1; month <= p.TimeHorizon; month++ {
		acc := cohort.Accrue(month, cp, rule)

		results = append(results, MonthResult{
			Month:               month,
			NetRevenue:          acc.AllAdmins.Mul(netPrice),
			AvgNetPricePerAdmin: netPrice,
			PercentDiscount:     percentDiscount,
			AbsoluteDiscount:    absoluteDiscount,
			AdminCount:          acc.AllAdmins,
		})
	}
	return results
}

// =============================================================================
// COMPARISON
// =============================================================================

// Comparison holds both models run on the same parameters.
type Comparison struct {
	InitialResponse []MonthResult
	FixedDiscount   []MonthResult
}

// Compare runs every model on p, ignoring p.PricingModel.
func Compare(p Parameters) Comparison {
	return Comparison{
		InitialResponse: Simulate(p.WithModel(ModelInitialResponse)),
		FixedDiscount:   Simulate(p.WithModel(ModelFixedDiscount)),
	}
}
