/*
Package pricing projects monthly net revenue and effective pricing for a drug
under one of two commercial pricing policies.

PURPOSE:
  Drives the cohort accrual model across every month of the horizon and turns
  each month's accrual into revenue and discount metrics. This package is the
  whole computational core; validation, formatting and transport live in
  factory/, format/ and api/.

KEY CONCEPTS IN THIS FILE (types.go):
  - Model: which pricing policy is simulated (initialResponse, fixedDiscount)
  - Parameters: immutable inputs for one simulation run
  - MonthResult: metrics for one month, 1-indexed

PRICING MODELS:
  InitialResponse:
    Everyone is billed list price in their first month. Only responders
    continue after month 1. The reported discount is the revenue lost to
    attrition, spread over the administrations that actually happened.

  FixedDiscount:
    Nobody drops out. Every administration is billed at
    list price * (1 - FixedDiscountRate).

CONTRACT:
  Parameters are validated upstream (factory.ParametersFactory). The engine
  trusts them and never returns an error. Simulate on an unknown Model panics.

PRECISION:
  All arithmetic uses decimal.Decimal. Rounding happens once, on the final
  MonthResult (see round.go), never on intermediate values.

SEE ALSO:
  - calculator.go: The two calculators and Simulate
  - cohort/accrual.go: Cohort accrual model
  - factory/parameters.go: Builds validated Parameters from JSON/YAML
*/
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/cohort"
)

// =============================================================================
// MODEL
// =============================================================================

// Model selects the pricing policy.
type Model string

const (
	ModelInitialResponse Model = "initialResponse"
	ModelFixedDiscount   Model = "fixedDiscount"
)

// Models returns every supported pricing model in display order.
func Models() []Model {
	return []Model{ModelInitialResponse, ModelFixedDiscount}
}

// ParseModel converts a wire tag into a Model.
func ParseModel(s string) (Model, bool) {
	for _, m := range Models() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// DisplayName returns a human readable label.
func (m Model) DisplayName() string {
	switch m {
	case ModelInitialResponse:
		return "Initial Response"
	case ModelFixedDiscount:
		return "Fixed Discount"
	default:
		return string(m)
	}
}

// Rule returns the cohort attrition rule this model accrues with.
func (m Model) Rule(p Parameters) cohort.Rule {
	if m == ModelInitialResponse {
		return cohort.ResponderAttrition{ResponseRate: p.ResponseRateAfterMonth1}
	}
	return cohort.NoAttrition{}
}

// =============================================================================
// PARAMETERS
// =============================================================================

// Parameters are the inputs of one simulation run.
type Parameters struct {
	PricingModel                      Model           `json:"pricingModel"`
	ListPricePerAdministration        decimal.Decimal `json:"listPricePerAdministration"`
	NewPatientsPerMonth               decimal.Decimal `json:"newPatientsPerMonth"`
	AverageTreatmentDuration          int             `json:"averageTreatmentDuration"`
	AdministrationsPerPatientPerMonth decimal.Decimal `json:"administrationsPerPatientPerMonth"`
	TimeHorizon                       int             `json:"timeHorizon"`
	ResponseRateAfterMonth1           decimal.Decimal `json:"responseRateAfterMonth1"`
	FixedDiscountRate                 decimal.Decimal `json:"fixedDiscountRate"`
}

// CohortParams extracts what the accrual model needs.
func (p Parameters) CohortParams() cohort.Params {
	return cohort.Params{
		NewPatientsPerMonth:               p.NewPatientsPerMonth,
		AverageTreatmentDuration:          p.AverageTreatmentDuration,
		AdministrationsPerPatientPerMonth: p.AdministrationsPerPatientPerMonth,
	}
}

// WithModel returns a copy of p running under model m.
func (p Parameters) WithModel(m Model) Parameters {
	p.PricingModel = m
	return p
}

// =============================================================================
// RESULTS
// =============================================================================

// MonthResult holds the metrics of a single month.
type MonthResult struct {
	Month               int             `json:"month"`
	NetRevenue          decimal.Decimal `json:"netRevenue"`
	AvgNetPricePerAdmin decimal.Decimal `json:"avgNetPricePerAdmin"`
	PercentDiscount     decimal.Decimal `json:"percentDiscount"`
	AbsoluteDiscount    decimal.Decimal `json:"absoluteDiscount"`
	AdminCount          decimal.Decimal `json:"adminCount"`
}
