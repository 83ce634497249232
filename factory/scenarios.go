package factory

import "github.com/warp/pricing-engine/pricing"

// =============================================================================
// PRESET SCENARIOS
// =============================================================================

// Scenario is a named, ready-to-run parameter set.
type Scenario struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  ParametersJSON `json:"data" yaml:"parameters"`
}

func withDefaults(override ParametersJSON) ParametersJSON {
	return DefaultParametersJSON().Merge(override)
}

var scenarios = []Scenario{
	{
		ID:          "baseline-initial-response",
		Name:        "Baseline - Initial Response",
		Description: "Form defaults: 90% of patients respond and stay on drug after month 1",
		Parameters:  withDefaults(ParametersJSON{PricingModel: strPtr(string(pricing.ModelInitialResponse))}),
	},
	{
		ID:          "baseline-fixed-discount",
		Name:        "Baseline - Fixed Discount",
		Description: "Form defaults with a flat 15% discount and no attrition",
		Parameters:  withDefaults(ParametersJSON{PricingModel: strPtr(string(pricing.ModelFixedDiscount))}),
	},
	{
		ID:          "low-response",
		Name:        "Low Response",
		Description: "Only 40% of patients respond; initial response pricing loses most cohorts after month 1",
		Parameters: withDefaults(ParametersJSON{
			PricingModel:            strPtr(string(pricing.ModelInitialResponse)),
			ResponseRateAfterMonth1: floatPtr(0.40),
		}),
	},
	{
		ID:          "short-course",
		Name:        "Single-Month Course",
		Description: "Every patient is treated for one month only, so both models bill identical volumes",
		Parameters: withDefaults(ParametersJSON{
			PricingModel:             strPtr(string(pricing.ModelFixedDiscount)),
			AverageTreatmentDuration: floatPtr(1),
		}),
	},
	{
		ID:          "long-horizon",
		Name:        "Two-Year Chronic Therapy",
		Description: "24 month horizon with a course that outlasts it; cohorts never retire",
		Parameters: withDefaults(ParametersJSON{
			PricingModel:                      strPtr(string(pricing.ModelFixedDiscount)),
			AverageTreatmentDuration:          floatPtr(24),
			AdministrationsPerPatientPerMonth: floatPtr(1),
			TimeHorizon:                       floatPtr(24),
			FixedDiscountRate:                 floatPtr(0.25),
		}),
	},
}

// Scenarios returns a copy of every preset scenario. Callers may modify
// the result freely.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.clone()
	}
	return out
}

// FindScenario returns a copy of the preset with the given ID.
func FindScenario(id string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return Scenario{}, false
}

func (s Scenario) clone() Scenario {
	s.Parameters = s.Parameters.Clone()
	return s
}
