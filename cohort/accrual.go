/*
Package cohort provides the cohort accrual model behind every pricing projection.

PURPOSE:
  Answers one question for a given month: how many patients are on drug,
  and how many administrations are billed? Every month a new cohort of
  identical size starts treatment. A cohort stays in treatment for
  AverageTreatmentDuration months and is then retired.

KEY CONCEPTS:
  - Cohort: patients starting treatment in the same month (start month s)
  - Months in treatment: currentMonth - s + 1 (1 in the start month)
  - Rule: how much of a cohort is still administered in a given month
  - Accrual: the aggregate over all cohorts still in treatment

STATELESS:
  Cohorts are recomputed from Params on every call. Nothing is carried
  forward between months, so Accrue(m) never depends on Accrue(m-1).

ATTRITION RULES:
  NoAttrition:
    The whole cohort contributes every month it is in treatment.

  ResponderAttrition:
    The whole cohort contributes in its first month (responders are not
    known yet). From the second month on only ResponseRate of the cohort
    remains. The drop-out is applied once per cohort and never reversed.

EXAMPLE:
  params := cohort.Params{
      NewPatientsPerMonth:               decimal.NewFromInt(100),
      AverageTreatmentDuration:          4,
      AdministrationsPerPatientPerMonth: decimal.NewFromInt(2),
  }
  a := cohort.Accrue(2, params, cohort.ResponderAttrition{ResponseRate: decimal.RequireFromString("0.9")})
  // a.FullPayers = 190, a.AllAdmins = 380

SEE ALSO:
  - pricing/calculator.go: Drives Accrue across the horizon
  - breakdown.go: Per-cohort view of the same computation
*/
package cohort

import "github.com/shopspring/decimal"

// =============================================================================
// PARAMETERS
// =============================================================================

// Params is the subset of simulation parameters the accrual model needs.
type Params struct {
	NewPatientsPerMonth               decimal.Decimal
	AverageTreatmentDuration          int
	AdministrationsPerPatientPerMonth decimal.Decimal
}

// Accrual is the aggregate of all cohorts in treatment during one month.
type Accrual struct {
	// FullPayers counts patients billed at the model's full rate this month.
	FullPayers decimal.Decimal

	// AllAdmins counts billable administrations this month.
	AllAdmins decimal.Decimal
}

// =============================================================================
// RULES - Per-cohort contribution
// =============================================================================

// Rule decides what fraction of a cohort is still administered.
// Implementations must be pure: the same monthsInTreatment always yields
// the same fraction.
type Rule interface {
	// Retained returns the fraction of the cohort administered in its
	// monthsInTreatment-th month of treatment (1-indexed).
	Retained(monthsInTreatment int) decimal.Decimal

	// Name identifies the rule in breakdowns and logs.
	Name() string
}

// NoAttrition keeps the whole cohort for its full treatment course.
type NoAttrition struct{}

func (NoAttrition) Retained(int) decimal.Decimal { return decimal.NewFromInt(1) }
func (NoAttrition) Name() string                 { return "no_attrition" }

// ResponderAttrition keeps everyone in month 1 and only responders after.
type ResponderAttrition struct {
	ResponseRate decimal.Decimal
}

func (r ResponderAttrition) Retained(monthsInTreatment int) decimal.Decimal {
	if monthsInTreatment == 1 {
		return decimal.NewFromInt(1)
	}
	return r.ResponseRate
}

func (ResponderAttrition) Name() string { return "responder_attrition" }

// Compile-time checks
var (
	_ Rule = NoAttrition{}
	_ Rule = ResponderAttrition{}
)

// =============================================================================
// ACCRUAL
// =============================================================================

// Accrue sums the contribution of every cohort started in [1, currentMonth]
// that is still in treatment. currentMonth must be >= 1.
func Accrue(currentMonth int, p Params, rule Rule) Accrual {
	acc := Accrual{FullPayers: decimal.Zero, AllAdmins: decimal.Zero}

	for startMonth := 1; startMonth <= currentMonth; startMonth++ {
		monthsInTreatment := currentMonth - startMonth + 1
		if !InTreatment(monthsInTreatment, p.AverageTreatmentDuration) {
			continue // retired
		}

		patients := p.NewPatientsPerMonth.Mul(rule.Retained(monthsInTreatment))
		acc.FullPayers = acc.FullPayers.Add(patients)
		acc.AllAdmins = acc.AllAdmins.Add(patients.Mul(p.AdministrationsPerPatientPerMonth))
	}

	return acc
}

// InTreatment reports whether a cohort in its monthsInTreatment-th month
// is still within the treatment course.
func InTreatment(monthsInTreatment, averageTreatmentDuration int) bool {
	return monthsInTreatment <= averageTreatmentDuration
}
