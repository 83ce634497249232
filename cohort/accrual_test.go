package cohort_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pricing-engine/cohort"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, dec(want).String(), got.String(), msgAndArgs...)
}

func standardParams() cohort.Params {
	return cohort.Params{
		NewPatientsPerMonth:               dec("100"),
		AverageTreatmentDuration:          4,
		AdministrationsPerPatientPerMonth: dec("2"),
	}
}

func responders(rate string) cohort.Rule {
	return cohort.ResponderAttrition{ResponseRate: dec(rate)}
}

// =============================================================================
// NO ATTRITION
// =============================================================================

func TestAccrue_NoAttrition_CohortsAccumulate(t *testing.T) {
	// GIVEN: 100 new patients a month, 2 administrations each, 4 month course
	// WHEN: Accruing months 1 through 4
	// THEN: One more full cohort is on drug every month

	p := standardParams()
	for month := 1; month <= 4; month++ {
		a := cohort.Accrue(month, p, cohort.NoAttrition{})
		assertDecimal(t, decimal.NewFromInt(int64(100*month)).String(), a.FullPayers, "month %d", month)
		assertDecimal(t, decimal.NewFromInt(int64(200*month)).String(), a.AllAdmins, "month %d", month)
	}
}

func TestAccrue_NoAttrition_RetiredCohortsDropOut(t *testing.T) {
	// GIVEN: A 4 month course
	// WHEN: Accruing month 6
	// THEN: Cohorts 1 and 2 are retired; cohorts 3..6 contribute

	a := cohort.Accrue(6, standardParams(), cohort.NoAttrition{})
	assertDecimal(t, "400", a.FullPayers)
	assertDecimal(t, "800", a.AllAdmins)
}

func TestAccrue_SingleMonthCourse_OnlyNewCohort(t *testing.T) {
	p := standardParams()
	p.AverageTreatmentDuration = 1

	for month := 1; month <= 5; month++ {
		a := cohort.Accrue(month, p, responders("0.5"))
		assertDecimal(t, "100", a.FullPayers, "month %d", month)
		assertDecimal(t, "200", a.AllAdmins, "month %d", month)
	}
}

func TestAccrue_ZeroPatients_ZeroAccrual(t *testing.T) {
	p := standardParams()
	p.NewPatientsPerMonth = decimal.Zero

	for _, rule := range []cohort.Rule{cohort.NoAttrition{}, responders("0.9")} {
		a := cohort.Accrue(4, p, rule)
		assert.True(t, a.FullPayers.IsZero(), rule.Name())
		assert.True(t, a.AllAdmins.IsZero(), rule.Name())
	}
}

func TestAccrue_FractionalPatients(t *testing.T) {
	p := standardParams()
	p.NewPatientsPerMonth = dec("2.5")

	a := cohort.Accrue(2, p, cohort.NoAttrition{})
	assertDecimal(t, "5", a.FullPayers)
	assertDecimal(t, "10", a.AllAdmins)
}

// =============================================================================
// RESPONDER ATTRITION
// =============================================================================

func TestAccrue_ResponderAttrition_FirstMonthEveryoneAdministered(t *testing.T) {
	a := cohort.Accrue(1, standardParams(), responders("0.9"))
	assertDecimal(t, "100", a.FullPayers)
	assertDecimal(t, "200", a.AllAdmins)
}

func TestAccrue_ResponderAttrition_SecondMonthOnlyResponders(t *testing.T) {
	// GIVEN: 90% response rate
	// WHEN: Accruing month 2
	// THEN: New cohort (100) + retained responders of cohort 1 (90)

	a := cohort.Accrue(2, standardParams(), responders("0.9"))
	assertDecimal(t, "190", a.FullPayers)
	assertDecimal(t, "380", a.AllAdmins)
}

func TestAccrue_ResponderAttrition_AppliedOncePerCohort(t *testing.T) {
	// GIVEN: 90% response rate, 4 month course
	// WHEN: Accruing month 4
	// THEN: Cohort 1 still has 90 patients (not 81 or 72.9)

	a := cohort.Accrue(4, standardParams(), responders("0.9"))
	assertDecimal(t, "370", a.FullPayers) // 100 + 3*90
	assertDecimal(t, "740", a.AllAdmins)
}

func TestAccrue_ResponderAttrition_FullResponseEqualsNoAttrition(t *testing.T) {
	p := standardParams()
	for month := 1; month <= 12; month++ {
		withRule := cohort.Accrue(month, p, responders("1"))
		without := cohort.Accrue(month, p, cohort.NoAttrition{})
		assert.True(t, withRule.FullPayers.Equal(without.FullPayers), "month %d", month)
		assert.True(t, withRule.AllAdmins.Equal(without.AllAdmins), "month %d", month)
	}
}

func TestAccrue_ResponderAttrition_ZeroResponse(t *testing.T) {
	a := cohort.Accrue(3, standardParams(), responders("0"))
	assertDecimal(t, "100", a.FullPayers)
	assertDecimal(t, "200", a.AllAdmins)
}

// =============================================================================
// BREAKDOWN
// =============================================================================

func TestBreakdown_SumsToAccrue(t *testing.T) {
	p := standardParams()
	rules := []cohort.Rule{cohort.NoAttrition{}, responders("0.73")}

	for _, rule := range rules {
		for month := 1; month <= 24; month++ {
			want := cohort.Accrue(month, p, rule)
			got := cohort.Sum(cohort.Breakdown(month, p, rule))
			assert.True(t, want.FullPayers.Equal(got.FullPayers), "%s month %d", rule.Name(), month)
			assert.True(t, want.AllAdmins.Equal(got.AllAdmins), "%s month %d", rule.Name(), month)
		}
	}
}

func TestBreakdown_ListsActiveCohortsOldestFirst(t *testing.T) {
	contributions := cohort.Breakdown(6, standardParams(), responders("0.9"))
	require.Len(t, contributions, 4)

	assert.Equal(t, 3, contributions[0].StartMonth)
	assert.Equal(t, 4, contributions[0].MonthsInTreatment)
	assertDecimal(t, "90", contributions[0].Patients)

	last := contributions[3]
	assert.Equal(t, 6, last.StartMonth)
	assert.Equal(t, 1, last.MonthsInTreatment)
	assertDecimal(t, "100", last.Patients)
	assertDecimal(t, "200", last.Administrations)
}

func TestInTreatment(t *testing.T) {
	assert.True(t, cohort.InTreatment(1, 1))
	assert.True(t, cohort.InTreatment(4, 4))
	assert.False(t, cohort.InTreatment(5, 4))
}
