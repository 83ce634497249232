package factory_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/pricing"
)

const validBody = `{
	"pricingModel": "fixedDiscount",
	"listPricePerAdministration": 3500,
	"newPatientsPerMonth": 100,
	"averageTreatmentDuration": 4,
	"administrationsPerPatientPerMonth": 2,
	"timeHorizon": 12,
	"responseRateAfterMonth1": 0.9,
	"fixedDiscountRate": 0.15
}`

func fieldNames(fields []factory.FieldError) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func messageFor(fields []factory.FieldError, field string) string {
	for _, f := range fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseJSON_Valid(t *testing.T) {
	p, err := factory.NewParametersFactory().ParseJSON([]byte(validBody))
	require.NoError(t, err)

	assert.Equal(t, pricing.ModelFixedDiscount, p.PricingModel)
	assert.Equal(t, "3500", p.ListPricePerAdministration.String())
	assert.Equal(t, "100", p.NewPatientsPerMonth.String())
	assert.Equal(t, 4, p.AverageTreatmentDuration)
	assert.Equal(t, "2", p.AdministrationsPerPatientPerMonth.String())
	assert.Equal(t, 12, p.TimeHorizon)
	assert.Equal(t, "0.9", p.ResponseRateAfterMonth1.String())
	assert.Equal(t, "0.15", p.FixedDiscountRate.String())
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := factory.NewParametersFactory().ParseJSON([]byte(`{"pricingModel":`))
	require.Error(t, err)
	assert.ErrorIs(t, err, factory.ErrMalformedDocument)
	assert.True(t, factory.IsClientError(err))
	assert.Nil(t, factory.FieldErrors(err))
}

func TestParseJSON_WrongTypeIsFieldError(t *testing.T) {
	_, err := factory.NewParametersFactory().ParseJSON([]byte(`{"timeHorizon": "twelve"}`))
	require.Error(t, err)

	fields := factory.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, factory.FieldTimeHorizon, fields[0].Field)
	assert.Equal(t, "Expected number, received string", fields[0].Message)
}

func TestParseJSON_EmptyObject_EveryFieldRequired(t *testing.T) {
	_, err := factory.NewParametersFactory().ParseJSON([]byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, factory.ErrInvalidParameters)

	fields := factory.FieldErrors(err)
	assert.Equal(t, []string{
		factory.FieldPricingModel,
		factory.FieldListPricePerAdministration,
		factory.FieldNewPatientsPerMonth,
		factory.FieldAverageTreatmentDuration,
		factory.FieldAdministrationsPerPatientPerMonth,
		factory.FieldTimeHorizon,
		factory.FieldResponseRateAfterMonth1,
		factory.FieldFixedDiscountRate,
	}, fieldNames(fields))
	for _, f := range fields {
		assert.Equal(t, "Required", f.Message, f.Field)
	}
}

func TestParseYAML_Valid(t *testing.T) {
	doc := `
pricingModel: initialResponse
listPricePerAdministration: 1200.5
newPatientsPerMonth: 12.5
averageTreatmentDuration: 6
administrationsPerPatientPerMonth: 1
timeHorizon: 24
responseRateAfterMonth1: 0.65
fixedDiscountRate: 0
`
	p, err := factory.NewParametersFactory().ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, pricing.ModelInitialResponse, p.PricingModel)
	assert.Equal(t, "1200.5", p.ListPricePerAdministration.String())
	assert.Equal(t, "12.5", p.NewPatientsPerMonth.String())
	assert.Equal(t, 24, p.TimeHorizon)
}

func TestParseYAML_NaNRejected(t *testing.T) {
	doc := `
pricingModel: initialResponse
listPricePerAdministration: .nan
newPatientsPerMonth: 1
averageTreatmentDuration: 1
administrationsPerPatientPerMonth: 1
timeHorizon: 4
responseRateAfterMonth1: 1
fixedDiscountRate: 0
`
	_, err := factory.NewParametersFactory().ParseYAML([]byte(doc))
	fields := factory.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, factory.FieldListPricePerAdministration, fields[0].Field)
	assert.Equal(t, "Must be a finite number", fields[0].Message)
}

func TestLoadFile_MergeOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pricingModel: fixedDiscount\ntimeHorizon: 6\n"), 0o600))

	f := factory.NewParametersFactory()
	pj, err := f.LoadFile(path)
	require.NoError(t, err)

	merged := factory.DefaultParametersJSON().Merge(pj)
	p, err := f.FromJSON(merged)
	require.NoError(t, err)
	assert.Equal(t, pricing.ModelFixedDiscount, p.PricingModel)
	assert.Equal(t, 6, p.TimeHorizon)
	assert.Equal(t, "3500", p.ListPricePerAdministration.String())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := factory.NewParametersFactory().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// =============================================================================
// VALIDATION RULES
// =============================================================================

func TestValidate_Defaults(t *testing.T) {
	fields := factory.NewParametersFactory().Validate(factory.DefaultParametersJSON())
	assert.Empty(t, fields)
}

func TestValidate_Rules(t *testing.T) {
	f := factory.NewParametersFactory()

	tests := []struct {
		name    string
		mutate  func(pj *factory.ParametersJSON)
		field   string
		message string
	}{
		{"unknown model", func(pj *factory.ParametersJSON) { s := "tiered"; pj.PricingModel = &s },
			factory.FieldPricingModel, "Invalid pricing model, expected 'initialResponse' | 'fixedDiscount'"},
		{"negative price", func(pj *factory.ParametersJSON) { x := -1.0; pj.ListPricePerAdministration = &x },
			factory.FieldListPricePerAdministration, "Must be a positive number"},
		{"negative patients", func(pj *factory.ParametersJSON) { x := -0.5; pj.NewPatientsPerMonth = &x },
			factory.FieldNewPatientsPerMonth, "Must be a positive number"},
		{"zero duration", func(pj *factory.ParametersJSON) { x := 0.0; pj.AverageTreatmentDuration = &x },
			factory.FieldAverageTreatmentDuration, "Must be at least 1 month"},
		{"fractional duration", func(pj *factory.ParametersJSON) { x := 2.5; pj.AverageTreatmentDuration = &x },
			factory.FieldAverageTreatmentDuration, "Must be a whole number of months"},
		{"zero administrations", func(pj *factory.ParametersJSON) { x := 0.0; pj.AdministrationsPerPatientPerMonth = &x },
			factory.FieldAdministrationsPerPatientPerMonth, "Must be at least 1"},
		{"short horizon", func(pj *factory.ParametersJSON) { x := 3.0; pj.TimeHorizon = &x },
			factory.FieldTimeHorizon, "Must be at least 4 months"},
		{"long horizon", func(pj *factory.ParametersJSON) { x := 25.0; pj.TimeHorizon = &x },
			factory.FieldTimeHorizon, "Must be at most 24 months"},
		{"fractional horizon", func(pj *factory.ParametersJSON) { x := 6.5; pj.TimeHorizon = &x },
			factory.FieldTimeHorizon, "Must be a whole number of months"},
		{"response rate above 1", func(pj *factory.ParametersJSON) { x := 90.0; pj.ResponseRateAfterMonth1 = &x },
			factory.FieldResponseRateAfterMonth1, "Must be between 0 and 1"},
		{"negative discount", func(pj *factory.ParametersJSON) { x := -0.1; pj.FixedDiscountRate = &x },
			factory.FieldFixedDiscountRate, "Must be between 0 and 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pj := factory.DefaultParametersJSON()
			tt.mutate(&pj)

			fields := f.Validate(pj)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
			assert.Equal(t, tt.message, messageFor(fields, tt.field))
		})
	}
}

func TestValidate_BoundariesAccepted(t *testing.T) {
	f := factory.NewParametersFactory()
	pj := factory.DefaultParametersJSON()

	zero, one, four, twentyFour := 0.0, 1.0, 4.0, 24.0
	pj.ListPricePerAdministration = &zero
	pj.NewPatientsPerMonth = &zero
	pj.AverageTreatmentDuration = &one
	pj.AdministrationsPerPatientPerMonth = &one
	pj.ResponseRateAfterMonth1 = &one
	pj.FixedDiscountRate = &zero

	pj.TimeHorizon = &four
	assert.Empty(t, f.Validate(pj))
	pj.TimeHorizon = &twentyFour
	assert.Empty(t, f.Validate(pj))
}

func TestValidationError_Message(t *testing.T) {
	err := &factory.ValidationError{Fields: []factory.FieldError{
		{Field: "timeHorizon", Message: "Must be at least 4 months"},
	}}
	assert.Equal(t, "invalid simulation parameters: timeHorizon: Must be at least 4 months", err.Error())
}

func TestFromJSON_HugeDurationKeepsEveryCohortActive(t *testing.T) {
	// GIVEN: A whole-number duration far beyond int range
	f := factory.NewParametersFactory()
	pj, err := f.DecodeJSON([]byte(validBody))
	require.NoError(t, err)
	huge := 1e19
	pj.AverageTreatmentDuration = &huge

	// WHEN: Converting and simulating
	p, err := f.FromJSON(pj)
	require.NoError(t, err)
	results := pricing.Simulate(*p)

	// THEN: No cohort retires within the horizon
	assert.Equal(t, factory.MaxTimeHorizon, p.AverageTreatmentDuration)
	require.Len(t, results, 12)
	assert.Equal(t, "200", results[0].AdminCount.String())
	assert.Equal(t, "2400", results[11].AdminCount.String())
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestToJSON_EchoesValidatedParameters(t *testing.T) {
	f := factory.NewParametersFactory()
	p, err := f.ParseJSON([]byte(validBody))
	require.NoError(t, err)

	pj := f.ToJSON(*p)
	require.NotNil(t, pj.PricingModel)
	assert.Equal(t, "fixedDiscount", *pj.PricingModel)
	assert.Equal(t, 3500.0, *pj.ListPricePerAdministration)
	assert.Equal(t, 12.0, *pj.TimeHorizon)
	assert.Equal(t, 0.15, *pj.FixedDiscountRate)
}
