/*
Package factory provides JSON/YAML to Go conversion for simulation parameters.

PURPOSE:
  Converts parameter documents (HTTP request bodies, CLI parameter files) into
  validated pricing.Parameters. This is the validation layer in front of the
  engine: the engine trusts whatever comes out of here and never re-checks.

JSON SCHEMA:
  {
    "pricingModel": "initialResponse",
    "listPricePerAdministration": 3500,
    "newPatientsPerMonth": 100,
    "averageTreatmentDuration": 4,
    "administrationsPerPatientPerMonth": 2,
    "timeHorizon": 12,
    "responseRateAfterMonth1": 0.9,
    "fixedDiscountRate": 0.15
  }

  YAML documents use the same keys.

VALIDATION RULES:
  pricingModel                      initialResponse | fixedDiscount
  listPricePerAdministration        >= 0
  newPatientsPerMonth               >= 0
  averageTreatmentDuration          whole number >= 1
  administrationsPerPatientPerMonth >= 1
  timeHorizon                       whole number in [4, 24]
  responseRateAfterMonth1           [0, 1]
  fixedDiscountRate                 [0, 1]

  Every field is required and must be finite. All failures are collected
  into one *ValidationError, in the field order above.

USAGE:
  f := NewParametersFactory()

  // From an HTTP body
  params, err := f.ParseJSON(body)
  if fields := FieldErrors(err); fields != nil {
      // 400 with per-field messages
  }

  // From a CLI file
  params, err := f.LoadFile("params.yaml")

SEE ALSO:
  - errors.go: ValidationError, FieldError
  - pricing/types.go: Parameters
  - api/handlers.go: Uses ParseJSON for POST /api/simulate
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/pricing"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT SCHEMA
// =============================================================================

// ParametersJSON is the wire form of pricing.Parameters. Pointer fields
// distinguish "missing" from zero.
type ParametersJSON struct {
	PricingModel                      *string  `json:"pricingModel" yaml:"pricingModel"`
	ListPricePerAdministration        *float64 `json:"listPricePerAdministration" yaml:"listPricePerAdministration"`
	NewPatientsPerMonth               *float64 `json:"newPatientsPerMonth" yaml:"newPatientsPerMonth"`
	AverageTreatmentDuration          *float64 `json:"averageTreatmentDuration" yaml:"averageTreatmentDuration"`
	AdministrationsPerPatientPerMonth *float64 `json:"administrationsPerPatientPerMonth" yaml:"administrationsPerPatientPerMonth"`
	TimeHorizon                       *float64 `json:"timeHorizon" yaml:"timeHorizon"`
	ResponseRateAfterMonth1           *float64 `json:"responseRateAfterMonth1" yaml:"responseRateAfterMonth1"`
	FixedDiscountRate                 *float64 `json:"fixedDiscountRate" yaml:"fixedDiscountRate"`
}

// Field names as they appear on the wire.
const (
	FieldPricingModel                      = "pricingModel"
	FieldListPricePerAdministration        = "listPricePerAdministration"
	FieldNewPatientsPerMonth               = "newPatientsPerMonth"
	FieldAverageTreatmentDuration          = "averageTreatmentDuration"
	FieldAdministrationsPerPatientPerMonth = "administrationsPerPatientPerMonth"
	FieldTimeHorizon                       = "timeHorizon"
	FieldResponseRateAfterMonth1           = "responseRateAfterMonth1"
	FieldFixedDiscountRate                 = "fixedDiscountRate"
)

// Horizon bounds in months.
const (
	MinTimeHorizon = 4
	MaxTimeHorizon = 24
)

// DefaultParametersJSON returns the analyst form's starting values.
func DefaultParametersJSON() ParametersJSON {
	return ParametersJSON{
		PricingModel:                      strPtr(string(pricing.ModelInitialResponse)),
		ListPricePerAdministration:        floatPtr(3500),
		NewPatientsPerMonth:               floatPtr(100),
		AverageTreatmentDuration:          floatPtr(4),
		AdministrationsPerPatientPerMonth: floatPtr(2),
		TimeHorizon:                       floatPtr(12),
		ResponseRateAfterMonth1:           floatPtr(0.90),
		FixedDiscountRate:                 floatPtr(0.15),
	}
}

// Merge returns pj with every field set in override replacing its own.
func (pj ParametersJSON) Merge(override ParametersJSON) ParametersJSON {
	if override.PricingModel != nil {
		pj.PricingModel = override.PricingModel
	}
	if override.ListPricePerAdministration != nil {
		pj.ListPricePerAdministration = override.ListPricePerAdministration
	}
	if override.NewPatientsPerMonth != nil {
		pj.NewPatientsPerMonth = override.NewPatientsPerMonth
	}
	if override.AverageTreatmentDuration != nil {
		pj.AverageTreatmentDuration = override.AverageTreatmentDuration
	}
	if override.AdministrationsPerPatientPerMonth != nil {
		pj.AdministrationsPerPatientPerMonth = override.AdministrationsPerPatientPerMonth
	}
	if override.TimeHorizon != nil {
		pj.TimeHorizon = override.TimeHorizon
	}
	if override.ResponseRateAfterMonth1 != nil {
		pj.ResponseRateAfterMonth1 = override.ResponseRateAfterMonth1
	}
	if override.FixedDiscountRate != nil {
		pj.FixedDiscountRate = override.FixedDiscountRate
	}
	return pj
}

// Clone returns a copy of pj that shares no pointers with it.
func (pj ParametersJSON) Clone() ParametersJSON {
	return ParametersJSON{
		PricingModel:                      cloneStr(pj.PricingModel),
		ListPricePerAdministration:        cloneFloat(pj.ListPricePerAdministration),
		NewPatientsPerMonth:               cloneFloat(pj.NewPatientsPerMonth),
		AverageTreatmentDuration:          cloneFloat(pj.AverageTreatmentDuration),
		AdministrationsPerPatientPerMonth: cloneFloat(pj.AdministrationsPerPatientPerMonth),
		TimeHorizon:                       cloneFloat(pj.TimeHorizon),
		ResponseRateAfterMonth1:           cloneFloat(pj.ResponseRateAfterMonth1),
		FixedDiscountRate:                 cloneFloat(pj.FixedDiscountRate),
	}
}

// =============================================================================
// PARAMETERS FACTORY
// =============================================================================

// ParametersFactory converts parameter documents to pricing.Parameters.
type ParametersFactory struct{}

// NewParametersFactory creates a new parameters factory.
func NewParametersFactory() *ParametersFactory {
	return &ParametersFactory{}
}

// ParseJSON decodes and validates a JSON parameter document.
func (f *ParametersFactory) ParseJSON(data []byte) (*pricing.Parameters, error) {
	pj, err := f.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return f.FromJSON(pj)
}

// DecodeJSON decodes a JSON document without validating it. A value of the
// wrong JSON type is reported as a field error rather than a malformed body.
func (f *ParametersFactory) DecodeJSON(data []byte) (ParametersJSON, error) {
	var pj ParametersJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&pj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return pj, &ValidationError{Fields: []FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("Expected %s, received %s", expectedType(typeErr.Field), typeErr.Value),
			}}}
		}
		return pj, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return pj, nil
}

// ParseYAML decodes and validates a YAML parameter document.
func (f *ParametersFactory) ParseYAML(data []byte) (*pricing.Parameters, error) {
	pj, err := f.DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return f.FromJSON(pj)
}

// DecodeYAML decodes a YAML (or JSON) document without validating it.
func (f *ParametersFactory) DecodeYAML(data []byte) (ParametersJSON, error) {
	var pj ParametersJSON
	if err := yaml.Unmarshal(data, &pj); err != nil {
		return pj, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return pj, nil
}

// LoadFile reads a YAML or JSON parameter file without validating it, so
// callers can merge overrides before calling FromJSON.
func (f *ParametersFactory) LoadFile(path string) (ParametersJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParametersJSON{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return f.DecodeYAML(data)
}

// FromJSON validates pj and converts it to pricing.Parameters.
func (f *ParametersFactory) FromJSON(pj ParametersJSON) (*pricing.Parameters, error) {
	if fields := f.Validate(pj); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	model, _ := pricing.ParseModel(*pj.PricingModel)

	// A cohort never outlives the horizon, so any longer course is
	// equivalent to MaxTimeHorizon and must not overflow int.
	duration := math.Min(*pj.AverageTreatmentDuration, MaxTimeHorizon)

	return &pricing.Parameters{
		PricingModel:                      model,
		ListPricePerAdministration:        decimal.NewFromFloat(*pj.ListPricePerAdministration),
		NewPatientsPerMonth:               decimal.NewFromFloat(*pj.NewPatientsPerMonth),
		AverageTreatmentDuration:          int(duration),
		AdministrationsPerPatientPerMonth: decimal.NewFromFloat(*pj.AdministrationsPerPatientPerMonth),
		TimeHorizon:                       int(*pj.TimeHorizon),
		ResponseRateAfterMonth1:           decimal.NewFromFloat(*pj.ResponseRateAfterMonth1),
		FixedDiscountRate:                 decimal.NewFromFloat(*pj.FixedDiscountRate),
	}, nil
}

// ToJSON converts validated parameters back to their wire form.
func (f *ParametersFactory) ToJSON(p pricing.Parameters) ParametersJSON {
	return ParametersJSON{
		PricingModel:                      strPtr(string(p.PricingModel)),
		ListPricePerAdministration:        floatPtr(p.ListPricePerAdministration.InexactFloat64()),
		NewPatientsPerMonth:               floatPtr(p.NewPatientsPerMonth.InexactFloat64()),
		AverageTreatmentDuration:          floatPtr(float64(p.AverageTreatmentDuration)),
		AdministrationsPerPatientPerMonth: floatPtr(p.AdministrationsPerPatientPerMonth.InexactFloat64()),
		TimeHorizon:                       floatPtr(float64(p.TimeHorizon)),
		ResponseRateAfterMonth1:           floatPtr(p.ResponseRateAfterMonth1.InexactFloat64()),
		FixedDiscountRate:                 floatPtr(p.FixedDiscountRate.InexactFloat64()),
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every rule and returns all failures in field order.
func (f *ParametersFactory) Validate(pj ParametersJSON) []FieldError {
	var v validator

	switch {
	case pj.PricingModel == nil:
		v.fail(FieldPricingModel, "Required")
	default:
		if _, ok := pricing.ParseModel(*pj.PricingModel); !ok {
			v.fail(FieldPricingModel, "Invalid pricing model, expected 'initialResponse' | 'fixedDiscount'")
		}
	}

	if x, ok := v.number(FieldListPricePerAdministration, pj.ListPricePerAdministration); ok && x < 0 {
		v.fail(FieldListPricePerAdministration, "Must be a positive number")
	}

	if x, ok := v.number(FieldNewPatientsPerMonth, pj.NewPatientsPerMonth); ok && x < 0 {
		v.fail(FieldNewPatientsPerMonth, "Must be a positive number")
	}

	if x, ok := v.number(FieldAverageTreatmentDuration, pj.AverageTreatmentDuration); ok {
		switch {
		case x < 1:
			v.fail(FieldAverageTreatmentDuration, "Must be at least 1 month")
		case x != math.Trunc(x):
			v.fail(FieldAverageTreatmentDuration, "Must be a whole number of months")
		}
	}

	if x, ok := v.number(FieldAdministrationsPerPatientPerMonth, pj.AdministrationsPerPatientPerMonth); ok && x < 1 {
		v.fail(FieldAdministrationsPerPatientPerMonth, "Must be at least 1")
	}

	if x, ok := v.number(FieldTimeHorizon, pj.TimeHorizon); ok {
		switch {
		case x < MinTimeHorizon:
			v.fail(FieldTimeHorizon, fmt.Sprintf("Must be at least %d months", MinTimeHorizon))
		case x > MaxTimeHorizon:
			v.fail(FieldTimeHorizon, fmt.Sprintf("Must be at most %d months", MaxTimeHorizon))
		case x != math.Trunc(x):
			v.fail(FieldTimeHorizon, "Must be a whole number of months")
		}
	}

	v.fraction(FieldResponseRateAfterMonth1, pj.ResponseRateAfterMonth1)
	v.fraction(FieldFixedDiscountRate, pj.FixedDiscountRate)

	return v.errs
}

type validator struct {
	errs []FieldError
}

func (v *validator) fail(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

// number reports whether the field is present and finite, recording the
// failure otherwise.
func (v *validator) number(field string, p *float64) (float64, bool) {
	if p == nil {
		v.fail(field, "Required")
		return 0, false
	}
	if math.IsNaN(*p) || math.IsInf(*p, 0) {
		v.fail(field, "Must be a finite number")
		return 0, false
	}
	return *p, true
}

func (v *validator) fraction(field string, p *float64) {
	if x, ok := v.number(field, p); ok && (x < 0 || x > 1) {
		v.fail(field, "Must be between 0 and 1")
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func expectedType(field string) string {
	if field == FieldPricingModel {
		return "string"
	}
	return "number"
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	return strPtr(*p)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return floatPtr(*p)
}
