/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Field names are
  camelCase to match the analyst web client. Engine values are decimals;
  on the wire they are plain JSON numbers.

NAMING CONVENTION:
  - *DTO: Response fragments returned to clients
  - *Response: Top-level response envelopes

ENVELOPES:
  Every response carries "success" and "message". Validation failures add
  "errors": [{"field": ..., "message": ...}].

SEE ALSO:
  - handlers.go: Uses these types
  - factory/parameters.go: ParametersJSON (request body and "data" echo)
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/cohort"
	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/format"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/store"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// MonthResultDTO is one month of a projection.
type MonthResultDTO struct {
	Month               int     `json:"month"`
	NetRevenue          float64 `json:"netRevenue"`
	AvgNetPricePerAdmin float64 `json:"avgNetPricePerAdmin"`
	PercentDiscount     float64 `json:"percentDiscount"`
	AbsoluteDiscount    float64 `json:"absoluteDiscount"`
	AdminCount          float64 `json:"adminCount"`
}

// SimulateResponse is returned by POST /api/simulate.
type SimulateResponse struct {
	Success         bool                   `json:"success"`
	Message         string                 `json:"message"`
	Data            factory.ParametersJSON `json:"data"`
	Results         []MonthResultDTO       `json:"results"`
	TotalNetRevenue float64                `json:"totalNetRevenue"`
	RunID           string                 `json:"runId,omitempty"`
}

// ModelProjectionDTO is one model's side of a comparison.
type ModelProjectionDTO struct {
	PricingModel    string           `json:"pricingModel"`
	Results         []MonthResultDTO `json:"results"`
	TotalNetRevenue float64          `json:"totalNetRevenue"`
}

// CompareResponse is returned by POST /api/compare.
type CompareResponse struct {
	Success           bool                   `json:"success"`
	Message           string                 `json:"message"`
	Data              factory.ParametersJSON `json:"data"`
	InitialResponse   ModelProjectionDTO     `json:"initialResponse"`
	FixedDiscount     ModelProjectionDTO     `json:"fixedDiscount"`
	RevenueDifference float64                `json:"revenueDifference"` // initial response minus fixed discount
}

// RunSummaryDTO describes a stored run without its results.
type RunSummaryDTO struct {
	ID              string  `json:"id"`
	PricingModel    string  `json:"pricingModel"`
	TimeHorizon     int     `json:"timeHorizon"`
	TotalNetRevenue float64 `json:"totalNetRevenue"`
	CreatedAt       string  `json:"createdAt"`
}

// RunDTO is a stored run with its inputs and results.
type RunDTO struct {
	RunSummaryDTO
	Data    factory.ParametersJSON `json:"data"`
	Results []MonthResultDTO       `json:"results"`
}

// CohortDTO is one cohort's contribution to a month.
type CohortDTO struct {
	StartMonth        int     `json:"startMonth"`
	MonthsInTreatment int     `json:"monthsInTreatment"`
	Patients          float64 `json:"patients"`
	Administrations   float64 `json:"administrations"`
}

// CohortBreakdownResponse is returned by GET /api/simulations/{id}/cohorts.
type CohortBreakdownResponse struct {
	RunID        string      `json:"runId"`
	Month        int         `json:"month"`
	PricingModel string      `json:"pricingModel"`
	Rule         string      `json:"rule"`
	Cohorts      []CohortDTO `json:"cohorts"`
	FullPayers   float64     `json:"fullPayers"`
	AllAdmins    float64     `json:"allAdmins"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Errors  []factory.FieldError `json:"errors,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// NewSimulateResponse builds the success envelope for one projection.
// data echoes the validated parameters.
func NewSimulateResponse(data factory.ParametersJSON, results []pricing.MonthResult) SimulateResponse {
	return SimulateResponse{
		Success:         true,
		Message:         "Calculation completed successfully",
		Data:            data,
		Results:         toMonthResultDTOs(results),
		TotalNetRevenue: toFloat(format.TotalNetRevenue(results)),
	}
}

// NewCompareResponse builds the success envelope for a model comparison.
func NewCompareResponse(data factory.ParametersJSON, c pricing.Comparison) CompareResponse {
	diff := format.TotalNetRevenue(c.InitialResponse).Sub(format.TotalNetRevenue(c.FixedDiscount))
	return CompareResponse{
		Success:           true,
		Message:           "Comparison completed successfully",
		Data:              data,
		InitialResponse:   toModelProjectionDTO(pricing.ModelInitialResponse, c.InitialResponse),
		FixedDiscount:     toModelProjectionDTO(pricing.ModelFixedDiscount, c.FixedDiscount),
		RevenueDifference: toFloat(diff),
	}
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toMonthResultDTOs(results []pricing.MonthResult) []MonthResultDTO {
	dtos := make([]MonthResultDTO, len(results))
	for i, r := range results {
		dtos[i] = MonthResultDTO{
			Month:               r.Month,
			NetRevenue:          toFloat(r.NetRevenue),
			AvgNetPricePerAdmin: toFloat(r.AvgNetPricePerAdmin),
			PercentDiscount:     toFloat(r.PercentDiscount),
			AbsoluteDiscount:    toFloat(r.AbsoluteDiscount),
			AdminCount:          toFloat(r.AdminCount),
		}
	}
	return dtos
}

func toModelProjectionDTO(m pricing.Model, results []pricing.MonthResult) ModelProjectionDTO {
	return ModelProjectionDTO{
		PricingModel:    string(m),
		Results:         toMonthResultDTOs(results),
		TotalNetRevenue: toFloat(format.TotalNetRevenue(results)),
	}
}

func toRunSummaryDTO(r store.Run) RunSummaryDTO {
	return RunSummaryDTO{
		ID:              r.ID,
		PricingModel:    string(r.Parameters.PricingModel),
		TimeHorizon:     r.Parameters.TimeHorizon,
		TotalNetRevenue: toFloat(r.TotalNetRevenue),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func toCohortDTOs(contributions []cohort.Contribution) []CohortDTO {
	dtos := make([]CohortDTO, len(contributions))
	for i, c := range contributions {
		dtos[i] = CohortDTO{
			StartMonth:        c.StartMonth,
			MonthsInTreatment: c.MonthsInTreatment,
			Patients:          toFloat(c.Patients),
			Administrations:   toFloat(c.Administrations),
		}
	}
	return dtos
}
