/*
handlers.go - HTTP API handlers for the drug pricing simulator

PURPOSE:
  Exposes the pricing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to factory (validation) and pricing
  (simulation).

ENDPOINTS:
  Health:
    GET    /api/health                      Liveness probe

  Simulation:
    POST   /api/simulate                    Validate parameters and simulate
    POST   /api/calculate                   Alias of /api/simulate
    POST   /api/compare                     Run both pricing models side by side
    GET    /api/parameters/defaults         Analyst form defaults

  Run history:
    GET    /api/simulations                 List stored runs (?limit=N)
    GET    /api/simulations/{id}            Stored run with results
    GET    /api/simulations/{id}/cohorts    Cohort breakdown (?month=N)
    DELETE /api/simulations/{id}            Delete a stored run
    DELETE /api/simulations                 Clear run history

  Scenarios:
    GET    /api/scenarios                   List preset scenarios
    POST   /api/scenarios/{id}/simulate     Simulate a preset

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Run history (nil disables persistence)
  - Factory: JSON to pricing.Parameters conversion and validation

REQUEST FLOW:
  1. Read HTTP body
  2. Validate input (factory)
  3. Simulate (pricing)
  4. Record the run (store)
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, validation errors (per-field list)
  - 404: Run or scenario not found
  - 500: Internal errors (opaque message, details only in the log)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset scenario handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/pricing-engine/cohort"
	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/store"
)

// maxBodyBytes bounds request bodies; a parameter document is tiny.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.RunStore
	Factory *factory.ParametersFactory

	now func() time.Time
}

// NewHandler creates a new handler. A nil store disables run history.
func NewHandler(st store.RunStore) *Handler {
	return &Handler{
		Store:   st,
		Factory: factory.NewParametersFactory(),
		now:     time.Now,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports that the API is up.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Drug pricing simulator API is running",
	})
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// Simulate validates the body and returns the month-by-month projection.
// POST /api/simulate
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	params, ok := h.readParameters(w, r)
	if !ok {
		return
	}
	h.simulate(w, r, *params)
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request, params pricing.Parameters) {
	results := pricing.Simulate(params)

	resp := NewSimulateResponse(h.Factory.ToJSON(params), results)

	if h.Store != nil {
		run := store.NewRun(params, results, h.now())
		if err := h.Store.SaveRun(r.Context(), run); err != nil {
			writeInternalError(w, "Simulate", err)
			return
		}
		resp.RunID = run.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

// Compare runs both pricing models on the same parameters. The body's
// pricingModel must still be valid but does not affect the output.
// POST /api/compare
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	params, ok := h.readParameters(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, NewCompareResponse(h.Factory.ToJSON(*params), pricing.Compare(*params)))
}

// GetDefaults returns the analyst form's starting values.
// GET /api/parameters/defaults
func (h *Handler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.DefaultParametersJSON())
}

// readParameters decodes and validates the body, writing the 400 response
// itself when it fails.
func (h *Handler) readParameters(w http.ResponseWriter, r *http.Request) (*pricing.Parameters, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}

	params, err := h.Factory.ParseJSON(body)
	switch {
	case err == nil:
		return params, true
	case errors.Is(err, factory.ErrInvalidParameters):
		writeError(w, http.StatusBadRequest, "Validation failed", factory.FieldErrors(err))
	case factory.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
	default:
		writeInternalError(w, "readParameters", err)
	}
	return nil, false
}

// =============================================================================
// RUN HISTORY HANDLERS
// =============================================================================

// ListRuns returns stored runs, newest first.
// GET /api/simulations?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Validation failed", []factory.FieldError{
				{Field: "limit", Message: "Must be a positive whole number"},
			})
			return
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeInternalError(w, "ListRuns", err)
		return
	}

	dtos := make([]RunSummaryDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunSummaryDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns a stored run with its results.
// GET /api/simulations/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, RunDTO{
		RunSummaryDTO: toRunSummaryDTO(*run),
		Data:          h.Factory.ToJSON(run.Parameters),
		Results:       toMonthResultDTOs(run.Results),
	})
}

// GetRunCohorts returns every cohort in treatment during one month of a run.
// GET /api/simulations/{id}/cohorts?month=N
func (h *Handler) GetRunCohorts(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	p := run.Parameters
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > p.TimeHorizon {
		writeError(w, http.StatusBadRequest, "Validation failed", []factory.FieldError{
			{Field: "month", Message: "Must be a month within the time horizon"},
		})
		return
	}

	rule := p.PricingModel.Rule(p)
	contributions := cohort.Breakdown(month, p.CohortParams(), rule)
	for i := range contributions {
		contributions[i].Patients = contributions[i].Patients.Round(pricing.AmountPlaces)
		contributions[i].Administrations = contributions[i].Administrations.Round(pricing.AmountPlaces)
	}
	acc := cohort.Accrue(month, p.CohortParams(), rule)

	writeJSON(w, http.StatusOK, CohortBreakdownResponse{
		RunID:        run.ID,
		Month:        month,
		PricingModel: string(p.PricingModel),
		Rule:         rule.Name(),
		Cohorts:      toCohortDTOs(contributions),
		FullPayers:   toFloat(acc.FullPayers.Round(pricing.AmountPlaces)),
		AllAdmins:    toFloat(acc.AllAdmins.Round(pricing.AmountPlaces)),
	})
}

// DeleteRun removes a stored run.
// DELETE /api/simulations/{id}
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	err := h.Store.DeleteRun(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Simulation run not found", nil)
	case err != nil:
		writeInternalError(w, "DeleteRun", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ResetRuns clears the run history.
// DELETE /api/simulations
func (h *Handler) ResetRuns(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	if err := h.Store.Reset(r.Context()); err != nil {
		writeInternalError(w, "ResetRuns", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	if !h.requireStore(w) {
		return nil, false
	}

	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Simulation run not found", nil)
		return nil, false
	case err != nil:
		writeInternalError(w, "loadRun", err)
		return nil, false
	}
	return run, true
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.Store == nil {
		writeError(w, http.StatusNotFound, "Run history is disabled", nil)
		return false
	}
	return true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeJSON encodes data before touching w, so an unencodable value (for
// example a result beyond float64 range) still becomes a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		writeInternalError(w, "writeJSON", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string, fields []factory.FieldError) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message, Errors: fields})
}

// writeInternalError logs err and hides it from the client.
func writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Printf("Error in %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Internal server error", nil)
}
