/*
scenarios.go - Preset scenario handlers

PURPOSE:

	Lets the analyst front end offer ready-made parameter sets. Each preset
	is a complete, valid parameter document that can be shown in the form
	or simulated directly.

AVAILABLE SCENARIOS:

	baseline-initial-response: Form defaults under initial response pricing
	baseline-fixed-discount:   Form defaults under a flat discount
	low-response:              40% response rate after month 1
	short-course:              One-month course, both models bill equal volumes
	long-horizon:              24 month horizon, cohorts never retire

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/low-response/simulate

ADDING NEW SCENARIOS:
 1. Add to the scenarios slice in factory/scenarios.go
 2. No handler change is needed

SEE ALSO:
  - factory/scenarios.go: Preset definitions
  - handlers.go: Simulate (shared response path)
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/pricing-engine/factory"
)

// ScenarioDTO describes a preset scenario.
type ScenarioDTO struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	PricingModel string                 `json:"pricingModel"`
	Data         factory.ParametersJSON `json:"data"`
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list := factory.Scenarios()
	dtos := make([]ScenarioDTO, len(list))
	for i, s := range list {
		dtos[i] = toScenarioDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SimulateScenario runs a preset exactly like POST /api/simulate.
// POST /api/scenarios/{id}/simulate
func (h *Handler) SimulateScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := factory.FindScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	params, err := h.Factory.FromJSON(s.Parameters)
	if err != nil {
		writeInternalError(w, "SimulateScenario", err)
		return
	}
	h.simulate(w, r, *params)
}

func toScenarioDTO(s factory.Scenario) ScenarioDTO {
	var model string
	if s.Parameters.PricingModel != nil {
		model = *s.Parameters.PricingModel
	}
	return ScenarioDTO{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		PricingModel: model,
		Data:         s.Parameters,
	}
}
