// Package handlers provides HTTP handlers for budget optimization.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/internal/respond"
)

// Handler provides HTTP handlers for budget endpoints
type Handler struct {
	service *budget.Service
	log     zerolog.Logger
}

// NewHandler creates a new budget handler
func NewHandler(service *budget.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "budget").Logger(),
	}
}

// CategoriesResponse lists the categories with the rules in force.
type CategoriesResponse struct {
	Categories []budget.CategoryInfo `json:"categories"`
	Needs      []budget.Category     `json:"needs"`
	IncomeKey  string                `json:"income_key"`
	Rules      budget.Rules          `json:"rules"`
	Scale      int64                 `json:"scale"`
}

// HandleGetCategories handles GET /api/budget/categories
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, CategoriesResponse{
		Categories: budget.DescribeCategories(),
		Needs:      budget.NeedsCategories(),
		IncomeKey:  budget.IncomeKey,
		Rules:      h.service.DefaultRules(),
		Scale:      h.service.DefaultScale(),
	})
}

// HandleWeights handles POST /api/budget/weights
func (h *Handler) HandleWeights(w http.ResponseWriter, r *http.Request) {
	var req budget.WeightsRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.service.Weights(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, http.StatusOK, report)
}

// HandleOptimize handles POST /api/budget/optimize. An infeasible budget is
// a 200 response with a null allocation and loss.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req budget.Request
	if !h.decode(w, r, &req) {
		return
	}

	run, err := h.service.Optimize(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, http.StatusOK, run)
}

// HandleCheck handles POST /api/budget/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req budget.CheckRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.service.Check(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, http.StatusOK, report)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := respond.Decode(r, v); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

// fail writes 400 for rejected input and 500 for everything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *budget.ValidationError
	if errors.As(err, &verr) {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), map[string]string{
			"field":  verr.Field,
			"reason": verr.Reason,
		})
		return
	}
	if errors.Is(err, budget.ErrInvalidInput) {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Budget request failed")
	h.writeError(w, r, http.StatusInternalServerError, "Optimization failed", err.Error())
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := respond.Write(w, r, status, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string, details interface{}) {
	if err := respond.Error(w, r, status, message, details); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode error response")
	}
}
