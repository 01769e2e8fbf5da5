package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all budget routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/budget", func(r chi.Router) {
		r.Get("/categories", h.HandleGetCategories)
		r.Post("/weights", h.HandleWeights)
		r.Post("/optimize", h.HandleOptimize)
		r.Post("/check", h.HandleCheck)
	})
}
