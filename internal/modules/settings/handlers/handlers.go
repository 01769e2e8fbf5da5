// Package handlers provides HTTP handlers for solver settings.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/events"
	"github.com/aristath/budgetopt/internal/modules/settings"
	"github.com/aristath/budgetopt/internal/respond"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service      *settings.Service
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		eventManager: eventManager,
		log:          log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes mounts the settings endpoints under /settings.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Put("/{key}", h.HandleUpdate)
		r.Delete("/{key}", h.HandleReset)
	})
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get all settings")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to get settings", nil)
		return
	}
	h.write(w, r, http.StatusOK, views)
}

// HandleUpdate handles PUT /api/settings/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var update settings.SettingUpdate
	if err := respond.Decode(r, &update); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	value, err := h.service.Set(key, update.Value)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, settings.ErrUnknownSetting) {
			status = http.StatusNotFound
		} else if errors.Is(err, settings.ErrInvalidValue) {
			status = http.StatusBadRequest
		}
		h.log.Warn().
			Err(err).
			Str("key", key).
			Interface("value", update.Value).
			Msg("Failed to update setting")
		h.writeError(w, r, status, err.Error(), nil)
		return
	}

	h.emitChanged(key, value)
	h.write(w, r, http.StatusOK, map[string]interface{}{key: value})
}

// HandleReset handles DELETE /api/settings/{key}, restoring the default.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.service.Reset(key); err != nil {
		if errors.Is(err, settings.ErrUnknownSetting) {
			h.writeError(w, r, http.StatusNotFound, err.Error(), nil)
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to reset setting")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to reset setting", nil)
		return
	}

	value, _, err := h.service.Value(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to read setting after reset")
		h.writeError(w, r, http.StatusInternalServerError, "Failed to read setting", nil)
		return
	}

	h.emitChanged(key, value)
	h.write(w, r, http.StatusOK, map[string]interface{}{key: value})
}

func (h *Handler) emitChanged(key string, value float64) {
	if h.eventManager == nil {
		return
	}
	h.eventManager.EmitTyped("settings", &events.SettingsChangedData{
		Key:   key,
		Value: value,
	})
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
