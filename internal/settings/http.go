package settings

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	httperrors "github.com/brightpath-edu/daily-quiz/pkg/http/errors"
)

// HTTPHandler exposes read and admin-update endpoints for competition settings.
type HTTPHandler struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewHTTPHandler constructs the settings HTTP handler.
func NewHTTPHandler(store Store, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:  store,
		logger: logger.With().Str("component", "settings_http").Logger(),
		now:    time.Now,
	}
}

// HandleGet returns the current settings.
// Route: GET /v1/settings
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	current, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("settings read failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSettingsFetchFailed, "failed to load settings")
		return
	}
	writeJSON(w, current)
}

// HandleUpdate replaces the settings after validation. The new values apply
// to the very next gate decision; nothing is cached.
// Route: PUT /v1/admin/settings
func (h *HTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var incoming Settings
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if err := incoming.Validate(); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
		return
	}

	incoming.UpdatedAt = h.now().UTC()
	stored, err := h.store.Update(r.Context(), incoming)
	if err != nil {
		h.logger.Error().Err(err).Msg("settings update failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSettingsUpdateFailed, "failed to update settings")
		return
	}

	h.logger.Info().
		Str("window_start", stored.WindowStart).
		Str("window_end", stored.WindowEnd).
		Bool("quiz_enabled", stored.QuizEnabled).
		Msg("settings updated")
	writeJSON(w, stored)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
