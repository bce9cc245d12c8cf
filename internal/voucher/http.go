package voucher

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	httperrors "github.com/brightpath-edu/daily-quiz/pkg/http/errors"
)

// HTTPHandler exposes voucher queries for the redemption surface.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandler constructs the voucher HTTP handler.
func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "voucher_http").Logger(),
	}
}

// HandleList returns a participant's active vouchers.
// Route: GET /v1/vouchers?participant={id}
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	participantID := r.URL.Query().Get("participant")
	if participantID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "participant query parameter is required")
		return
	}

	vouchers, err := h.svc.ActiveVouchers(r.Context(), attempt.NormalizeParticipantID(participantID))
	if err != nil {
		h.logger.Error().Err(err).Str("participant", participantID).Msg("voucher listing failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeVoucherFetchFailed, "failed to list vouchers")
		return
	}
	if vouchers == nil {
		vouchers = []Voucher{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"vouchers": vouchers,
		"count":    len(vouchers),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
