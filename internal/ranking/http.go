package ranking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	httperrors "github.com/brightpath-edu/daily-quiz/pkg/http/errors"
)

// HTTPHandler exposes the admin trigger for a ranking run.
type HTTPHandler struct {
	calc   *Calculator
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
}

// NewHTTPHandler constructs the ranking HTTP handler.
func NewHTTPHandler(calc *Calculator, loc *time.Location, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		calc:   calc,
		loc:    loc,
		logger: logger.With().Str("component", "ranking_http").Logger(),
		now:    time.Now,
	}
}

// HandleRun triggers the batch ranking calculation for one quiz date.
// Route: POST /v1/admin/rankings/run?date=2006-01-02 (defaults to today)
//
// A run already in flight for the date answers 409; retriggering a finished
// run is harmless and reports zero additional vouchers.
func (h *HTTPHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := attempt.DateOf(h.now(), h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "date must be formatted 2006-01-02")
			return
		}
		date = parsed
	}

	outcome, err := h.calc.Run(r.Context(), date)
	if err != nil {
		if errors.Is(err, ErrRankingInProgress) {
			httperrors.RespondConflict(w, httperrors.ErrCodeRankingInProgress, "a ranking run for this date is already in progress")
			return
		}
		h.logger.Error().Err(err).Time("date", date).Msg("ranking run failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeRankingFailed, "ranking run failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"date":            date.Format("2006-01-02"),
		"ranked":          outcome.Ranked,
		"vouchers_issued": outcome.VouchersIssued,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
