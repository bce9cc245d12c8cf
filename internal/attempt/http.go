package attempt

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/question"
	httperrors "github.com/brightpath-edu/daily-quiz/pkg/http/errors"
)

// HTTPHandler exposes the quiz-taking endpoints: question fetch and submission.
type HTTPHandler struct {
	service  *Service
	pipeline *Pipeline
	logger   zerolog.Logger
}

// NewHTTPHandler constructs the attempt HTTP handler.
func NewHTTPHandler(service *Service, pipeline *Pipeline, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service:  service,
		pipeline: pipeline,
		logger:   logger.With().Str("component", "attempt_http").Logger(),
	}
}

// HandleQuestions serves today's question set for a participant.
// Route: GET /v1/quiz/questions?participant={id}&tier={tier}
//
// A gate denial is not an error: it comes back as 429 with the reason code
// and a retry_at timestamp so clients can schedule the next try.
func (h *HTTPHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	participantID := r.URL.Query().Get("participant")
	if participantID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "participant query parameter is required")
		return
	}
	tier := r.URL.Query().Get("tier")

	questions, decision, err := h.service.StartAttempt(r.Context(), participantID, tier)
	if err != nil {
		switch {
		case errors.Is(err, ErrParticipantNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "participant not found")
		case errors.Is(err, question.ErrNoQuestions):
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeNoQuestionsAvailable, "question bank cannot fill a set right now")
		default:
			h.logger.Error().Err(err).Str("participant", participantID).Msg("question fetch failed")
			httperrors.RespondInternalError(w, "failed to serve questions")
		}
		return
	}

	if !decision.Allowed {
		details := map[string]interface{}{}
		if !decision.NextAvailableAt.IsZero() {
			details["retry_at"] = decision.NextAvailableAt.UTC().Format(time.RFC3339)
		}
		httperrors.RespondErrorWithDetails(w, http.StatusTooManyRequests, decision.Reason, denialMessage(decision.Reason), details)
		return
	}

	writeJSON(w, map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	})
}

// HandleSubmit scores a completed attempt.
// Route: POST /v1/quiz/submit
//
// Submitting twice in one day is safe: the first stored result comes back
// unchanged, so a client retry after a dropped response cannot double-score.
func (h *HTTPHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ParticipantID  string `json:"participant_id"`
		Tier           string `json:"tier"`
		Answers        []int  `json:"answers"`
		ElapsedSeconds int    `json:"elapsed_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if body.ParticipantID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "participant_id is required")
		return
	}

	result, err := h.pipeline.Submit(r.Context(), SubmitRequest{
		ParticipantID:  body.ParticipantID,
		Tier:           body.Tier,
		Answers:        body.Answers,
		ElapsedSeconds: body.ElapsedSeconds,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrParticipantNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "participant not found")
		case errors.Is(err, ErrNoServedSet):
			httperrors.RespondConflict(w, httperrors.ErrCodeNoServedSet, "no question set was served for this participant today")
		default:
			h.logger.Error().Err(err).Str("participant", body.ParticipantID).Msg("submission failed")
			httperrors.RespondInternalError(w, "failed to score submission")
		}
		return
	}

	writeJSON(w, map[string]interface{}{
		"result_id":       result.ID,
		"score":           result.Score,
		"total_questions": result.TotalQuestions,
		"elapsed_seconds": result.ElapsedSeconds,
		"quiz_date":       result.QuizDate.Format("2006-01-02"),
	})
}

func denialMessage(reason string) string {
	switch reason {
	case ReasonAlreadyAttempted:
		return "today's attempt has already been used"
	case ReasonWindowNotOpen:
		return "the quiz window has not opened yet"
	case ReasonWindowClosed:
		return "the quiz window has closed for today"
	case ReasonQuizDisabled:
		return "the quiz is currently disabled"
	default:
		return "attempt not allowed"
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
