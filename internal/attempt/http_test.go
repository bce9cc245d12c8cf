package attempt

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(results ResultStore, served ServedSetStore) *HTTPHandler {
	participants := newStubParticipantStore(Participant{ID: "student-1", DisplayName: "Asha", Tier: "easy"})
	svc := newTestService(newServiceBank(), results, served, participants)
	pipeline := newTestPipeline(results, served)
	return NewHTTPHandler(svc, pipeline, zerolog.New(io.Discard))
}

func TestHandleQuestionsReturnsSet(t *testing.T) {
	handler := newTestHandler(newStubResultStore(), newStubServedStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/quiz/questions?participant=student-1", nil)
	handler.HandleQuestions(rec, req)

	require.Equal(t, 200, rec.Code)
	var body struct {
		Questions []map[string]interface{} `json:"questions"`
		Count     int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Count)
	for _, q := range body.Questions {
		assert.NotContains(t, q, "correct_index")
	}
}

func TestHandleQuestionsDenialEnvelope(t *testing.T) {
	results := newStubResultStore()
	today := DateOf(fixedNow(), time.UTC)
	results.rows[resultKey("student-1", today)] = Result{ParticipantID: "student-1", QuizDate: today}
	handler := newTestHandler(results, newStubServedStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/quiz/questions?participant=student-1", nil)
	handler.HandleQuestions(rec, req)

	require.Equal(t, 429, rec.Code)
	var body struct {
		Error   string                 `json:"error"`
		Details map[string]interface{} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ReasonAlreadyAttempted, body.Error)
	assert.Contains(t, body.Details, "retry_at")
}

func TestHandleQuestionsMissingParticipant(t *testing.T) {
	handler := newTestHandler(newStubResultStore(), newStubServedStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/quiz/questions", nil)
	handler.HandleQuestions(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleSubmitScoresAndReports(t *testing.T) {
	served := newStubServedStore()
	_, _, err := served.Save(context.Background(), servedForToday())
	require.NoError(t, err)
	handler := newTestHandler(newStubResultStore(), served)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/quiz/submit", strings.NewReader(
		`{"participant_id":"student-1","tier":"easy","answers":[0,3,1,2,0],"elapsed_seconds":300}`))
	handler.HandleSubmit(rec, req)

	require.Equal(t, 200, rec.Code)
	var body struct {
		Score          int    `json:"score"`
		TotalQuestions int    `json:"total_questions"`
		QuizDate       string `json:"quiz_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Score)
	assert.Equal(t, 5, body.TotalQuestions)
	assert.Equal(t, "2025-03-10", body.QuizDate)
}

func TestHandleSubmitWithoutServedSet(t *testing.T) {
	handler := newTestHandler(newStubResultStore(), newStubServedStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/quiz/submit", strings.NewReader(
		`{"participant_id":"student-1","answers":[1],"elapsed_seconds":10}`))
	handler.HandleSubmit(rec, req)

	assert.Equal(t, 409, rec.Code)
}
