package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Gate denials (expected, user-facing conditions)
	ErrCodeAlreadyAttempted = "already_attempted"
	ErrCodeWindowNotOpen    = "window_not_open"
	ErrCodeWindowClosed     = "window_closed"
	ErrCodeQuizDisabled     = "quiz_disabled"

	// Attempt errors
	ErrCodeNoQuestionsAvailable = "no_questions_available"
	ErrCodeDuplicateSubmission  = "duplicate_submission"
	ErrCodeNoServedSet          = "no_served_set"
	ErrCodeSubmitFailed         = "submit_failed"

	// Ranking errors
	ErrCodeRankingInProgress = "ranking_in_progress"
	ErrCodeRankingFailed     = "ranking_failed"

	// Voucher errors
	ErrCodeVoucherFetchFailed = "voucher_fetch_failed"

	// Settings errors
	ErrCodeSettingsFetchFailed  = "settings_fetch_failed"
	ErrCodeSettingsUpdateFailed = "settings_update_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
