package attempt

import "errors"

var (
	// ErrParticipantNotFound is returned when the identifier matches no enrollment.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrNoServedSet is returned when a submission arrives with no recorded
	// question set for the participant and date.
	ErrNoServedSet = errors.New("no served question set for participant and date")
)
