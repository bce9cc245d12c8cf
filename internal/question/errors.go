package question

import "errors"

// ErrNoQuestions indicates the bank cannot cover the requested set size.
// This is content starvation, an operational condition for administrators,
// not a user-facing denial.
var ErrNoQuestions = errors.New("question bank cannot cover the requested set")
