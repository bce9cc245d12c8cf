package ranking

import "errors"

// ErrRankingInProgress means another calculator run holds the lock for the
// target date. Callers should back off and retry later; the eventual outcome
// is identical because the run is idempotent.
var ErrRankingInProgress = errors.New("ranking already in progress for date")
