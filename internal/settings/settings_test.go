package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowForAnchorsOnLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)

	s := Settings{WindowStart: "06:00", WindowEnd: "20:00"}
	ref := time.Date(2025, 3, 10, 12, 30, 0, 0, loc)

	start, end, err := s.WindowFor(ref, loc)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 6, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, loc), end)
}

func TestWindowForConvertsForeignTimezones(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)

	s := Settings{WindowStart: "06:00", WindowEnd: "20:00"}
	// 21:00 UTC on March 9 is already March 10 in Kolkata.
	ref := time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC)

	start, _, err := s.WindowFor(ref, loc)
	assert.NoError(t, err)
	assert.Equal(t, 10, start.Day())
}

func TestValidate(t *testing.T) {
	valid := Settings{
		WindowStart:     "06:00",
		WindowEnd:       "20:00",
		ResultsRelease:  "21:00",
		DurationSeconds: 600,
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]Settings{
		"bad clock":      {WindowStart: "6am", WindowEnd: "20:00", ResultsRelease: "21:00", DurationSeconds: 600},
		"inverted":       {WindowStart: "20:00", WindowEnd: "06:00", ResultsRelease: "21:00", DurationSeconds: 600},
		"zero duration":  {WindowStart: "06:00", WindowEnd: "20:00", ResultsRelease: "21:00", DurationSeconds: 0},
		"bad release":    {WindowStart: "06:00", WindowEnd: "20:00", ResultsRelease: "25:00", DurationSeconds: 600},
		"minute overrun": {WindowStart: "06:75", WindowEnd: "20:00", ResultsRelease: "21:00", DurationSeconds: 600},
	}
	for name, s := range cases {
		assert.Error(t, s.Validate(), name)
	}
}
