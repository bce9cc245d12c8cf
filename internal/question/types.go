package question

// Tier constants partition the bank by difficulty/grade band.
const (
	TierEasy   = "easy"
	TierMedium = "medium"
	TierHard   = "hard"
)

// Question is the server-held representation, answer key included.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Category     string   `json:"category"`
	Tier         string   `json:"tier"`
}

// ClientQuestion is the transport representation delivered to quiz takers.
// It never carries the correct answer index or the tier a fallback drew from.
type ClientQuestion struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// ClientView strips server-only fields for transport.
func (q Question) ClientView() ClientQuestion {
	return ClientQuestion{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Options:  q.Options,
		Category: q.Category,
	}
}

// ClientViews maps a served set into its transport representation.
func ClientViews(qs []Question) []ClientQuestion {
	out := make([]ClientQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ClientView())
	}
	return out
}
