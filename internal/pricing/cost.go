package pricing

import (
	"math"
	"sync"
	"unicode"
)

// Usage is the token accounting returned by one provider call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// IsZero reports whether the provider returned no usage.
func (u Usage) IsZero() bool {
	return u.InputTokens == 0 && u.OutputTokens == 0
}

// CalculateCost prices usage against p.
func CalculateCost(p ModelProfile, inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*p.InputPricePerMillionTokens +
		float64(outputTokens)/1e6*p.OutputPricePerMillionTokens
}

// EstimateTokens gives a rough token count before a request is made: about
// four Latin characters or whitespace, two ideographs, or three other
// characters per token.
func EstimateTokens(text string) int {
	var latin, han, other int
	for _, r := range text {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsSpace(r)):
			latin++
		case r >= 0x4E00 && r <= 0x9FAF:
			han++
		default:
			other++
		}
	}
	return int(math.Ceil(float64(latin)/4 + float64(han)/2 + float64(other)/3))
}

// LedgerSnapshot is a point-in-time copy of a Ledger.
type LedgerSnapshot struct {
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	CumulativeCost    float64 `json:"cumulative_cost"`
	Requests          int64   `json:"requests"`
}

// Ledger accumulates usage and cost for the session. Fields only grow,
// except through Reset.
type Ledger struct {
	mu   sync.Mutex
	snap LedgerSnapshot
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record prices u against the pinned profile p, adds it to the ledger and
// returns the cost of this call.
func (l *Ledger) Record(p ModelProfile, u Usage) float64 {
	cost := CalculateCost(p, u.InputTokens, u.OutputTokens)

	l.mu.Lock()
	l.snap.TotalInputTokens += int64(u.InputTokens)
	l.snap.TotalOutputTokens += int64(u.OutputTokens)
	l.snap.CumulativeCost += cost
	l.snap.Requests++
	l.mu.Unlock()

	return cost
}

// Reset zeroes every field in one step.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.snap = LedgerSnapshot{}
	l.mu.Unlock()
}

// Snapshot returns the current totals.
func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}
