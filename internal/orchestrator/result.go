package orchestrator

import (
	"strings"
	"sync"
	"time"

	"github.com/valpere/cliptran/internal"
	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/terminology"
)

// Status is the outcome of one pipeline run.
type Status string

const (
	StatusTranslated Status = "translated"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Result is one entry of the session's result log.
type Result struct {
	ID           string             `json:"id"`
	RunID        string             `json:"run_id"`
	Original     string             `json:"original"`
	Detected     detector.Language  `json:"detected"`
	Target       detector.Language  `json:"target"`
	Preprocessed string             `json:"preprocessed,omitempty"`
	Notes        []terminology.Note `json:"notes,omitempty"`
	Translation  string             `json:"translation,omitempty"`
	Usage        pricing.Usage      `json:"usage"`
	Cost         float64            `json:"cost"`
	Model        string             `json:"model"`
	Status       Status             `json:"status"`
	Error        string             `json:"error,omitempty"`
	Latency      time.Duration      `json:"latency"`
	ProducedAt   time.Time          `json:"produced_at"`
}

func (r *Result) record() internal.TranslationRecord {
	return internal.TranslationRecord{
		ID:             r.ID,
		RunID:          r.RunID,
		SourceText:     r.Original,
		DetectedLang:   string(r.Detected),
		TargetLang:     string(r.Target),
		TranslatedText: r.Translation,
		Model:          r.Model,
		Status:         string(r.Status),
		Error:          r.Error,
		InputTokens:    r.Usage.InputTokens,
		OutputTokens:   r.Usage.OutputTokens,
		LatencyMs:      r.Latency.Milliseconds(),
		CreatedAt:      r.ProducedAt,
	}
}

// BatchResult holds one entry per input line, in input order.
type BatchResult struct {
	RunID     string   `json:"run_id"`
	Entries   []Result `json:"entries"`
	TotalCost float64  `json:"total_cost"`
}

// Failed returns how many entries failed.
func (b *BatchResult) Failed() int {
	n := 0
	for _, e := range b.Entries {
		if e.Status == StatusFailed {
			n++
		}
	}
	return n
}

// SplitLines splits every input on newlines, trims each line and drops blank
// ones.
func SplitLines(inputs ...string) []string {
	var out []string
	for _, in := range inputs {
		for _, line := range strings.Split(in, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// resultLog is the append-only in-memory log of the session.
type resultLog struct {
	mu      sync.Mutex
	entries []Result
}

func (l *resultLog) append(r Result) {
	l.mu.Lock()
	l.entries = append(l.entries, r)
	l.mu.Unlock()
}

func (l *resultLog) list() []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Result, len(l.entries))
	copy(out, l.entries)
	return out
}
