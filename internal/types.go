package internal

import "time"

// TranslationRecord is one finished pipeline run as kept in the history
// journal. Cost is not stored; it is derived from the token counts and the
// model's price when needed.
type TranslationRecord struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	SourceText     string    `json:"source_text"`
	DetectedLang   string    `json:"detected_lang"`
	TargetLang     string    `json:"target_lang"`
	TranslatedText string    `json:"translated_text"`
	Model          string    `json:"model"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	InputTokens    int       `json:"input_tokens"`
	OutputTokens   int       `json:"output_tokens"`
	LatencyMs      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
