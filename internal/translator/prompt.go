package translator

import (
	"fmt"
	"strings"

	"github.com/valpere/cliptran/internal/detector"
)

// Sampling parameters for the two prompt tones.
const (
	baselineTemperature = 0.3
	baselineMaxTokens   = 500
	enhancedTemperature = 0.1
	enhancedMaxTokens   = 800
)

const (
	baselinePersona = "You are a professional translation assistant. You produce accurate, natural translations."
	enhancedPersona = "You are an expert Japanese-Chinese business translator. You understand Japanese corporate culture, " +
		"honorific registers and industry terminology, and you never add, drop or soften meaning."
)

// PromptParams describes one translation request.
type PromptParams struct {
	Model   string
	Text    string
	Source  detector.Language
	Target  detector.Language
	Quality bool
}

// BuildRequest assembles the system + user messages and sampling parameters.
func BuildRequest(p PromptParams) ChatRequest {
	sourceName := detector.DisplayName(p.Source)
	targetName := detector.DisplayName(p.Target)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following %s text into %s.\n\n", sourceName, targetName)
	fmt.Fprintf(&sb, "Text:\n%s\n\n", p.Text)
	sb.WriteString("Requirements:\n")

	req := ChatRequest{Model: p.Model}
	if p.Quality {
		sb.WriteString("1. Keep the meaning exact, paying particular attention to proper nouns and company names.\n")
		fmt.Fprintf(&sb, "2. Write fluent, idiomatic %s.\n", targetName)
		sb.WriteString("3. Preserve the tone and level of politeness of the original.\n")
		sb.WriteString("4. Translate technical terms precisely for their context.\n")
		sb.WriteString("5. Render sentence-final particles naturally instead of literally.\n")
		sb.WriteString("6. Leave pre-substituted terminology exactly as it appears.\n")
		sb.WriteString("7. Return only the translation, with no explanations.")
		req.Temperature = enhancedTemperature
		req.MaxTokens = enhancedMaxTokens
		req.Messages = []Message{{Role: RoleSystem, Content: enhancedPersona}}
	} else {
		sb.WriteString("1. Keep the meaning accurate.\n")
		sb.WriteString("2. Write natural, fluent text.\n")
		sb.WriteString("3. Leave pre-substituted terminology exactly as it appears.\n")
		sb.WriteString("4. Return only the translation, with no explanations.")
		req.Temperature = baselineTemperature
		req.MaxTokens = baselineMaxTokens
		req.Messages = []Message{{Role: RoleSystem, Content: baselinePersona}}
	}

	req.Messages = append(req.Messages, Message{Role: RoleUser, Content: sb.String()})
	return req
}
