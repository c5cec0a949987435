// Package validator checks that a finished translation is written in the
// requested target language.
package validator

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/cliptran/internal/detector"
)

// minValidationLength is the rune count below which detection is unreliable
// and the translation is accepted as-is.
const minValidationLength = 8

var linguaByLanguage = map[detector.Language]lingua.Language{
	detector.Japanese: lingua.Japanese,
	detector.Chinese:  lingua.Chinese,
	detector.English:  lingua.English,
}

// Validator wraps a lingua detector restricted to the supported languages.
// Building one is expensive; reuse it.
type Validator struct {
	det lingua.LanguageDetector
}

// New builds a Validator.
func New() *Validator {
	det := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Japanese, lingua.Chinese, lingua.English).
		Build()
	return &Validator{det: det}
}

// IsValid reports whether text appears to be written in target. Short texts,
// unsupported targets and undecidable texts pass. A mismatch returns false and
// an error naming both languages.
func (v *Validator) IsValid(text string, target detector.Language) (bool, error) {
	want, ok := linguaByLanguage[target]
	if !ok {
		return true, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	got, ok := v.det.DetectLanguageOf(text)
	if !ok {
		return true, nil
	}
	if got != want {
		return false, fmt.Errorf("expected %s but detected %s", want, got)
	}
	return true, nil
}
