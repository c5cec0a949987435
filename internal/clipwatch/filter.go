package clipwatch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/cliptran/internal/detector"
)

// Reason explains why a clipboard change was not passed on.
type Reason string

const (
	Accepted       Reason = ""
	TooShort       Reason = "too short"
	Credential     Reason = "looks like a credential"
	TargetLanguage Reason = "already in the target language"
)

// DefaultMinLength is the shortest trimmed text, in runes, worth translating.
// Shorter copies are usually UI labels or stray selections.
const DefaultMinLength = 5

// DefaultSecretPrefixes are the prefixes of API keys and tokens that must never
// be sent to a provider.
var DefaultSecretPrefixes = []string{
	"sk-",
	"API",
	"api",
	"ghp_",
	"github_pat_",
	"xoxb-",
	"AKIA",
}

// Filter decides whether an observed clipboard change is sent downstream.
type Filter struct {
	MinLength int
	Prefixes  []string
}

// DefaultFilter returns the filter used by the monitor.
func DefaultFilter() Filter {
	return Filter{MinLength: DefaultMinLength, Prefixes: DefaultSecretPrefixes}
}

// Check classifies content against the current language settings. The
// target-language check is the loop breaker: a translation written back to the
// clipboard is always in the target language.
func (f Filter) Check(content, source string, target detector.Language) Reason {
	trimmed := strings.TrimSpace(norm.NFC.String(content))
	if utf8.RuneCountInString(trimmed) < f.MinLength {
		return TooShort
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(trimmed, p) {
			return Credential
		}
	}
	if detector.Detect(trimmed, source) == target {
		return TargetLanguage
	}
	return Accepted
}
