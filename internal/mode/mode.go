// Package mode holds the translation-mode policy gate.
package mode

import (
	"fmt"
	"strings"

	"github.com/valpere/cliptran/internal/detector"
)

// Mode decides which detected source languages are worth translating.
type Mode string

const (
	Auto         Mode = "auto"
	JapaneseOnly Mode = "japanese_only"
	ChineseOnly  Mode = "chinese_only"
)

// ShouldTranslate reports whether text detected as lang passes mode m.
// Unrecognised modes behave like Auto.
func ShouldTranslate(lang detector.Language, m Mode) bool {
	switch m {
	case JapaneseOnly:
		return lang == detector.Japanese
	case ChineseOnly:
		return lang == detector.Chinese
	default:
		return true
	}
}

// Parse accepts the canonical names plus the short forms "ja" and "zh".
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "japanese_only", "japanese-only", "ja", "ja-only":
		return JapaneseOnly, nil
	case "chinese_only", "chinese-only", "zh", "zh-only":
		return ChineseOnly, nil
	}
	return "", fmt.Errorf("unknown translation mode %q", s)
}

func (m Mode) String() string { return string(m) }
