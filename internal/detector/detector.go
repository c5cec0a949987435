// Package detector classifies text by the script it is written in. It is the
// cheap, deterministic first step of the translation pipeline; it does not
// try to tell apart languages that share a script.
package detector

import (
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a detected or configured language code.
type Language string

const (
	Japanese Language = "ja"
	Chinese  Language = "zh"
	English  Language = "en"
	Unknown  Language = "unknown"
)

// Auto is the source-language setting that enables detection.
const Auto = "auto"

// Detect returns the language of text. When source is anything other than
// "auto" (or empty) it is returned unchanged; otherwise the text is classified
// by script: any kana means Japanese, ideographs without kana mean Chinese,
// Latin letters mean English.
func Detect(text, source string) Language {
	if source != "" && source != Auto {
		return Language(source)
	}

	var hasIdeograph, hasLatin bool
	for _, r := range text {
		switch {
		case isKana(r):
			return Japanese
		case isIdeograph(r):
			hasIdeograph = true
		case isLatinLetter(r):
			hasLatin = true
		}
	}

	switch {
	case hasIdeograph:
		return Chinese
	case hasLatin:
		return English
	default:
		return Unknown
	}
}

// Hiragana U+3040–U+309F and Katakana U+30A0–U+30FF, including the
// prolonged sound mark which unicode.Katakana leaves out.
func isKana(r rune) bool {
	return r >= 0x3040 && r <= 0x30FF
}

// CJK Unified Ideographs block.
func isIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

// IsSupported reports whether code can be used as a translation target.
func IsSupported(code string) bool {
	switch Language(code) {
	case Japanese, Chinese, English:
		return true
	}
	return false
}

// DisplayName returns the English name used in provider prompts, e.g.
// "Japanese" or "Simplified Chinese". Unknown codes are returned as-is.
func DisplayName(lang Language) string {
	var tag language.Tag
	switch lang {
	case Chinese:
		tag = language.SimplifiedChinese
	case Unknown, "":
		return "the source language"
	default:
		t, err := language.Parse(string(lang))
		if err != nil {
			return string(lang)
		}
		tag = t
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return string(lang)
}
