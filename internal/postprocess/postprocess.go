// Package postprocess strips the wrapping that chat models put around a
// translation: reasoning blocks, "Translation:" labels and outer quotes.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean returns the bare translation text.
func Clean(text string) string {
	text = removeReasoning(text)
	text = removeLabels(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag pair is spelled out.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>`,
)

// An opening tag whose block was cut off by max_tokens.
var truncatedReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>).*$`)

func removeReasoning(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = truncatedReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// labelRes match a leading label that models add despite being told not to.
// A trailing colon is required so real sentences are left alone.
var labelRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,.!]?\s*here(?:'s| is)(?: the)? (?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`^(?:译文|翻译|翻译结果|訳文|翻訳)\s*[:：]`),
}

func removeLabels(text string) string {
	for _, re := range labelRes {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
	{'『', '』'},
	{'«', '»'},
}

// removeQuoteWrapping drops one pair of matching outer quotes, but only when
// the quotes appear nowhere else in the text.
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	for _, q := range quotePairs {
		if runes[0] != q[0] || runes[n-1] != q[1] {
			continue
		}
		inner := string(runes[1 : n-1])
		if strings.ContainsRune(inner, q[0]) || strings.ContainsRune(inner, q[1]) {
			return text
		}
		return strings.TrimSpace(inner)
	}
	return text
}
