package terminology

import (
	"strings"
	"unicode/utf8"
)

// Note records one substitution applied by Preprocess.
type Note struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (n Note) String() string {
	return n.Source + " → " + n.Target
}

// Preprocess replaces dictionary terms in text in a single left-to-right scan
// of the original input. At each position the longest matching source term
// wins; replaced output is never scanned again, so a target term cannot be
// re-matched by another entry. Notes list each applied term once, in order of
// first occurrence.
func Preprocess(text string, d *Dictionary) (string, []Note) {
	if d.Len() == 0 || text == "" {
		return text, nil
	}

	byFirst := make(map[rune][]Entry)
	for _, e := range d.entries {
		r, _ := utf8.DecodeRuneInString(e.Source)
		byFirst[r] = append(byFirst[r], e)
	}

	var (
		sb    strings.Builder
		notes []Note
		seen  map[string]bool
	)
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		best := -1
		for j, e := range byFirst[r] {
			if len(e.Source) <= bestLen(byFirst[r], best) {
				continue
			}
			if strings.HasPrefix(text[i:], e.Source) {
				best = j
			}
		}

		if best < 0 {
			sb.WriteString(text[i : i+size])
			i += size
			continue
		}

		e := byFirst[r][best]
		sb.WriteString(e.Target)
		i += len(e.Source)

		if seen == nil {
			seen = make(map[string]bool)
		}
		if !seen[e.Source] {
			seen[e.Source] = true
			notes = append(notes, Note{Source: e.Source, Target: e.Target})
		}
	}

	return sb.String(), notes
}

func bestLen(candidates []Entry, best int) int {
	if best < 0 {
		return 0
	}
	return len(candidates[best].Source)
}
