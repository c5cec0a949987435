// Package terminology rewrites known mistranscribed or ambiguous source terms
// before text is sent for translation.
package terminology

import (
	"fmt"
	"strings"
)

// Entry maps one source term to the text that replaces it.
type Entry struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Dictionary is an ordered source-term → target-term mapping with unique keys.
// It is not safe for concurrent mutation; share it through Store.
type Dictionary struct {
	entries []Entry
	index   map[string]int
}

// NewDictionary builds a dictionary from entries. Later duplicates overwrite
// the target of the first occurrence without changing its position.
func NewDictionary(entries ...Entry) (*Dictionary, error) {
	d := &Dictionary{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if err := d.Set(e.Source, e.Target); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Set adds or replaces the entry for source.
func (d *Dictionary) Set(source, target string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("terminology source term must not be empty")
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[source]; ok {
		d.entries[i].Target = target
		return nil
	}
	d.index[source] = len(d.entries)
	d.entries = append(d.entries, Entry{Source: source, Target: target})
	return nil
}

// Delete removes source, reporting whether it was present.
func (d *Dictionary) Delete(source string) bool {
	i, ok := d.index[source]
	if !ok {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, source)
	for j := i; j < len(d.entries); j++ {
		d.index[d.entries[j].Source] = j
	}
	return true
}

// Get returns the target for source.
func (d *Dictionary) Get(source string) (string, bool) {
	if d == nil {
		return "", false
	}
	i, ok := d.index[source]
	if !ok {
		return "", false
	}
	return d.entries[i].Target, true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of the entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Clone returns an independent copy suitable for editing.
func (d *Dictionary) Clone() *Dictionary {
	c := &Dictionary{index: make(map[string]int, d.Len())}
	if d == nil {
		return c
	}
	c.entries = d.Entries()
	for i, e := range c.entries {
		c.index[e.Source] = i
	}
	return c
}

// Merge adds every entry whose source is not already present and returns how
// many were added. Existing targets are never overwritten.
func (d *Dictionary) Merge(entries []Entry) int {
	added := 0
	for _, e := range entries {
		if _, ok := d.index[e.Source]; ok {
			continue
		}
		if err := d.Set(e.Source, e.Target); err == nil {
			added++
		}
	}
	return added
}
