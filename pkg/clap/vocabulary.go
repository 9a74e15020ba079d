package clap

import (
	"fmt"
	"os"
	"strings"
)

// Vocabulary is an ordered set of unique tag strings. Insertion order is
// significant: it is the ranking tie-break order. A vocabulary is
// immutable once constructed; overriding the default replaces it as a
// whole, never merges.
type Vocabulary struct {
	tags []string
}

// NewVocabulary builds a vocabulary from tags, dropping duplicates while
// keeping the first occurrence. At least one tag is required.
func NewVocabulary(tags []string) (*Vocabulary, error) {
	seen := make(map[string]bool, len(tags))
	uniq := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}
	if len(uniq) == 0 {
		return nil, fmt.Errorf("clap: vocabulary must contain at least one tag")
	}
	return &Vocabulary{tags: uniq}, nil
}

// DefaultVocabulary returns a vocabulary with the built-in [DefaultTags].
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultTags)
	if err != nil {
		panic(err) // DefaultTags is non-empty
	}
	return v
}

// Len returns the number of tags.
func (v *Vocabulary) Len() int { return len(v.tags) }

// Tag returns the tag at index i.
func (v *Vocabulary) Tag(i int) string { return v.tags[i] }

// Tags returns a copy of the tag list in insertion order.
func (v *Vocabulary) Tags() []string {
	out := make([]string, len(v.tags))
	copy(out, v.tags)
	return out
}

// LoadVocabularyFile reads a newline-separated tag list. Lines are
// trimmed and blank lines dropped. If nothing remains, it returns
// (nil, nil): the caller is expected to fall back to the default
// vocabulary with a warning, not to fail.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clap: read tags file: %w", err)
	}
	var tags []string
	for _, line := range strings.Split(string(data), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return NewVocabulary(tags)
}
