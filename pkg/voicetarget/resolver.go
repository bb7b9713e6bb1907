// Package voicetarget resolves free-form spoken transcripts to detector class
// names.
package voicetarget

import (
	"strings"
	"unicode"
)

// Any is the sentinel class meaning "no target, announce everything".
const Any = "any"

// CurrencyPhrases trigger the currency side task. Transcripts containing one
// of them are commands, never targets.
var CurrencyPhrases = []string{
	"detect currency",
	"currency detection",
	"identify currency",
	"what currency",
}

type entry struct {
	Entry
	words []string
}

// Resolver maps transcripts to classes using an ordered synonym table.
type Resolver struct {
	table    []entry
	exact    map[string]string
	phonetic *phoneticMatcher
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTable replaces the synonym table.
func WithTable(table []Entry) Option {
	return func(r *Resolver) {
		r.setTable(table)
	}
}

// WithPhonetic enables a sound-alike fallback for single-word entries when the
// table scan finds nothing. threshold is the minimum Jaro-Winkler similarity.
func WithPhonetic(threshold float64) Option {
	return func(r *Resolver) {
		r.phonetic = newPhoneticMatcher(threshold)
	}
}

// New creates a resolver over DefaultTable.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	r.setTable(DefaultTable)
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resolver) setTable(table []Entry) {
	r.table = make([]entry, len(table))
	r.exact = make(map[string]string, len(table))
	for i, e := range table {
		r.table[i] = entry{Entry: e, words: strings.Fields(e.Phrase)}
		if _, dup := r.exact[e.Phrase]; !dup {
			r.exact[e.Phrase] = e.Class
		}
	}
}

// Resolve maps a transcript to a class name or Any. It reports false when
// nothing matches or the transcript is a currency command.
//
// Matching order: the whole normalized transcript against the table; then
// table entries in order, single-word entries as whole words and multi-word
// entries when every word appears somewhere in the transcript.
func (r *Resolver) Resolve(transcript string) (string, bool) {
	if IsCurrencyCommand(transcript) {
		return "", false
	}
	norm := Normalize(transcript)
	if norm == "" {
		return "", false
	}
	if class, ok := r.exact[norm]; ok {
		return class, true
	}

	words := strings.Fields(norm)
	has := make(map[string]bool, len(words))
	for _, w := range words {
		has[w] = true
	}

	for _, e := range r.table {
		if len(e.words) == 1 {
			if has[e.Phrase] {
				return e.Class, true
			}
			continue
		}
		all := true
		for _, w := range e.words {
			if !strings.Contains(norm, w) {
				all = false
				break
			}
		}
		if all {
			return e.Class, true
		}
	}

	if r.phonetic != nil {
		return r.phonetic.match(words, r.table)
	}
	return "", false
}

// Normalize lowercases s, turns every non-letter into a space and collapses
// runs of spaces.
func Normalize(s string) string {
	mapped := strings.Map(func(c rune) rune {
		if c < unicode.MaxASCII && unicode.IsLetter(c) {
			return unicode.ToLower(c)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// IsCurrencyCommand reports whether the transcript asks for currency
// detection.
func IsCurrencyCommand(transcript string) bool {
	t := strings.ToLower(strings.TrimSpace(transcript))
	for _, p := range CurrencyPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
