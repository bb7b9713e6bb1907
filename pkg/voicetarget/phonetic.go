package voicetarget

import (
	"github.com/antzucaro/matchr"
)

// phoneticMatcher finds table words that sound like a spoken word, for
// recognizer output such as "bottel" or "chare".
type phoneticMatcher struct {
	threshold float64
}

func newPhoneticMatcher(threshold float64) *phoneticMatcher {
	if threshold <= 0 {
		threshold = 0.85
	}
	return &phoneticMatcher{threshold: threshold}
}

// match returns the single-word entry whose Double Metaphone code overlaps a
// spoken word with the highest Jaro-Winkler similarity. Words under three
// letters are skipped.
func (m *phoneticMatcher) match(words []string, table []entry) (string, bool) {
	bestClass, bestScore := "", 0.0
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		wp, ws := matchr.DoubleMetaphone(w)
		for _, e := range table {
			if len(e.words) != 1 {
				continue
			}
			ep, es := matchr.DoubleMetaphone(e.Phrase)
			if !overlap(wp, ws, ep, es) {
				continue
			}
			score := matchr.JaroWinkler(w, e.Phrase, false)
			if score >= m.threshold && score > bestScore {
				bestClass, bestScore = e.Class, score
			}
		}
	}
	return bestClass, bestClass != ""
}

func overlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || a == bs {
			return true
		}
	}
	return false
}
