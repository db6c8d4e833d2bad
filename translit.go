package hywmorph

import (
	"sort"
	"strings"
	"unicode"
)

// romanMapping maps natural Latin keyboard input by Western Armenian
// speakers to Armenian candidate spellings. Multi-candidate entries
// mark the consonant-shift mergers where pronunciation collapses a
// spelling distinction; downstream disambiguation (the analyzer or a
// language model) picks the real one.
type romanEntry struct {
	latin      string
	candidates []string
}

var romanMapping = []romanEntry{
	// Digraphs and trigraphs, matched before single characters.
	{"yev", []string{"եւ"}},
	{"ts", []string{"ծ", "ց"}},
	{"dz", []string{"ձ"}},
	{"ch", []string{"ջ", "չ"}},
	{"sh", []string{"շ"}},
	{"zh", []string{"ժ"}},
	{"gh", []string{"ղ"}},
	{"kh", []string{"խ"}},
	{"ou", []string{"ու"}},
	{"rr", []string{"ռ"}},
	{"ev", []string{"եւ"}},
	{"uh", []string{"ը"}},

	// Vowels.
	{"a", []string{"ա"}},
	{"e", []string{"ե", "է"}},
	{"i", []string{"ի"}},
	{"o", []string{"օ", "ո"}},
	{"u", []string{"ու", "ը"}},
	{"@", []string{"ը"}},

	// Unambiguous consonants.
	{"m", []string{"մ"}},
	{"n", []string{"ն"}},
	{"l", []string{"լ"}},
	{"v", []string{"վ"}},
	{"h", []string{"հ"}},
	{"y", []string{"յ"}},
	{"j", []string{"ժ", "ճ"}},
	{"f", []string{"ֆ"}},
	{"r", []string{"ր", "ռ"}},

	// The consonant-shift mergers.
	{"s", []string{"ս", "զ"}},
	{"z", []string{"զ"}},
	{"k", []string{"ք", "գ"}},
	{"g", []string{"կ"}},
	{"t", []string{"թ", "դ"}},
	{"d", []string{"տ"}},
	{"p", []string{"փ", "բ"}},
	{"b", []string{"պ"}},
	{"c", []string{"ց", "ծ", "ք", "գ"}},
	{"q", []string{"ք", "գ"}},
	{"w", []string{"վ"}},
	{"x", []string{"խ"}},
}

// Word-initial allographs: ե is pronounced ye- at the start of a
// word, ո is vo-, and յ is [h], so initial h also tries յ.
var romanInitialExtra = map[string][]string{
	"h": {"յ"},
}

// Romanizer converts Latin-keyboard Western Armenian into candidate
// Armenian spellings by greedy longest-match segmentation, expanding
// merger ambiguities into a capped candidate list.
type Romanizer struct {
	mapping map[string][]string
	keys    []string // longest first
	// MaxCandidates caps the expansion of ambiguous words.
	MaxCandidates int
}

// NewRomanizer builds a romanizer over the standard mapping table.
func NewRomanizer() *Romanizer {
	r := &Romanizer{
		mapping:       make(map[string][]string, len(romanMapping)),
		MaxCandidates: 32,
	}
	for _, e := range romanMapping {
		r.mapping[e.latin] = e.candidates
		r.keys = append(r.keys, e.latin)
	}
	sort.SliceStable(r.keys, func(i, j int) bool {
		return len(r.keys[i]) > len(r.keys[j])
	})
	return r
}

// AmbiguousKeys returns the Latin inputs with more than one Armenian
// candidate.
func (r *Romanizer) AmbiguousKeys() []string {
	var out []string
	for _, e := range romanMapping {
		if len(e.candidates) > 1 {
			out = append(out, e.latin)
		}
	}
	return out
}

// RomanizeWord converts one Latin-typed word into its candidate
// Armenian spellings, most plausible first. Characters with no
// mapping, including literal Armenian letters mixed into the input,
// pass through unchanged. The candidate list is capped at
// MaxCandidates; expansion beyond the cap keeps only the
// first-candidate branches.
func (r *Romanizer) RomanizeWord(word string) []string {
	lower := strings.ToLower(word)
	candidates := []string{""}
	pos := 0
	first := true

	for pos < len(lower) {
		key, opts := r.matchAt(lower, pos)
		if key == "" {
			// Pass one unmapped rune through as-is.
			runes := []rune(lower[pos:])
			opts = []string{string(runes[0])}
			pos += len(string(runes[0]))
		} else {
			if first {
				opts = append(append([]string(nil), opts...), romanInitialExtra[key]...)
			}
			pos += len(key)
		}
		first = false

		var next []string
		for _, prefix := range candidates {
			for _, opt := range opts {
				next = append(next, prefix+opt)
				if len(next) >= r.MaxCandidates {
					break
				}
			}
			if len(next) >= r.MaxCandidates {
				break
			}
		}
		candidates = next
	}
	return candidates
}

// matchAt finds the longest mapping key starting at pos.
func (r *Romanizer) matchAt(s string, pos int) (string, []string) {
	for _, key := range r.keys {
		if strings.HasPrefix(s[pos:], key) {
			return key, r.mapping[key]
		}
	}
	return "", nil
}

// RomanizeText converts the Latin words of text, taking the first
// candidate of each, and leaves everything else untouched.
func (r *Romanizer) RomanizeText(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if isLatinWord(tok) {
			if cands := r.RomanizeWord(tok); len(cands) > 0 {
				b.WriteString(cands[0])
				continue
			}
		}
		b.WriteString(tok)
	}
	return b.String()
}

func isLatinWord(s string) bool {
	hasLetter := false
	for _, ru := range s {
		if unicode.IsLetter(ru) {
			if !unicode.In(ru, unicode.Latin) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}
