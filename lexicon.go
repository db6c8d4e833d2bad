// Package hywmorph provides Western Armenian morphological analysis and
// generation, combining the Nayiri lexicon, the Apertium transducer and
// the HySpell dictionaries behind one ordered-fallback interface.
package hywmorph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Inflection is a single inflection pattern from the Nayiri inflection
// catalog. Inflections are shared by many word forms across lemmas and
// are immutable once loaded.
type Inflection struct {
	// ID is the catalog identifier, e.g. "NOUN_SG_ABL".
	ID string
	// LemmaType is NOMINAL, VERBAL or UNINFLECTED.
	LemmaType string
	// DisplayNameHy and DisplayNameEn are human-readable descriptions.
	DisplayNameHy string
	DisplayNameEn string
	// Grammar holds the optional feature fields; absent fields are "".
	Grammar Features
	// VerbClass is the verbal inflection class, when present.
	VerbClass string
}

// WordForm is one (surface form, inflection id) pair of a lemma.
type WordForm struct {
	Surface      string
	InflectionID string
}

// LemmaEntry is a lemma with all its word forms. Entries are owned by
// the Lexicon and are only ever appended to by Merge, never mutated.
type LemmaEntry struct {
	LemmaID      string
	LexemeID     string
	LemmaString  string
	PartOfSpeech string
	WordForms    []WordForm
}

// MorphAnalysis is the result of analyzing a surface form against the
// lexicon: its lemma plus the resolved inflection. Analyses are derived
// at index-build time, not stored in the source document.
type MorphAnalysis struct {
	SurfaceForm  string
	LemmaString  string
	LexemeID     string
	LemmaID      string
	PartOfSpeech string
	Inflection   *Inflection
}

func (a *MorphAnalysis) Form() string        { return a.SurfaceForm }
func (a *MorphAnalysis) Lemma() string       { return a.LemmaString }
func (a *MorphAnalysis) POS() string         { return a.PartOfSpeech }
func (a *MorphAnalysis) Description() string { return a.Inflection.DisplayNameEn }
func (a *MorphAnalysis) Features() Features  { return a.Inflection.Grammar }

func (a *MorphAnalysis) String() string {
	return fmt.Sprintf("%s <- %s [%s] %s",
		a.SurfaceForm, a.LemmaString, a.PartOfSpeech, a.Inflection.DisplayNameEn)
}

// GeneratedForm is one surface form produced by Lexicon.Generate,
// paired with the inflection it realizes.
type GeneratedForm struct {
	Surface    string
	Inflection *Inflection
}

// Lexicon is the Nayiri Armenian lexicon, indexed for O(1)
// morphological lookup in both directions:
//
//   - formIndex:  surface form -> analyses   (analysis)
//   - lemmaIndex: lemma string -> entries    (generation)
//
// A Lexicon is built once from one or more documents and is read-only
// thereafter; Merge rebuilds both indexes from the concatenated entry
// lists rather than patching them incrementally.
type Lexicon struct {
	// inflectionList preserves catalog order across merges; the map is
	// rebuilt from it, so on id collision the later entry resolves.
	inflectionList []*Inflection
	inflections    map[string]*Inflection
	lemmaEntries   []*LemmaEntry

	formIndex  map[string][]*MorphAnalysis
	lemmaIndex map[string][]*LemmaEntry

	numLexemes   int
	numWordForms int
	// droppedForms counts word forms whose inflection id was absent
	// from the catalog and which therefore contribute no analysis.
	droppedForms int
}

// ---- Document parsing -------------------------------------------------

type rawDisplayName struct {
	Hy string `json:"hy"`
	En string `json:"en"`
}

type rawInflection struct {
	InflectionID string         `json:"inflectionId"`
	LemmaType    string         `json:"lemmaType"`
	DisplayName  rawDisplayName `json:"displayName"`
	Number       string         `json:"grammaticalNumber"`
	Person       string         `json:"grammaticalPerson"`
	Case         string         `json:"grammaticalCase"`
	Article      string         `json:"grammaticalArticle"`
	Tense        string         `json:"verbTense"`
	Mood         string         `json:"verbMood"`
	Polarity     string         `json:"verbPolarity"`
	VerbClass    string         `json:"verbalInflectionClass"`
}

type rawWordForm struct {
	S string `json:"s"`
	I string `json:"i"`
}

type rawLemma struct {
	LemmaID      string        `json:"lemmaId"`
	LemmaString  string        `json:"lemmaString"`
	PartOfSpeech string        `json:"partOfSpeech"`
	WordForms    []rawWordForm `json:"wordForms"`
}

type rawLexeme struct {
	LexemeID string     `json:"lexemeId"`
	Lemmas   []rawLemma `json:"lemmas"`
}

type rawDocument struct {
	Inflections []rawInflection `json:"inflections"`
	Lexemes     []rawLexeme     `json:"lexemes"`
}

// LexiconFromFile loads a single Nayiri lexicon JSON document.
func LexiconFromFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()
	lex, err := LexiconFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", path, err)
	}
	return lex, nil
}

// LexiconFromFiles loads several documents and merges them in the
// listed order.
func LexiconFromFiles(paths ...string) (*Lexicon, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no lexicon paths given")
	}
	lex, err := LexiconFromFile(paths[0])
	if err != nil {
		return nil, err
	}
	for _, p := range paths[1:] {
		other, err := LexiconFromFile(p)
		if err != nil {
			return nil, err
		}
		lex.Merge(other)
	}
	return lex, nil
}

// LexiconFromReader parses a lexicon document from r and builds the
// indexes. A document missing a required key at the lexeme, lemma or
// word-form level fails as a whole; no partially built index is
// returned.
func LexiconFromReader(r io.Reader) (*Lexicon, error) {
	var raw rawDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return lexiconFromRaw(&raw)
}

func lexiconFromRaw(raw *rawDocument) (*Lexicon, error) {
	lex := &Lexicon{
		inflections: make(map[string]*Inflection),
		formIndex:   make(map[string][]*MorphAnalysis),
		lemmaIndex:  make(map[string][]*LemmaEntry),
	}

	for i, ri := range raw.Inflections {
		if ri.InflectionID == "" {
			return nil, fmt.Errorf("inflection %d: missing inflectionId", i)
		}
		lex.inflectionList = append(lex.inflectionList, &Inflection{
			ID:            ri.InflectionID,
			LemmaType:     ri.LemmaType,
			DisplayNameHy: ri.DisplayName.Hy,
			DisplayNameEn: ri.DisplayName.En,
			Grammar: Features{
				Case:     ri.Case,
				Number:   ri.Number,
				Person:   ri.Person,
				Tense:    ri.Tense,
				Mood:     ri.Mood,
				Polarity: ri.Polarity,
				Article:  ri.Article,
			},
			VerbClass: ri.VerbClass,
		})
	}

	for _, rlx := range raw.Lexemes {
		if rlx.LexemeID == "" {
			return nil, fmt.Errorf("lexeme: missing lexemeId")
		}
		for _, rl := range rlx.Lemmas {
			if rl.LemmaID == "" || rl.LemmaString == "" || rl.PartOfSpeech == "" {
				return nil, fmt.Errorf("lexeme %s: lemma missing lemmaId, lemmaString or partOfSpeech", rlx.LexemeID)
			}
			entry := &LemmaEntry{
				LemmaID:      rl.LemmaID,
				LexemeID:     rlx.LexemeID,
				LemmaString:  rl.LemmaString,
				PartOfSpeech: rl.PartOfSpeech,
			}
			for _, wf := range rl.WordForms {
				if wf.S == "" || wf.I == "" {
					return nil, fmt.Errorf("lemma %s: word form missing surface or inflection id", rl.LemmaID)
				}
				entry.WordForms = append(entry.WordForms, WordForm{Surface: wf.S, InflectionID: wf.I})
				lex.numWordForms++
			}
			lex.lemmaEntries = append(lex.lemmaEntries, entry)
		}
	}
	lex.numLexemes = len(raw.Lexemes)

	lex.buildIndexes()
	return lex, nil
}

// buildIndexes rebuilds both lookup indexes in a single pass over the
// entry list, in list order, so lookup results preserve source
// document order.
func (lex *Lexicon) buildIndexes() {
	lex.inflections = make(map[string]*Inflection, len(lex.inflectionList))
	for _, inf := range lex.inflectionList {
		lex.inflections[inf.ID] = inf
	}

	lex.formIndex = make(map[string][]*MorphAnalysis)
	lex.lemmaIndex = make(map[string][]*LemmaEntry)
	lex.droppedForms = 0

	for _, entry := range lex.lemmaEntries {
		lex.lemmaIndex[entry.LemmaString] = append(lex.lemmaIndex[entry.LemmaString], entry)

		for _, wf := range entry.WordForms {
			inf, ok := lex.inflections[wf.InflectionID]
			if !ok {
				// A form referencing an unknown inflection id is
				// dropped: it contributes no analysis and is not an
				// error.
				lex.droppedForms++
				continue
			}
			a := &MorphAnalysis{
				SurfaceForm:  wf.Surface,
				LemmaString:  entry.LemmaString,
				LexemeID:     entry.LexemeID,
				LemmaID:      entry.LemmaID,
				PartOfSpeech: entry.PartOfSpeech,
				Inflection:   inf,
			}
			lex.formIndex[wf.Surface] = append(lex.formIndex[wf.Surface], a)

			// Index the lowercased spelling too, so case-insensitive
			// lookup is a plain secondary lookup rather than a scan.
			if lower := strings.ToLower(wf.Surface); lower != wf.Surface {
				lex.formIndex[lower] = append(lex.formIndex[lower], a)
			}
		}
	}
}

// ---- Analysis (form -> lemma + features) ------------------------------

// Analyze looks up a surface form and returns all its analyses, in
// source document order. Unknown forms yield an empty result, never an
// error.
func (lex *Lexicon) Analyze(form string) []*MorphAnalysis {
	return lex.formIndex[form]
}

// AnalyzeInsensitive looks a form up by its lowercased spelling.
func (lex *Lexicon) AnalyzeInsensitive(form string) []*MorphAnalysis {
	return lex.formIndex[strings.ToLower(form)]
}

// IsValidForm reports whether the form exists in the lexicon, under
// either its literal or its lowercased spelling.
func (lex *Lexicon) IsValidForm(form string) bool {
	if _, ok := lex.formIndex[form]; ok {
		return true
	}
	_, ok := lex.formIndex[strings.ToLower(form)]
	return ok
}

// ---- Generation (lemma + features -> forms) ---------------------------

// Generate returns the surface forms of lemma whose inflection
// satisfies every present constraint in filter; empty filter fields
// are wildcards. Results come in source order. An unknown lemma yields
// an empty result.
func (lex *Lexicon) Generate(lemma string, filter Features) []GeneratedForm {
	var results []GeneratedForm
	for _, entry := range lex.lemmaIndex[lemma] {
		for _, wf := range entry.WordForms {
			inf, ok := lex.inflections[wf.InflectionID]
			if !ok {
				continue
			}
			if !inf.Grammar.Matches(filter) {
				continue
			}
			results = append(results, GeneratedForm{Surface: wf.Surface, Inflection: inf})
		}
	}
	return results
}

// LemmasForPOS lists the lemma strings of every entry with the given
// part of speech, in entry order.
func (lex *Lexicon) LemmasForPOS(pos string) []string {
	var out []string
	for _, e := range lex.lemmaEntries {
		if e.PartOfSpeech == pos {
			out = append(out, e.LemmaString)
		}
	}
	return out
}

// ---- Merge ------------------------------------------------------------

// Merge appends other's inflection catalog and lemma entries to lex
// and rebuilds both indexes; lexeme and word-form counts become
// additive. Merge does not deduplicate: identical (lemma, surface,
// inflection) triples contributed by overlapping documents appear
// twice in lookup results.
func (lex *Lexicon) Merge(other *Lexicon) {
	lex.inflectionList = append(lex.inflectionList, other.inflectionList...)
	lex.lemmaEntries = append(lex.lemmaEntries, other.lemmaEntries...)
	lex.numLexemes += other.numLexemes
	lex.numWordForms += other.numWordForms
	lex.buildIndexes()
}

// ---- Iteration / stats ------------------------------------------------

// AllForms returns every key of the surface-form index, including the
// lowercased secondaries.
func (lex *Lexicon) AllForms() []string {
	out := make([]string, 0, len(lex.formIndex))
	for f := range lex.formIndex {
		out = append(out, f)
	}
	return out
}

// AllLemmas returns every distinct lemma string.
func (lex *Lexicon) AllLemmas() []string {
	out := make([]string, 0, len(lex.lemmaIndex))
	for l := range lex.lemmaIndex {
		out = append(out, l)
	}
	return out
}

// NumLexemes returns the number of lexemes loaded across all merged
// documents.
func (lex *Lexicon) NumLexemes() int { return lex.numLexemes }

// NumWordForms returns the number of word forms loaded across all
// merged documents, including dropped ones.
func (lex *Lexicon) NumWordForms() int { return lex.numWordForms }

// Summary returns loading statistics with a per-POS breakdown.
func (lex *Lexicon) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lexemes:        %d\n", lex.numLexemes)
	fmt.Fprintf(&b, "Lemma entries:  %d\n", len(lex.lemmaEntries))
	fmt.Fprintf(&b, "Word forms:     %d\n", lex.numWordForms)
	fmt.Fprintf(&b, "Unique forms:   %d\n", len(lex.formIndex))
	fmt.Fprintf(&b, "Inflections:    %d\n", len(lex.inflections))
	if lex.droppedForms > 0 {
		fmt.Fprintf(&b, "Dropped forms:  %d (unknown inflection id)\n", lex.droppedForms)
	}

	posLemmas := make(map[string]int)
	posForms := make(map[string]int)
	for _, e := range lex.lemmaEntries {
		posLemmas[e.PartOfSpeech]++
		posForms[e.PartOfSpeech] += len(e.WordForms)
	}
	keys := make([]string, 0, len(posLemmas))
	for pos := range posLemmas {
		keys = append(keys, pos)
	}
	sort.Slice(keys, func(i, j int) bool {
		if posLemmas[keys[i]] != posLemmas[keys[j]] {
			return posLemmas[keys[i]] > posLemmas[keys[j]]
		}
		return keys[i] < keys[j]
	})
	b.WriteString("\nPOS breakdown:\n")
	for _, pos := range keys {
		fmt.Fprintf(&b, "  %-12s %5d lemmas, %7d forms\n", pos, posLemmas[pos], posForms[pos])
	}
	return strings.TrimRight(b.String(), "\n")
}
