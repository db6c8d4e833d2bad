package hywmorph

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"
)

// ---- UD -> Nayiri mapping ---------------------------------------------

var udToNayiriPOS = map[string]string{
	"NOUN":  "NOUN",
	"PROPN": "NOUN",
	"VERB":  "VERB",
	"AUX":   "AUX",
	"ADJ":   "ADJECTIVE",
	"ADV":   "ADVERB",
	"ADP":   "ADPOSITION",
	"DET":   "DETERMINER",
	"PRON":  "PRONOUN",
	"SCONJ": "CONJUNCTION",
	"CCONJ": "CONJUNCTION",
	"PART":  "PARTICLE",
	"INTJ":  "INTERJECTION",
	"NUM":   "NUMERAL",
}

var udToNayiriCase = map[string]string{
	"Nom": "NOMINATIVE", "Acc": "ACCUSATIVE", "Gen": "GENITIVE",
	"Dat": "DATIVE", "Abl": "ABLATIVE", "Ins": "INSTRUMENTAL", "Loc": "LOCATIVE",
}

var udToNayiriNumber = map[string]string{
	"Sing": "SINGULAR", "Plur": "PLURAL", "Coll": "COLLECTIVE",
}

var udToNayiriPerson = map[string]string{
	"1": "FIRST", "2": "SECOND", "3": "THIRD",
}

var udToNayiriTense = map[string]string{
	"Pres": "SIMPLE_PRESENT", "Past": "SIMPLE_PAST", "Imp": "IMPERFECT",
}

var udToNayiriMood = map[string]string{
	"Ind": "INDICATIVE", "Sub": "SUBJUNCTIVE", "Imp": "IMPERATIVE", "Cnd": "CONDITIONAL",
}

var udToNayiriPolarity = map[string]string{
	"Pos": "POSITIVE", "Neg": "NEGATIVE",
}

// ExtractSkipPOS lists the UD tags never worth extracting. NUM stays
// in, unlike DefaultSkipPOS: numerals written out as words belong in
// the lexicon.
var ExtractSkipPOS = map[string]bool{
	"PUNCT": true, "SYM": true, "X": true,
}

// ---- Output document --------------------------------------------------

type extractMetadata struct {
	Description    string `json:"description"`
	Source         string `json:"source"`
	GeneratedBy    string `json:"generatedBy"`
	MinFrequency   int    `json:"minFrequency"`
	NumLexemes     int    `json:"numLexemes"`
	NumInflections int    `json:"numInflections"`
}

type extractInflection struct {
	InflectionID string         `json:"inflectionId"`
	LemmaType    string         `json:"lemmaType"`
	DisplayName  rawDisplayName `json:"displayName"`
	Case         string         `json:"grammaticalCase,omitempty"`
	Number       string         `json:"grammaticalNumber,omitempty"`
	Person       string         `json:"grammaticalPerson,omitempty"`
	Tense        string         `json:"verbTense,omitempty"`
	Mood         string         `json:"verbMood,omitempty"`
	Polarity     string         `json:"verbPolarity,omitempty"`
}

type extractLemma struct {
	LemmaID      string        `json:"lemmaId"`
	LemmaString  string        `json:"lemmaString"`
	PartOfSpeech string        `json:"partOfSpeech"`
	NumWordForms int           `json:"numWordForms"`
	WordForms    []rawWordForm `json:"wordForms"`
}

type extractLexeme struct {
	LexemeID    string         `json:"lexemeId"`
	Lemmas      []extractLemma `json:"lemmas"`
	Description string         `json:"description"`
	LemmaType   string         `json:"lemmaType"`
}

// ExtractedWords is a supplementary lexicon document built from
// treebank tokens the main lexicon cannot analyze. It serializes in
// the Nayiri document schema, so the written file loads straight back
// through LexiconFromFiles and merges with the main lexicon.
type ExtractedWords struct {
	Metadata    extractMetadata     `json:"metadata"`
	Lexemes     []extractLexeme     `json:"lexemes"`
	Inflections []extractInflection `json:"inflections"`
}

// ---- Extraction -------------------------------------------------------

// ExtractMissingWords scans the treebank for tokens the lexicon misses
// both literally and case-insensitively, groups them by (lemma, UD
// POS) and keeps groups with at least minFreq occurrences, most
// frequent first. Each group becomes one lexeme; its word forms are
// tied to inflections derived from the tokens' UD feature bundles,
// deduplicated across the whole document.
func ExtractMissingWords(tb *Treebank, lex *Lexicon, minFreq int) *ExtractedWords {
	if minFreq < 1 {
		minFreq = 1
	}

	type groupKey struct{ lemma, upos string }
	groups := make(map[groupKey][]*Token)
	for _, sent := range tb.Sentences {
		for _, tok := range sent.RealTokens() {
			if ExtractSkipPOS[tok.UPOS] {
				continue
			}
			analyses := lex.Analyze(tok.Form)
			if len(analyses) == 0 {
				analyses = lex.AnalyzeInsensitive(tok.Form)
			}
			if len(analyses) == 0 {
				k := groupKey{lemma: tok.Lemma, upos: tok.UPOS}
				groups[k] = append(groups[k], tok)
			}
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for k, toks := range groups {
		if len(toks) >= minFreq {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := len(groups[keys[i]]), len(groups[keys[j]])
		if ci != cj {
			return ci > cj
		}
		if keys[i].lemma != keys[j].lemma {
			return keys[i].lemma < keys[j].lemma
		}
		return keys[i].upos < keys[j].upos
	})

	doc := &ExtractedWords{
		Metadata: extractMetadata{
			Description: "Supplementary words extracted from the UD Western Armenian " +
				"ArmTDP treebank. Covers items not present in the Nayiri Armenian " +
				"Lexicon (pronouns, copula, auxiliaries, postpositions, determiners, etc.).",
			Source:       "UD_Western_Armenian-ArmTDP",
			GeneratedBy:  "hywmorph extract",
			MinFrequency: minFreq,
		},
	}

	inflectionIDs := make(map[string]string)
	for _, k := range keys {
		tokens := groups[k]
		lexemeID := extractLexemeID(k.lemma, k.upos)
		nayiriPOS, ok := udToNayiriPOS[k.upos]
		if !ok {
			nayiriPOS = k.upos
		}

		seen := make(map[WordForm]bool)
		var forms []rawWordForm
		for _, tok := range tokens {
			featKey := inflectionKey(tok)
			infID, ok := inflectionIDs[featKey]
			if !ok {
				infID = fmt.Sprintf("FW%04d", len(inflectionIDs))
				inflectionIDs[featKey] = infID
				doc.Inflections = append(doc.Inflections, newExtractInflection(infID, tok))
			}
			pair := WordForm{Surface: tok.Form, InflectionID: infID}
			if !seen[pair] {
				seen[pair] = true
				forms = append(forms, rawWordForm{S: tok.Form, I: infID})
			}
		}

		doc.Lexemes = append(doc.Lexemes, extractLexeme{
			LexemeID: lexemeID,
			Lemmas: []extractLemma{{
				LemmaID:      lexemeID + "-L",
				LemmaString:  k.lemma,
				PartOfSpeech: nayiriPOS,
				NumWordForms: len(forms),
				WordForms:    forms,
			}},
			Description: fmt.Sprintf("Extracted from UD treebank (%d occurrences, %s)", len(tokens), k.upos),
			LemmaType:   "FUNCTION_WORD",
		})
	}

	doc.Metadata.NumLexemes = len(doc.Lexemes)
	doc.Metadata.NumInflections = len(doc.Inflections)
	return doc
}

// inflectionKey builds a stable deduplication key from a token's UD
// feature bundle. UPOS is part of the key: the same features on a
// different POS make a different inflection.
func inflectionKey(tok *Token) string {
	if len(tok.Feats) == 0 {
		return tok.UPOS + "|_"
	}
	names := make([]string, 0, len(tok.Feats))
	for name := range tok.Feats {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+tok.Feats[name])
	}
	return tok.UPOS + "|" + strings.Join(parts, "|")
}

func newExtractInflection(id string, tok *Token) extractInflection {
	var lemmaType string
	switch tok.UPOS {
	case "VERB", "AUX":
		lemmaType = "VERBAL"
	case "NOUN", "PROPN", "PRON", "DET", "NUM":
		lemmaType = "NOMINAL"
	default:
		lemmaType = "UNINFLECTED"
	}
	return extractInflection{
		InflectionID: id,
		LemmaType:    lemmaType,
		DisplayName: rawDisplayName{
			Hy: "",
			En: featsDisplayName(tok),
		},
		Case:     udToNayiriCase[tok.Feat("Case")],
		Number:   udToNayiriNumber[tok.Feat("Number")],
		Person:   udToNayiriPerson[tok.Feat("Person")],
		Tense:    udToNayiriTense[tok.Feat("Tense")],
		Mood:     udToNayiriMood[tok.Feat("Mood")],
		Polarity: udToNayiriPolarity[tok.Feat("Polarity")],
	}
}

// featsDisplayName renders a UD feature bundle as a readable English
// inflection name, falling back to the bare UPOS for featureless
// tokens.
func featsDisplayName(tok *Token) string {
	var parts []string
	add := func(label string) {
		if label != "" {
			parts = append(parts, label)
		}
	}
	pick := func(value string, m map[string]string) string {
		if value == "" {
			return ""
		}
		if label, ok := m[value]; ok {
			return label
		}
		return value
	}

	if tok.Feat("Polarity") == "Neg" {
		add("(Negative)")
	}
	add(pick(tok.Feat("Tense"), map[string]string{
		"Pres": "Present Tense", "Past": "Past Tense", "Imp": "Imperfect",
	}))
	add(pick(tok.Feat("Aspect"), map[string]string{
		"Imp": "Imperfective", "Perf": "Perfective", "Prosp": "Prospective",
	}))
	add(pick(tok.Feat("Mood"), map[string]string{
		"Ind": "Indicative", "Sub": "Subjunctive", "Imp": "Imperative", "Cnd": "Conditional",
	}))
	add(pick(tok.Feat("VerbForm"), map[string]string{
		"Fin": "Finite", "Inf": "Infinitive", "Part": "Participle", "Conv": "Converb", "Gdv": "Gerundive",
	}))
	if p := tok.Feat("Person"); p != "" {
		label, ok := map[string]string{"1": "First Person", "2": "Second Person", "3": "Third Person"}[p]
		if !ok {
			label = "Person " + p
		}
		add(label)
	}
	add(pick(tok.Feat("Number"), map[string]string{
		"Sing": "Singular", "Plur": "Plural", "Coll": "Collective",
	}))
	if c := pick(tok.Feat("Case"), map[string]string{
		"Nom": "Nominative", "Acc": "Accusative", "Gen": "Genitive",
		"Dat": "Dative", "Abl": "Ablative", "Ins": "Instrumental", "Loc": "Locative",
	}); c != "" {
		add(c + " case")
	}
	add(pick(tok.Feat("Definite"), map[string]string{
		"Def": "Definite", "Ind": "Indefinite",
	}))
	add(pick(tok.Feat("PronType"), map[string]string{
		"Prs": "Personal", "Dem": "Demonstrative", "Int": "Interrogative",
		"Rel": "Relative", "Ind": "Indefinite", "Tot": "Totalizing",
		"Art": "Article", "Neg": "Negative", "Rcp": "Reciprocal", "Exc": "Exclamative",
	}))
	add(pick(tok.Feat("AdpType"), map[string]string{
		"Post": "Postposition", "Prep": "Preposition",
	}))

	if len(parts) == 0 {
		return tok.UPOS
	}
	return strings.Join(parts, " • ")
}

// extractLexemeID derives a stable id from the lemma and its UD POS.
// FNV keeps the id deterministic across runs, so re-extraction leaves
// existing ids unchanged.
func extractLexemeID(lemma, upos string) string {
	h := fnv.New32a()
	h.Write([]byte(lemma + "_" + upos))
	return fmt.Sprintf("FW-%04X", h.Sum32()%0xFFFF)
}

// ---- Inspection / output ----------------------------------------------

// NumWordForms counts the word forms across all extracted lexemes.
func (d *ExtractedWords) NumWordForms() int {
	n := 0
	for _, lx := range d.Lexemes {
		for _, lm := range lx.Lemmas {
			n += len(lm.WordForms)
		}
	}
	return n
}

// Lexicon parses the document back into a loaded Lexicon, as
// LexiconFromFiles would after the file is written.
func (d *ExtractedWords) Lexicon() (*Lexicon, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal extracted words: %w", err)
	}
	return LexiconFromReader(strings.NewReader(string(data)))
}

// WriteJSON writes the document to path, pretty-printed when indent is
// set.
func (d *ExtractedWords) WriteJSON(path string, indent bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Summary renders extraction statistics as text.
func (d *ExtractedWords) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extracted lexemes:  %d\n", len(d.Lexemes))
	fmt.Fprintf(&b, "Inflections:        %d\n", len(d.Inflections))
	fmt.Fprintf(&b, "Word forms:         %d\n", d.NumWordForms())
	fmt.Fprintf(&b, "Min frequency:      %d", d.Metadata.MinFrequency)

	byPOS := make(map[string]int)
	for _, lx := range d.Lexemes {
		for _, lm := range lx.Lemmas {
			byPOS[lm.PartOfSpeech]++
		}
	}
	if len(byPOS) > 0 {
		keys := make([]string, 0, len(byPOS))
		for pos := range byPOS {
			keys = append(keys, pos)
		}
		sort.Slice(keys, func(i, j int) bool {
			if byPOS[keys[i]] != byPOS[keys[j]] {
				return byPOS[keys[i]] > byPOS[keys[j]]
			}
			return keys[i] < keys[j]
		})
		b.WriteString("\n\nPOS breakdown:\n")
		for _, pos := range keys {
			fmt.Fprintf(&b, "  %-12s %4d lemmas\n", pos, byPOS[pos])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
