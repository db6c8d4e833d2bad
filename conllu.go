package hywmorph

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Token is a single token line of a CoNLL-U sentence.
type Token struct {
	// ID is usually "1", "2", ...; "1-2" for multiword ranges and
	// "1.1" for empty nodes.
	ID     string
	Form   string
	Lemma  string
	UPOS   string
	XPOS   string
	Feats  map[string]string
	Head   string
	Deprel string
	Deps   string
	Misc   map[string]string
}

// IsMultiword reports whether this is a multiword range line.
func (t *Token) IsMultiword() bool { return strings.Contains(t.ID, "-") }

// IsEmpty reports whether this is an empty node line.
func (t *Token) IsEmpty() bool { return strings.Contains(t.ID, ".") }

// Translit returns the ISO 9985 transliteration of the form, if
// present in the misc column.
func (t *Token) Translit() string { return t.Misc["Translit"] }

// LemmaTranslit returns the transliteration of the lemma, if present.
func (t *Token) LemmaTranslit() string { return t.Misc["LTranslit"] }

// SpaceAfter reports whether the token is followed by a space.
func (t *Token) SpaceAfter() bool { return t.Misc["SpaceAfter"] != "No" }

// Feat returns one morphological feature value, or "".
func (t *Token) Feat(key string) string { return t.Feats[key] }

// Sentence is one sentence with its comment metadata.
type Sentence struct {
	Tokens   []*Token
	Metadata map[string]string
}

func (s *Sentence) SentID() string   { return s.Metadata["sent_id"] }
func (s *Sentence) Text() string     { return s.Metadata["text"] }
func (s *Sentence) DocTitle() string { return s.Metadata["doc_title"] }

// RealTokens returns the tokens excluding multiword ranges and empty
// nodes.
func (s *Sentence) RealTokens() []*Token {
	var out []*Token
	for _, t := range s.Tokens {
		if !t.IsMultiword() && !t.IsEmpty() {
			out = append(out, t)
		}
	}
	return out
}

// Words returns the surface forms of the real tokens.
func (s *Sentence) Words() []string {
	real := s.RealTokens()
	out := make([]string, len(real))
	for i, t := range real {
		out[i] = t.Form
	}
	return out
}

// Lemmas returns the lemmas of the real tokens.
func (s *Sentence) Lemmas() []string {
	real := s.RealTokens()
	out := make([]string, len(real))
	for i, t := range real {
		out[i] = t.Lemma
	}
	return out
}

// ByUPOS filters real tokens by POS tag.
func (s *Sentence) ByUPOS(tags ...string) []*Token {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	var out []*Token
	for _, t := range s.RealTokens() {
		if set[t.UPOS] {
			out = append(out, t)
		}
	}
	return out
}

// Root returns the syntactic root token, or nil.
func (s *Sentence) Root() *Token {
	for _, t := range s.RealTokens() {
		if t.Deprel == "root" {
			return t
		}
	}
	return nil
}

// Treebank is a collection of sentences parsed from CoNLL-U files,
// typically the UD Western Armenian ArmTDP treebank.
type Treebank struct {
	Sentences []*Sentence
}

// TreebankFromFile parses a single .conllu file.
func TreebankFromFile(path string) (*Treebank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read treebank: %w", err)
	}
	return &Treebank{Sentences: parseCoNLLU(string(data))}, nil
}

// TreebankFromFiles parses and concatenates several .conllu files,
// e.g. train + dev + test.
func TreebankFromFiles(paths ...string) (*Treebank, error) {
	tb := &Treebank{}
	for _, p := range paths {
		part, err := TreebankFromFile(p)
		if err != nil {
			return nil, err
		}
		tb.Sentences = append(tb.Sentences, part.Sentences...)
	}
	return tb, nil
}

// TreebankFromDir parses every .conllu file in a directory, in sorted
// name order.
func TreebankFromDir(dir string) (*Treebank, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.conllu"))
	if err != nil {
		return nil, fmt.Errorf("glob treebank dir: %w", err)
	}
	sort.Strings(paths)
	return TreebankFromFiles(paths...)
}

// Len returns the number of sentences.
func (tb *Treebank) Len() int { return len(tb.Sentences) }

// TokenCount returns the total real tokens across all sentences.
func (tb *Treebank) TokenCount() int {
	n := 0
	for _, s := range tb.Sentences {
		n += len(s.RealTokens())
	}
	return n
}

// AllTokens returns every real token of every sentence, in order.
func (tb *Treebank) AllTokens() []*Token {
	var out []*Token
	for _, s := range tb.Sentences {
		out = append(out, s.RealTokens()...)
	}
	return out
}

// UniqueLemmas returns the set of distinct lemmas.
func (tb *Treebank) UniqueLemmas() map[string]bool {
	set := make(map[string]bool)
	for _, t := range tb.AllTokens() {
		set[t.Lemma] = true
	}
	return set
}

// UniqueForms returns the set of distinct surface forms.
func (tb *Treebank) UniqueForms() map[string]bool {
	set := make(map[string]bool)
	for _, t := range tb.AllTokens() {
		set[t.Form] = true
	}
	return set
}

// Vocab maps each lemma to its observed surface forms.
func (tb *Treebank) Vocab() map[string]map[string]bool {
	vocab := make(map[string]map[string]bool)
	for _, t := range tb.AllTokens() {
		forms, ok := vocab[t.Lemma]
		if !ok {
			forms = make(map[string]bool)
			vocab[t.Lemma] = forms
		}
		forms[t.Form] = true
	}
	return vocab
}

// POSDistribution counts real tokens per POS tag.
func (tb *Treebank) POSDistribution() map[string]int {
	counts := make(map[string]int)
	for _, t := range tb.AllTokens() {
		counts[t.UPOS]++
	}
	return counts
}

// DeprelDistribution counts real tokens per dependency relation.
func (tb *Treebank) DeprelDistribution() map[string]int {
	counts := make(map[string]int)
	for _, t := range tb.AllTokens() {
		counts[t.Deprel]++
	}
	return counts
}

// Summary returns quick stats with a POS distribution.
func (tb *Treebank) Summary() string {
	dist := tb.POSDistribution()
	var b strings.Builder
	fmt.Fprintf(&b, "Sentences:      %d\n", tb.Len())
	fmt.Fprintf(&b, "Tokens:         %d\n", tb.TokenCount())
	fmt.Fprintf(&b, "Unique forms:   %d\n", len(tb.UniqueForms()))
	fmt.Fprintf(&b, "Unique lemmas:  %d\n", len(tb.UniqueLemmas()))
	fmt.Fprintf(&b, "POS tags:       %d\n\n", len(dist))
	b.WriteString("POS distribution:")

	keys := make([]string, 0, len(dist))
	for pos := range dist {
		keys = append(keys, pos)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, pos := range keys {
		fmt.Fprintf(&b, "\n  %-12s %6d", pos, dist[pos])
	}
	return b.String()
}

// ---- Parsing ----------------------------------------------------------

var metadataRe = regexp.MustCompile(`#\s*(\S+)\s*=\s*(.*)`)

func parseKeyValues(raw string) map[string]string {
	if raw == "_" {
		return map[string]string{}
	}
	result := make(map[string]string)
	for _, pair := range strings.Split(raw, "|") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			result[k] = v
		} else {
			result[pair] = ""
		}
	}
	return result
}

func parseCoNLLU(text string) []*Sentence {
	var sentences []*Sentence
	current := &Sentence{Metadata: make(map[string]string)}

	flush := func() {
		if len(current.Tokens) > 0 || len(current.Metadata) > 0 {
			sentences = append(sentences, current)
			current = &Sentence{Metadata: make(map[string]string)}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")

		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			if m := metadataRe.FindStringSubmatch(line); m != nil {
				current.Metadata[m[1]] = strings.TrimSpace(m[2])
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 10 {
			continue
		}
		current.Tokens = append(current.Tokens, &Token{
			ID:     fields[0],
			Form:   fields[1],
			Lemma:  fields[2],
			UPOS:   fields[3],
			XPOS:   fields[4],
			Feats:  parseKeyValues(fields[5]),
			Head:   fields[6],
			Deprel: fields[7],
			Deps:   fields[8],
			Misc:   parseKeyValues(fields[9]),
		})
	}
	flush()
	return sentences
}
