package hywmorph

import (
	"fmt"
	"sort"
	"strings"
)

// Armenian POS abbreviations -> normalized English POS labels.
var glossaryPOSMap = map[string]string{
	"գ.":    "NOUN",
	"ած.":   "ADJECTIVE",
	"նրգ.":  "VERB_TR",
	"չզ.":   "VERB_INTR",
	"օտր.":  "LOANWORD",
	"մկ.":   "PARTICLE",
	"նխ.":   "PREPOSITION",
	"շղ.":   "CONJUNCTION",
	"ձյն.":  "INTERJECTION",
	"դեր.":  "PRONOUN",
	"ս.":    "PRONOUN_POSS",
	"սւծ.":  "VERB_REFL",
	"նրզ.":  "VERB_MID",
}

// GlossaryEntry is one sense of a glossary headword: a normalized POS
// label plus an Armenian-language definition.
type GlossaryEntry struct {
	Headword   string
	POS        string
	POSRaw     string
	Definition string
}

// IsTransitive reports transitivity for verb entries; the second
// return is false when transitivity does not apply.
func (e GlossaryEntry) IsTransitive() (bool, bool) {
	switch e.POS {
	case "VERB_TR":
		return true, true
	case "VERB_INTR", "VERB_REFL", "VERB_MID":
		return false, true
	}
	return false, false
}

// Glossary is the SmallArmDic Armenian explanatory dictionary,
// indexed by headword. A headword may carry several entries, one per
// POS segment of its source line.
type Glossary struct {
	entries map[string][]GlossaryEntry
	total   int
}

// GlossaryFromFile loads a glossary from a SmallArmDic.txt file.
func GlossaryFromFile(path string) (*Glossary, error) {
	lines, err := readDicLines(path)
	if err != nil {
		return nil, fmt.Errorf("load glossary: %w", err)
	}
	g := &Glossary{entries: make(map[string][]GlossaryEntry)}
	for _, line := range lines {
		if line != "" {
			g.parseLine(line)
		}
	}
	return g, nil
}

// parseLine parses "headword POS. [POS2.] definition" lines. A line
// may hold several POS segments separated by "; ", each becoming its
// own entry; segments without a recognizable POS abbreviation are
// skipped.
func (g *Glossary) parseLine(line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return
	}
	headword := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, headword))

	for _, segment := range strings.Split(rest, "; ") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		posRaw, definition := extractPOS(segment)
		if posRaw == "" {
			continue
		}
		pos, ok := glossaryPOSMap[posRaw]
		if !ok {
			pos = posRaw
		}
		definition = strings.TrimSpace(definition)
		// Strip a trailing Armenian full stop.
		definition = strings.TrimSpace(strings.TrimSuffix(definition, "։"))

		g.entries[headword] = append(g.entries[headword], GlossaryEntry{
			Headword:   headword,
			POS:        pos,
			POSRaw:     posRaw,
			Definition: definition,
		})
		g.total++
	}
}

// extractPOS pulls the leading POS abbreviation off a segment. POS
// tags are short Armenian abbreviations ending with a period; several
// may stack, in which case the first one wins and the rest are
// consumed.
func extractPOS(text string) (posRaw, remaining string) {
	words := strings.Fields(text)
	var posTags []string
	consumed := 0
	for _, word := range words {
		clean := strings.TrimLeft(word, "(")
		if strings.HasSuffix(clean, ".") && len([]rune(clean)) <= 6 && hasArmenian(clean) {
			posTags = append(posTags, clean)
			consumed++
		} else {
			break
		}
	}
	if len(posTags) == 0 {
		return "", text
	}
	return posTags[0], strings.Join(words[consumed:], " ")
}

func hasArmenian(s string) bool {
	for _, r := range s {
		if r >= 0x0530 && r <= 0x058F {
			return true
		}
	}
	return false
}

// Lookup returns the entries for a word, trying the lowercased
// spelling when the literal one is absent. An unknown word yields an
// empty result.
func (g *Glossary) Lookup(word string) []GlossaryEntry {
	if entries := g.entries[word]; len(entries) > 0 {
		return entries
	}
	return g.entries[strings.ToLower(word)]
}

// NumHeadwords returns the number of distinct headwords.
func (g *Glossary) NumHeadwords() int { return len(g.entries) }

// NumEntries returns the total number of sense entries.
func (g *Glossary) NumEntries() int { return g.total }

// Summary describes the glossary with a POS distribution.
func (g *Glossary) Summary() string {
	var b strings.Builder
	b.WriteString("Glossary (SmallArmDic)\n")
	fmt.Fprintf(&b, "  Headwords:     %d\n", len(g.entries))
	fmt.Fprintf(&b, "  Total entries: %d", g.total)

	posCounts := make(map[string]int)
	for _, list := range g.entries {
		for _, e := range list {
			posCounts[e.POS]++
		}
	}
	if len(posCounts) > 0 {
		keys := make([]string, 0, len(posCounts))
		for pos := range posCounts {
			keys = append(keys, pos)
		}
		sort.Slice(keys, func(i, j int) bool {
			if posCounts[keys[i]] != posCounts[keys[j]] {
				return posCounts[keys[i]] > posCounts[keys[j]]
			}
			return keys[i] < keys[j]
		})
		b.WriteString("\n  POS breakdown:")
		for _, pos := range keys {
			fmt.Fprintf(&b, "\n    %-15s %d", pos, posCounts[pos])
		}
	}
	return b.String()
}
