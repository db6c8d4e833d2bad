package hywmorph

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FlexRule is one suffix transformation rule from RCFlexMap.dic. A
// reformed inflected form is reduced to a dictionary base by stripping
// RefSuffix and appending RefRestore; the mapped classical base then
// has ClsStrip removed and ClsSuffix appended. Rule order is the file
// order and is significant.
type FlexRule struct {
	RefSuffix  string
	RefRestore string
	ClsStrip   string
	ClsSuffix  string
}

var (
	// Trailing digits are Hunspell flag references, not suffix text.
	flagDigitsRe = regexp.MustCompile(`\d+$`)
	// Character-class rules look like [հ]+:[յ]+.
	charRuleRe = regexp.MustCompile(`^\[(.+?)\]\+:\[(.+?)\]\+$`)
	// Maximal runs of word and non-word characters.
	tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_]+`)
	wordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// parseFlexSide splits one side of a flex rule into its strip and add
// fragments. The recognized shapes are +ABC, -XY+ABC and -XY|+ABC;
// bracket notation parses to two empty fragments.
func parseFlexSide(side string) (strip, add string) {
	side = flagDigitsRe.ReplaceAllString(side, "")

	if i := strings.Index(side, "|"); i >= 0 {
		strip = strings.TrimLeft(side[:i], "-")
		add = strings.TrimLeft(side[i+1:], "+")
		return strip, add
	}
	if rest, ok := strings.CutPrefix(side, "-"); ok {
		if j := strings.Index(rest, "+"); j >= 0 {
			return rest[:j], rest[j+1:]
		}
		return rest, ""
	}
	if rest, ok := strings.CutPrefix(side, "+"); ok {
		return "", rest
	}
	return "", ""
}

func parseFlexRules(lines []string) []FlexRule {
	var rules []FlexRule
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		// Bracket lines are character-class rules, handled separately.
		if strings.HasPrefix(line, "[") {
			continue
		}
		left, right, _ := strings.Cut(line, ":")
		refRestore, refSuffix := parseFlexSide(left)
		clsStrip, clsSuffix := parseFlexSide(right)
		if refSuffix == "" && refRestore == "" {
			continue
		}
		rules = append(rules, FlexRule{
			RefSuffix:  refSuffix,
			RefRestore: refRestore,
			ClsStrip:   clsStrip,
			ClsSuffix:  clsSuffix,
		})
	}
	return rules
}

// CharRule is a global character replacement applied as a last
// resort, e.g. հ -> յ.
type CharRule struct {
	From string
	To   string
}

func parseCharRules(lines []string) []CharRule {
	var rules []CharRule
	for _, line := range lines {
		m := charRuleRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			rules = append(rules, CharRule{From: m[1], To: m[2]})
		}
	}
	return rules
}

// OrthographyConverter rewrites Reformed Armenian spellings into
// Classical orthography using the HySpell mapping tables:
//
//   - RCLexMap.dic:     word-level reformed -> classical map
//   - RCFlexMap.dic:    suffix rules for inflected forms
//   - RCExceptions.dic: words never converted
//
// Each table is optional; a missing file simply leaves that stage
// empty.
type OrthographyConverter struct {
	dictDir    string
	lexMap     map[string]string
	flexRules  []FlexRule
	charRules  []CharRule
	exceptions map[string]bool
}

// NewOrthographyConverter loads the mapping tables from the Dictr
// subdirectory of dictDir.
func NewOrthographyConverter(dictDir string) (*OrthographyConverter, error) {
	conv := &OrthographyConverter{
		dictDir:    dictDir,
		lexMap:     make(map[string]string),
		exceptions: make(map[string]bool),
	}

	lexLines, err := readDicLines(filepath.Join(dictDir, "Dictr", "RCLexMap.dic"))
	if err != nil {
		return nil, err
	}
	for _, line := range lexLines {
		if ref, cls, ok := strings.Cut(line, ":"); ok {
			conv.lexMap[ref] = cls
		}
	}

	flexLines, err := readDicLines(filepath.Join(dictDir, "Dictr", "RCFlexMap.dic"))
	if err != nil {
		return nil, err
	}
	conv.flexRules = parseFlexRules(flexLines)
	conv.charRules = parseCharRules(flexLines)

	excLines, err := readDicLines(filepath.Join(dictDir, "Dictr", "RCExceptions.dic"))
	if err != nil {
		return nil, err
	}
	for _, word := range excLines {
		if word != "" {
			conv.exceptions[word] = true
		}
	}

	return conv, nil
}

// readDicLines reads a .dic file into trimmed lines, stripping a UTF-8
// BOM if present. A missing file yields no lines and no error.
func readDicLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// ConvertWord converts a single word to Classical orthography, or
// returns it unchanged when no table or rule applies. Exception words
// are never converted, even when a mapping exists.
func (c *OrthographyConverter) ConvertWord(form string) string {
	if form == "" || c.exceptions[form] {
		return form
	}

	if cls, ok := c.lexMap[form]; ok {
		return cls
	}

	lower := strings.ToLower(form)
	if cls, ok := c.lexMap[lower]; ok {
		return restoreCapital(form, cls)
	}

	if cls, ok := c.tryFlexRules(lower); ok {
		return restoreCapital(form, cls)
	}

	result := form
	for _, cr := range c.charRules {
		result = strings.ReplaceAll(result, cr.From, cr.To)
	}
	if result != form {
		return result
	}

	return form
}

// tryFlexRules applies the suffix rules in file order and returns the
// result of the first rule that both matches the form and resolves to
// a mapped base. A rule whose reconstructed base is missing from the
// map does not match; later rules still get their turn.
func (c *OrthographyConverter) tryFlexRules(form string) (string, bool) {
	for _, rule := range c.flexRules {
		if rule.RefSuffix == "" || !strings.HasSuffix(form, rule.RefSuffix) {
			continue
		}
		base := strings.TrimSuffix(form, rule.RefSuffix) + rule.RefRestore
		if base == "" {
			continue
		}
		clsBase, ok := c.lexMap[base]
		if !ok {
			continue
		}
		stem := clsBase
		if rule.ClsStrip != "" {
			if !strings.HasSuffix(clsBase, rule.ClsStrip) {
				continue
			}
			stem = strings.TrimSuffix(clsBase, rule.ClsStrip)
		}
		return stem + rule.ClsSuffix, true
	}
	return "", false
}

// restoreCapital copies the first-character capitalization of orig
// onto converted; only the first rune is affected.
func restoreCapital(orig, converted string) string {
	if converted == "" {
		return converted
	}
	first, _ := utf8.DecodeRuneInString(orig)
	if !unicode.IsUpper(first) {
		return converted
	}
	r, size := utf8.DecodeRuneInString(converted)
	return string(unicode.ToUpper(r)) + converted[size:]
}

// ConvertText converts the words of text to Classical orthography,
// leaving whitespace, punctuation and non-alphabetic tokens exactly as
// they were.
func (c *OrthographyConverter) ConvertText(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if startsWithLetter(tok) {
			b.WriteString(c.ConvertWord(tok))
		} else {
			b.WriteString(tok)
		}
	}
	return b.String()
}

// IsReformed reports whether the word has a different Classical
// spelling. Words spelled the same in both orthographies report false.
func (c *OrthographyConverter) IsReformed(form string) bool {
	return c.ConvertWord(form) != form
}

// ReformedWord is a detected Reformed spelling with its Classical
// conversion.
type ReformedWord struct {
	Reformed  string
	Classical string
}

// DetectReformedWords scans text for words whose Classical conversion
// differs, in first-occurrence order. Deduplication is case-sensitive.
func (c *OrthographyConverter) DetectReformedWords(text string) []ReformedWord {
	var results []ReformedWord
	seen := make(map[string]bool)
	for _, tok := range wordRe.FindAllString(text, -1) {
		if seen[tok] || !startsWithLetter(tok) {
			continue
		}
		seen[tok] = true
		if cls := c.ConvertWord(tok); cls != tok {
			results = append(results, ReformedWord{Reformed: tok, Classical: cls})
		}
	}
	return results
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// Summary describes the loaded tables.
func (c *OrthographyConverter) Summary() string {
	var b strings.Builder
	b.WriteString("Orthography converter (Reformed -> Classical)\n")
	fmt.Fprintf(&b, "  Data dir:    %s\n", c.dictDir)
	fmt.Fprintf(&b, "  Lexicon map: %d entries\n", len(c.lexMap))
	fmt.Fprintf(&b, "  Flex rules:  %d rules\n", len(c.flexRules))
	fmt.Fprintf(&b, "  Char rules:  %d rules\n", len(c.charRules))
	fmt.Fprintf(&b, "  Exceptions:  %d words", len(c.exceptions))
	return b.String()
}
