package hywmorph

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultSkipPOS lists the UD POS tags the lexicon is not expected to
// cover.
var DefaultSkipPOS = map[string]bool{
	"PUNCT": true, "NUM": true, "SYM": true, "X": true,
}

// Lexicon POS names -> acceptable UD POS tags for comparison. NOUN
// entries may legitimately match PROPN tokens, CONJUNCTION either
// conjunction kind.
var lexToUDPOS = map[string][]string{
	"NOUN":         {"NOUN", "PROPN"},
	"CONJUNCTION":  {"CCONJ", "SCONJ"},
	"VERB":         {"VERB"},
	"ADJECTIVE":    {"ADJ"},
	"ADVERB":       {"ADV"},
	"ADPOSITION":   {"ADP"},
	"PRONOUN":      {"PRON"},
	"DETERMINER":   {"DET"},
	"PARTICLE":     {"PART"},
	"INTERJECTION": {"INTJ"},
	"AUX":          {"AUX"},
}

// POSCoverage holds the per-UD-POS counters of a coverage run.
type POSCoverage struct {
	Checked    int
	Found      int
	Transducer int
}

// LemmaMismatch records a form the analyzer found whose lemma
// disagrees with the treebank.
type LemmaMismatch struct {
	Form           string
	UDLemma        string
	UDPOS          string
	AnalyzerLemmas []string
}

// POSMismatch records a form the analyzer found whose POS disagrees
// with the treebank.
type POSMismatch struct {
	Form           string
	UDLemma        string
	UDPOS          string
	AnalyzerLemmas []string
	AnalyzerPOS    []string
}

// CoverageReport aggregates the results of cross-referencing a
// treebank against the lexicon, plus the transducer rescue pass.
type CoverageReport struct {
	TotalTokens   int
	SkippedTokens int
	CheckedTokens int
	FoundTokens   int
	LemmaMatches  int
	POSMatches    int

	TransducerRescued      int
	TransducerLemmaMatches int
	TransducerPOSMatches   int

	ByPOS map[string]*POSCoverage

	MissingForms  map[string]int
	MissingLemmas map[string]int

	LemmaMismatches []LemmaMismatch
	POSMismatches   []POSMismatch
}

func newCoverageReport() *CoverageReport {
	return &CoverageReport{
		ByPOS:         make(map[string]*POSCoverage),
		MissingForms:  make(map[string]int),
		MissingLemmas: make(map[string]int),
	}
}

// CheckCoverage measures how many treebank tokens the lexicon can
// analyze. The lexicon is consulted first, literally then
// case-insensitively; tokens it misses are sent to the transducer in
// one batch when one is supplied and available. Tokens tagged with a
// skip POS are not counted.
func CheckCoverage(ctx context.Context, tb *Treebank, lex *Lexicon, trans *Transducer, skipPOS map[string]bool) (*CoverageReport, error) {
	if skipPOS == nil {
		skipPOS = DefaultSkipPOS
	}
	report := newCoverageReport()

	// First pass over the lexicon, collecting misses for the batch.
	var misses []*Token
	for _, sent := range tb.Sentences {
		for _, tok := range sent.RealTokens() {
			report.TotalTokens++
			if skipPOS[tok.UPOS] {
				report.SkippedTokens++
				continue
			}
			report.CheckedTokens++

			stats := report.ByPOS[tok.UPOS]
			if stats == nil {
				stats = &POSCoverage{}
				report.ByPOS[tok.UPOS] = stats
			}
			stats.Checked++

			analyses := lex.Analyze(tok.Form)
			if len(analyses) == 0 {
				analyses = lex.AnalyzeInsensitive(tok.Form)
			}
			if len(analyses) == 0 {
				misses = append(misses, tok)
				continue
			}

			report.FoundTokens++
			stats.Found++
			report.recordAgreement(tok, morphToAnalyses(analyses), false)
		}
	}

	// Second pass: one transducer batch over the distinct missed forms.
	if trans != nil && trans.Available() && len(misses) > 0 {
		forms := make([]string, 0, len(misses))
		seen := make(map[string]bool, len(misses))
		for _, tok := range misses {
			if !seen[tok.Form] {
				seen[tok.Form] = true
				forms = append(forms, tok.Form)
			}
		}
		batch, err := trans.AnalyzeBatch(ctx, forms)
		if err != nil {
			return nil, fmt.Errorf("transducer rescue pass: %w", err)
		}
		for _, tok := range misses {
			analyses := batch[tok.Form]
			if len(analyses) == 0 {
				report.MissingForms[tok.Form]++
				report.MissingLemmas[tok.Lemma]++
				continue
			}
			report.TransducerRescued++
			report.ByPOS[tok.UPOS].Transducer++
			report.recordAgreement(tok, analyses, true)
		}
	} else {
		for _, tok := range misses {
			report.MissingForms[tok.Form]++
			report.MissingLemmas[tok.Lemma]++
		}
	}

	return report, nil
}

// recordAgreement compares one found token's analyses against its
// treebank lemma and POS, crediting the match counters or recording a
// mismatch.
func (r *CoverageReport) recordAgreement(tok *Token, analyses []Analysis, rescued bool) {
	lemmaSet := make(map[string]bool)
	posSet := make(map[string]bool)
	for _, a := range analyses {
		lemmaSet[a.Lemma()] = true
		mapped, ok := lexToUDPOS[a.POS()]
		if !ok {
			mapped = []string{a.POS()}
		}
		for _, p := range mapped {
			posSet[p] = true
		}
	}
	lemmas := make([]string, 0, len(lemmaSet))
	for l := range lemmaSet {
		lemmas = append(lemmas, l)
	}
	sort.Strings(lemmas)

	if lemmaSet[tok.Lemma] {
		if rescued {
			r.TransducerLemmaMatches++
		} else {
			r.LemmaMatches++
		}
	} else {
		r.LemmaMismatches = append(r.LemmaMismatches, LemmaMismatch{
			Form:           tok.Form,
			UDLemma:        tok.Lemma,
			UDPOS:          tok.UPOS,
			AnalyzerLemmas: lemmas,
		})
	}

	if posSet[tok.UPOS] {
		if rescued {
			r.TransducerPOSMatches++
		} else {
			r.POSMatches++
		}
	} else {
		posList := make([]string, 0, len(posSet))
		for p := range posSet {
			posList = append(posList, p)
		}
		sort.Strings(posList)
		r.POSMismatches = append(r.POSMismatches, POSMismatch{
			Form:           tok.Form,
			UDLemma:        tok.Lemma,
			UDPOS:          tok.UPOS,
			AnalyzerLemmas: lemmas,
			AnalyzerPOS:    posList,
		})
	}
}

// Summary renders the report as text.
func (r *CoverageReport) Summary() string {
	if r.CheckedTokens == 0 {
		return "No tokens checked."
	}
	pct := func(n, d int) string {
		if d == 0 {
			return "N/A"
		}
		return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(d))
	}

	totalFound := r.FoundTokens + r.TransducerRescued
	stillMissing := r.CheckedTokens - totalFound

	var b strings.Builder
	b.WriteString("=== Coverage Report ===\n\n")
	fmt.Fprintf(&b, "Total tokens:   %d\n", r.TotalTokens)
	fmt.Fprintf(&b, "Skipped (PUNCT etc.): %d\n", r.SkippedTokens)
	fmt.Fprintf(&b, "Checked:        %d\n\n", r.CheckedTokens)
	fmt.Fprintf(&b, "Lexicon found:       %5d  (%s)\n", r.FoundTokens, pct(r.FoundTokens, r.CheckedTokens))
	fmt.Fprintf(&b, "  Lemma matches:       %5d  (%s)\n", r.LemmaMatches, pct(r.LemmaMatches, r.CheckedTokens))
	fmt.Fprintf(&b, "  POS matches:         %5d  (%s)\n", r.POSMatches, pct(r.POSMatches, r.CheckedTokens))

	if r.TransducerRescued > 0 {
		fmt.Fprintf(&b, "\nTransducer rescued:  %5d  (%s)\n", r.TransducerRescued, pct(r.TransducerRescued, r.CheckedTokens))
		fmt.Fprintf(&b, "  Lemma matches:       %5d  (%s)\n", r.TransducerLemmaMatches, pct(r.TransducerLemmaMatches, r.CheckedTokens))
		fmt.Fprintf(&b, "  POS matches:         %5d  (%s)\n", r.TransducerPOSMatches, pct(r.TransducerPOSMatches, r.CheckedTokens))
		fmt.Fprintf(&b, "\nCombined found:      %5d  (%s)\n", totalFound, pct(totalFound, r.CheckedTokens))
	}
	fmt.Fprintf(&b, "Not found:           %5d  (%s)\n", stillMissing, pct(stillMissing, r.CheckedTokens))

	b.WriteString("\n--- By POS ---\n")
	posKeys := make([]string, 0, len(r.ByPOS))
	for pos := range r.ByPOS {
		posKeys = append(posKeys, pos)
	}
	sort.Strings(posKeys)
	for _, pos := range posKeys {
		stats := r.ByPOS[pos]
		if stats.Transducer > 0 {
			fmt.Fprintf(&b, "  %-12s  %4d+%-4d/%4d  (%s, lexicon %s)\n",
				pos, stats.Found, stats.Transducer, stats.Checked,
				pct(stats.Found+stats.Transducer, stats.Checked), pct(stats.Found, stats.Checked))
		} else {
			fmt.Fprintf(&b, "  %-12s  %4d/%4d  (%s)\n",
				pos, stats.Found, stats.Checked, pct(stats.Found, stats.Checked))
		}
	}

	b.WriteString("\n--- Top 20 missing forms (after all backends) ---\n")
	for _, fc := range topCounts(r.MissingForms, 20) {
		fmt.Fprintf(&b, "  %-25s  x%d\n", fc.key, fc.count)
	}
	b.WriteString("\n--- Top 20 missing lemmas (after all backends) ---\n")
	for _, lc := range topCounts(r.MissingLemmas, 20) {
		fmt.Fprintf(&b, "  %-25s  x%d\n", lc.key, lc.count)
	}

	if len(r.LemmaMismatches) > 0 {
		b.WriteString("\n--- Sample lemma mismatches (form found, lemma disagrees) ---\n")
		for i, m := range r.LemmaMismatches {
			if i >= 15 {
				break
			}
			shown := m.AnalyzerLemmas
			if len(shown) > 3 {
				shown = shown[:3]
			}
			fmt.Fprintf(&b, "  %-20s  UD: %-15s (%s)  Analyzer: %s\n",
				m.Form, m.UDLemma, m.UDPOS, strings.Join(shown, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

type keyCount struct {
	key   string
	count int
}

func topCounts(m map[string]int, n int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteMismatches writes the full deduplicated mismatch lists to a
// tab-separated file for manual review, most frequent first.
func (r *CoverageReport) WriteMismatches(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mismatch file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write([]string{"mismatch_type", "form", "ud_lemma", "ud_pos", "analyzer_lemmas", "analyzer_pos", "count"}); err != nil {
		return err
	}

	type row struct {
		form, udLemma, udPOS string
		lemmas, pos          string
	}
	lemmaCounts := make(map[row]int)
	var lemmaOrder []row
	for _, m := range r.LemmaMismatches {
		k := row{form: m.Form, udLemma: m.UDLemma, udPOS: m.UDPOS, lemmas: strings.Join(m.AnalyzerLemmas, ", ")}
		if lemmaCounts[k] == 0 {
			lemmaOrder = append(lemmaOrder, k)
		}
		lemmaCounts[k]++
	}
	sort.SliceStable(lemmaOrder, func(i, j int) bool {
		return lemmaCounts[lemmaOrder[i]] > lemmaCounts[lemmaOrder[j]]
	})
	for _, k := range lemmaOrder {
		if err := w.Write([]string{"lemma", k.form, k.udLemma, k.udPOS, k.lemmas, "", strconv.Itoa(lemmaCounts[k])}); err != nil {
			return err
		}
	}

	posCounts := make(map[row]int)
	var posOrder []row
	for _, m := range r.POSMismatches {
		k := row{form: m.Form, udLemma: m.UDLemma, udPOS: m.UDPOS,
			lemmas: strings.Join(m.AnalyzerLemmas, ", "), pos: strings.Join(m.AnalyzerPOS, ", ")}
		if posCounts[k] == 0 {
			posOrder = append(posOrder, k)
		}
		posCounts[k]++
	}
	sort.SliceStable(posOrder, func(i, j int) bool {
		return posCounts[posOrder[i]] > posCounts[posOrder[j]]
	})
	for _, k := range posOrder {
		if err := w.Write([]string{"pos", k.form, k.udLemma, k.udPOS, k.lemmas, k.pos, strconv.Itoa(posCounts[k])}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
