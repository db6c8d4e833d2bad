package hywmorph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
)

// Apertium tag -> human-readable English label.
var tagLabels = map[string]string{
	"n": "noun", "v": "verb", "adj": "adjective", "adv": "adverb",
	"np": "proper noun", "prn": "pronoun", "det": "determiner",
	"post": "postposition", "pr": "preposition",
	"cnjcoo": "coordinating conjunction", "cnjsub": "subordinating conjunction",
	"part": "particle", "ij": "interjection", "num": "numeral",
	"abbr": "abbreviation",
	"ant":  "anthroponym", "top": "toponym", "cog": "cognomen",
	"al": "other", "m": "masculine", "f": "feminine", "mf": "masc/fem",
	"sg": "singular", "pl": "plural",
	"nom": "nominative", "acc": "accusative", "gen": "genitive",
	"dat": "dative", "abl": "ablative", "ins": "instrumental",
	"loc": "locative",
	"def": "definite", "indef": "indefinite",
	"p1": "1st person", "p2": "2nd person", "p3": "3rd person",
	"pres": "present", "past": "past", "fut": "future",
	"aor": "aorist", "impf": "imperfect",
	"pret": "preterite", "perf": "perfect",
	"indc": "indicative", "sbjv": "subjunctive", "imp": "imperative",
	"cond": "conditional", "opt": "optative", "proh": "prohibitive",
	"neg": "negative",
	"tv":  "transitive", "iv": "intransitive",
	"inch": "inchoative", "caus": "causative", "pass": "passive",
	"inf": "infinitive", "ger": "gerund",
	"pp": "past participle", "pprs": "present participle",
	"cvb": "converb",
	"punct": "punctuation", "sent": "sentence-final",
	"lquot": "left quote", "rquot": "right quote",
	"guio": "hyphen", "cm": "comma",
}

// Apertium tag -> normalized POS, matching the lexicon's conventions.
var aptPOSMap = map[string]string{
	"n": "NOUN", "np": "NOUN",
	"v":   "VERB",
	"adj": "ADJECTIVE",
	"adv": "ADVERB",
	"prn": "PRONOUN",
	"det": "DETERMINER",
	"post": "ADPOSITION", "pr": "ADPOSITION",
	"cnjcoo": "CONJUNCTION", "cnjsub": "CONJUNCTION",
	"part": "PARTICLE",
	"ij":   "INTERJECTION",
	"num":  "NUMERAL",
}

var aptCaseMap = map[string]string{
	"nom": "NOMINATIVE", "acc": "ACCUSATIVE", "gen": "GENITIVE",
	"dat": "DATIVE", "abl": "ABLATIVE", "ins": "INSTRUMENTAL",
	"loc": "LOCATIVE",
}

var aptNumberMap = map[string]string{"sg": "SINGULAR", "pl": "PLURAL"}
var aptPersonMap = map[string]string{"p1": "FIRST", "p2": "SECOND", "p3": "THIRD"}
var aptArticleMap = map[string]string{"def": "DEFINITE", "indef": "INDEFINITE"}

var (
	analysisRe = regexp.MustCompile(`^([^<]+)((?:<[^>]+>)*)$`)
	tagRe      = regexp.MustCompile(`<([^>]+)>`)
)

// TransducerAnalysis is one analysis returned by the Apertium
// transducer: the lemma plus its raw tag sequence.
type TransducerAnalysis struct {
	SurfaceForm string
	LemmaString string
	Tags        []string
	// Raw is the analysis string exactly as hfst-lookup emitted it.
	Raw    string
	Weight float64
}

func (a *TransducerAnalysis) Form() string  { return a.SurfaceForm }
func (a *TransducerAnalysis) Lemma() string { return a.LemmaString }

func (a *TransducerAnalysis) POS() string {
	for _, t := range a.Tags {
		if pos, ok := aptPOSMap[t]; ok {
			return pos
		}
	}
	return "UNKNOWN"
}

// Description joins the English labels of every tag, falling back to
// the raw tag for ones without a label.
func (a *TransducerAnalysis) Description() string {
	parts := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		if label, ok := tagLabels[t]; ok {
			parts[i] = label
		} else {
			parts[i] = t
		}
	}
	return strings.Join(parts, ", ")
}

func (a *TransducerAnalysis) Features() Features {
	var f Features
	for _, t := range a.Tags {
		if v, ok := aptCaseMap[t]; ok && f.Case == "" {
			f.Case = v
		}
		if v, ok := aptNumberMap[t]; ok && f.Number == "" {
			f.Number = v
		}
		if v, ok := aptPersonMap[t]; ok && f.Person == "" {
			f.Person = v
		}
		if v, ok := aptArticleMap[t]; ok && f.Article == "" {
			f.Article = v
		}
	}
	return f
}

// IsProperNoun reports whether the analysis carries the np tag.
func (a *TransducerAnalysis) IsProperNoun() bool {
	for _, t := range a.Tags {
		if t == "np" {
			return true
		}
	}
	return false
}

func (a *TransducerAnalysis) String() string {
	return fmt.Sprintf("%s <- %s", a.SurfaceForm, a.Raw)
}

// Transducer wraps hfst-lookup over the apertium-hyw finite-state
// transducers. Single-form analysis reuses one persistent hfst-lookup
// process; batch analysis and generation shell out once per call.
//
// A Transducer whose binary or automorf file is missing reports
// Available() == false and answers every query with an empty result.
// Not safe for concurrent use.
type Transducer struct {
	dir      string
	automorf string
	autogen  string
	hfstPath string

	available bool

	proc   *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// NewTransducer prepares a transducer rooted at dir. It never fails:
// an unusable installation yields an unavailable transducer.
func NewTransducer(dir string) *Transducer {
	t := &Transducer{
		dir:      dir,
		automorf: filepath.Join(dir, "hyx@hyw.automorf.hfst"),
		autogen:  filepath.Join(dir, "hyx@hyw.autogen.hfst"),
	}
	path, err := exec.LookPath("hfst-lookup")
	if err != nil {
		return t
	}
	t.hfstPath = path
	if _, err := os.Stat(t.automorf); err != nil {
		return t
	}
	t.available = true
	return t
}

// Available reports whether hfst-lookup and the analyzer transducer
// were both found.
func (t *Transducer) Available() bool { return t.available }

// ---- Persistent process management ------------------------------------

func (t *Transducer) ensureProc() error {
	if t.proc != nil && t.proc.Process != nil {
		// Liveness check; a dead process is replaced transparently.
		if t.proc.Process.Signal(syscall.Signal(0)) == nil {
			return nil
		}
		t.killProc()
	}
	cmd := exec.Command(t.hfstPath, "-q", t.automorf)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("hfst-lookup stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("hfst-lookup stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start hfst-lookup: %w", err)
	}
	t.proc = cmd
	t.stdin = stdin
	t.stdout = bufio.NewReader(stdout)
	return nil
}

func (t *Transducer) killProc() {
	if t.proc == nil {
		return
	}
	if t.stdin != nil {
		t.stdin.Close()
	}
	if t.proc.Process != nil {
		t.proc.Process.Kill()
	}
	t.proc.Wait()
	t.proc = nil
	t.stdin = nil
	t.stdout = nil
}

// queryOne sends one form to the persistent process and reads lines up
// to the blank terminator. On an I/O failure the process is respawned
// and the query retried once.
func (t *Transducer) queryOne(form string) ([]string, error) {
	lines, err := t.tryQuery(form)
	if err == nil {
		return lines, nil
	}
	t.killProc()
	lines, err = t.tryQuery(form)
	if err != nil {
		return nil, fmt.Errorf("hfst-lookup query %q: %w", form, err)
	}
	return lines, nil
}

func (t *Transducer) tryQuery(form string) ([]string, error) {
	if err := t.ensureProc(); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(t.stdin, form+"\n"); err != nil {
		return nil, err
	}
	var lines []string
	for {
		line, err := t.stdout.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ---- Output parsing ---------------------------------------------------

// parseAnalysisString splits "lemma<tag1><tag2>" into the lemma and
// its tags.
func parseAnalysisString(raw string) (lemma string, tags []string, ok bool) {
	m := analysisRe.FindStringSubmatch(raw)
	if m == nil {
		return "", nil, false
	}
	lemma = m[1]
	for _, tm := range tagRe.FindAllStringSubmatch(m[2], -1) {
		tags = append(tags, tm[1])
	}
	return lemma, tags, true
}

// parseLookupLine parses one "form\tanalysis\tweight" line. Lines
// whose analysis contains the +? unknown marker yield ok == false with
// the form still reported, so batch parsing can record the miss.
func parseLookupLine(line string) (form string, a *TransducerAnalysis, ok bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return "", nil, false
	}
	form = parts[0]
	analysisStr := parts[1]

	var weight float64
	if len(parts) > 2 {
		if w, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
			weight = w
		}
	}

	if strings.Contains(analysisStr, "+?") {
		return form, nil, false
	}
	lemma, tags, parsed := parseAnalysisString(analysisStr)
	if !parsed {
		return form, nil, false
	}
	return form, &TransducerAnalysis{
		SurfaceForm: form,
		LemmaString: lemma,
		Tags:        tags,
		Raw:         analysisStr,
		Weight:      weight,
	}, true
}

func parseLookupLines(form string, lines []string) []Analysis {
	var results []Analysis
	for _, line := range lines {
		if _, a, ok := parseLookupLine(line); ok {
			a.SurfaceForm = form
			results = append(results, a)
		}
	}
	return results
}

// ---- Public API -------------------------------------------------------

// Analyze analyzes a single surface form via the persistent process.
// An unavailable transducer answers with an empty result.
func (t *Transducer) Analyze(form string) ([]Analysis, error) {
	if !t.available {
		return nil, nil
	}
	lines, err := t.queryOne(form)
	if err != nil {
		return nil, err
	}
	return parseLookupLines(form, lines), nil
}

// AnalyzeBatch analyzes many forms with a single one-shot hfst-lookup
// invocation bounded by ctx. A timeout fails the whole batch. Forms
// the transducer does not know map to an empty list.
func (t *Transducer) AnalyzeBatch(ctx context.Context, forms []string) (map[string][]Analysis, error) {
	if !t.available || len(forms) == 0 {
		return map[string][]Analysis{}, nil
	}

	unique := make([]string, 0, len(forms))
	seen := make(map[string]bool, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}

	out, err := t.runBatch(ctx, t.automorf, unique)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]Analysis)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		form, a, ok := parseLookupLine(line)
		if form == "" {
			continue
		}
		if !ok {
			if _, present := results[form]; !present {
				results[form] = nil
			}
			continue
		}
		results[form] = append(results[form], a)
	}
	return results, nil
}

func (t *Transducer) runBatch(ctx context.Context, transducer string, inputs []string) (string, error) {
	cmd := exec.CommandContext(ctx, t.hfstPath, "-q", transducer)
	cmd.Stdin = strings.NewReader(strings.Join(inputs, "\n") + "\n")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("hfst-lookup batch: %w", ctx.Err())
		}
		return "", fmt.Errorf("hfst-lookup batch: %w", err)
	}
	return string(out), nil
}

// Generate produces surface forms for a lemma plus an Apertium tag
// sequence, e.g. Generate(ctx, lemma, []string{"n", "pl", "abl"}).
func (t *Transducer) Generate(ctx context.Context, lemma string, tags []string) ([]string, error) {
	if !t.available {
		return nil, nil
	}
	if _, err := os.Stat(t.autogen); err != nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString(lemma)
	for _, tg := range tags {
		b.WriteString("<")
		b.WriteString(tg)
		b.WriteString(">")
	}
	out, err := t.runBatch(ctx, t.autogen, []string{b.String()})
	if err != nil {
		return nil, err
	}
	var results []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) >= 2 && !strings.Contains(parts[1], "+?") {
			results = append(results, parts[1])
		}
	}
	return results, nil
}

// IsValidForm reports whether the transducer recognizes the form.
func (t *Transducer) IsValidForm(form string) bool {
	analyses, err := t.Analyze(form)
	return err == nil && len(analyses) > 0
}

// Close shuts down the persistent process. Safe to call repeatedly.
func (t *Transducer) Close() error {
	t.killProc()
	return nil
}

// Summary describes the transducer installation.
func (t *Transducer) Summary() string {
	var b strings.Builder
	b.WriteString("Apertium Western Armenian transducer\n")
	fmt.Fprintf(&b, "  Directory: %s\n", t.dir)
	fmt.Fprintf(&b, "  Available: %v", t.available)
	if t.available {
		fmt.Fprintf(&b, "\n  Analyzer:  %s", filepath.Base(t.automorf))
		genStatus := "not found"
		if _, err := os.Stat(t.autogen); err == nil {
			genStatus = "found"
		}
		fmt.Fprintf(&b, "\n  Generator: %s (%s)", filepath.Base(t.autogen), genStatus)
	} else {
		if t.hfstPath == "" {
			b.WriteString("\n  Problem:   hfst-lookup not found in PATH")
		} else {
			fmt.Fprintf(&b, "\n  Problem:   %s not found", t.automorf)
		}
	}
	return b.String()
}
