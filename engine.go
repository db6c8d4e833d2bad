package hywmorph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Backend is a morphological analysis source. Analyze returns every
// analysis the source has for the literal form; an unknown form is an
// empty result, not an error. Errors are reserved for source failures
// such as a dead subprocess.
type Backend interface {
	Analyze(form string) ([]Analysis, error)
}

// BatchAnalyzer is implemented by backends that can analyze many forms
// in one call. The result map only holds forms that produced at least
// one analysis.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, forms []string) (map[string][]Analysis, error)
}

// FormValidator is implemented by backends that can answer membership
// queries without producing full analyses.
type FormValidator interface {
	IsValidForm(form string) bool
}

// InsensitiveAnalyzer is implemented by backends that can retry a
// failed lookup case-insensitively. The backend receives the original
// form and lowercases it itself.
type InsensitiveAnalyzer interface {
	AnalyzeInsensitive(form string) []Analysis
}

// Engine resolves Armenian word forms against an ordered chain of
// analysis backends, consulting each in registration order and
// stopping at the first that answers. Optional collaborators handle
// the concerns no backend covers: orthography conversion, spelling
// suggestions and glossary definitions.
type Engine struct {
	backends []namedBackend

	// Converter, Spell, Gloss and Treebank are optional; a nil
	// collaborator makes the corresponding operations return safe
	// defaults.
	Converter *OrthographyConverter
	Spell     *SpellChecker
	Gloss     *Glossary
	Treebank  *Treebank

	// Lexicon is the merged primary lexicon, kept alongside its
	// backend wrapper because generation is a lexicon-only operation.
	Lexicon *Lexicon

	logger *slog.Logger
	closed bool
}

type namedBackend struct {
	name    string
	backend Backend
}

// NewEngine returns an empty engine. Backends are added with
// AddBackend in fallback order.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// AddBackend appends a named backend to the fallback chain.
func (e *Engine) AddBackend(name string, b Backend) {
	e.backends = append(e.backends, namedBackend{name: name, backend: b})
}

// Backends returns the registered backend names in fallback order.
func (e *Engine) Backends() []string {
	names := make([]string, len(e.backends))
	for i, nb := range e.backends {
		names[i] = nb.name
	}
	return names
}

// ---- Analysis ---------------------------------------------------------

// analyzeOne queries a single backend, retrying case-insensitively on
// that same backend when the literal form missed and the backend
// supports it. The retry passes the original form; the backend
// lowercases internally. Already-lowercase forms skip the retry, which
// would repeat the literal lookup.
func analyzeOne(nb namedBackend, form string) ([]Analysis, error) {
	analyses, err := nb.backend.Analyze(form)
	if err != nil {
		return nil, fmt.Errorf("%s: analyze %q: %w", nb.name, form, err)
	}
	if len(analyses) > 0 {
		return analyses, nil
	}
	if strings.ToLower(form) == form {
		return nil, nil
	}
	if ia, ok := nb.backend.(InsensitiveAnalyzer); ok {
		return ia.AnalyzeInsensitive(form), nil
	}
	return nil, nil
}

// Analyze resolves a form against the chain and returns the analyses
// of the first backend that has any, tagged with that backend's name.
// Each backend gets its case-insensitive retry before the chain moves
// on, so an insensitive hit on an early backend beats a literal hit on
// a later one. An unknown form yields an empty result, not an error.
func (e *Engine) Analyze(form string) ([]Result, error) {
	for _, nb := range e.backends {
		analyses, err := analyzeOne(nb, form)
		if err != nil {
			return nil, err
		}
		if len(analyses) > 0 {
			return tag(nb.name, analyses), nil
		}
	}
	return nil, nil
}

// AnalyzeAll resolves a form against every backend and returns the
// union of their analyses in chain order, each tagged with its source.
// Each backend applies its own case-insensitive retry.
func (e *Engine) AnalyzeAll(form string) ([]Result, error) {
	var results []Result
	for _, nb := range e.backends {
		analyses, err := analyzeOne(nb, form)
		if err != nil {
			return nil, err
		}
		results = append(results, tag(nb.name, analyses)...)
	}
	return results, nil
}

// AnalyzeBatch resolves many forms at once. Each backend in the chain
// sees only the forms no earlier backend resolved; a batch-capable
// backend is invoked exactly once per pass with the whole remaining
// working set, others are queried form by form with the same
// case-insensitive retry as Analyze. The pass ends early when every
// form is resolved. A backend error, including a batch timeout, fails
// the entire call.
func (e *Engine) AnalyzeBatch(ctx context.Context, forms []string) (map[string][]Result, error) {
	results := make(map[string][]Result, len(forms))

	// Working set in input order, deduplicated.
	working := make([]string, 0, len(forms))
	seen := make(map[string]bool, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			working = append(working, f)
		}
	}

	for _, nb := range e.backends {
		if len(working) == 0 {
			break
		}
		if ba, ok := nb.backend.(BatchAnalyzer); ok {
			batch, err := ba.AnalyzeBatch(ctx, working)
			if err != nil {
				return nil, fmt.Errorf("%s: analyze batch: %w", nb.name, err)
			}
			var remaining []string
			for _, f := range working {
				if analyses := batch[f]; len(analyses) > 0 {
					results[f] = tag(nb.name, analyses)
				} else {
					remaining = append(remaining, f)
				}
			}
			working = remaining
			continue
		}
		var remaining []string
		for _, f := range working {
			analyses, err := analyzeOne(nb, f)
			if err != nil {
				return nil, err
			}
			if len(analyses) > 0 {
				results[f] = tag(nb.name, analyses)
			} else {
				remaining = append(remaining, f)
			}
		}
		working = remaining
	}
	return results, nil
}

func tag(source string, analyses []Analysis) []Result {
	results := make([]Result, 0, len(analyses))
	for _, a := range analyses {
		results = append(results, Result{Source: source, Analysis: a})
	}
	return results
}

// Generate produces the surface forms of a lemma matching the feature
// filter, or nothing when no lexicon is configured.
func (e *Engine) Generate(lemma string, filter Features) []GeneratedForm {
	if e.Lexicon == nil {
		return nil
	}
	return e.Lexicon.Generate(lemma, filter)
}

// ---- Validation and spelling ------------------------------------------

// Validate reports whether the form is known to any validating
// backend, falling back to the spell checker when none recognizes it.
func (e *Engine) Validate(form string) bool {
	for _, nb := range e.backends {
		fv, ok := nb.backend.(FormValidator)
		if !ok {
			continue
		}
		if fv.IsValidForm(form) {
			return true
		}
	}
	if e.Spell != nil {
		ok, err := e.Spell.Check(form)
		if err != nil {
			e.logger.Warn("spell check failed", "form", form, "error", err)
			return false
		}
		return ok
	}
	return false
}

// Suggest returns spelling suggestions for a form, or nothing when no
// spell checker is configured.
func (e *Engine) Suggest(form string) ([]string, error) {
	if e.Spell == nil {
		return nil, nil
	}
	return e.Spell.Suggest(form)
}

// ---- Orthography ------------------------------------------------------

// ConvertReformed converts reformed-orthography text to classical. It
// returns the input unchanged when no converter is configured.
func (e *Engine) ConvertReformed(text string) string {
	if e.Converter == nil {
		return text
	}
	return e.Converter.ConvertText(text)
}

// DetectReformed lists the reformed-orthography words found in text,
// or nothing when no converter is configured.
func (e *Engine) DetectReformed(text string) []ReformedWord {
	if e.Converter == nil {
		return nil
	}
	return e.Converter.DetectReformedWords(text)
}

// ---- Glossary ---------------------------------------------------------

// LookupDefinition returns the glossary entries for a lemma, or
// nothing when no glossary is configured.
func (e *Engine) LookupDefinition(lemma string) []GlossaryEntry {
	if e.Gloss == nil {
		return nil
	}
	return e.Gloss.Lookup(lemma)
}

// ---- Lifecycle --------------------------------------------------------

// Close shuts down every backend and collaborator that holds external
// resources. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var errs []error
	for _, nb := range e.backends {
		c, ok := nb.backend.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", nb.name, err))
		}
	}
	if e.Spell != nil {
		if err := e.Spell.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spell checker: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Summary describes the configured chain and collaborators.
func (e *Engine) Summary() string {
	var b strings.Builder
	b.WriteString("Backends (in fallback order):\n")
	for i, nb := range e.backends {
		caps := backendCaps(nb.backend)
		fmt.Fprintf(&b, "  %d. %s%s\n", i+1, nb.name, caps)
	}
	fmt.Fprintf(&b, "Orthography converter: %v\n", e.Converter != nil)
	fmt.Fprintf(&b, "Spell checker:         %v\n", e.Spell != nil)
	fmt.Fprintf(&b, "Glossary:              %v\n", e.Gloss != nil)
	fmt.Fprintf(&b, "Treebank:              %v", e.Treebank != nil)
	return b.String()
}

func backendCaps(b Backend) string {
	var caps []string
	if _, ok := b.(BatchAnalyzer); ok {
		caps = append(caps, "batch")
	}
	if _, ok := b.(FormValidator); ok {
		caps = append(caps, "validate")
	}
	if _, ok := b.(InsensitiveAnalyzer); ok {
		caps = append(caps, "insensitive")
	}
	if len(caps) == 0 {
		return ""
	}
	return " (" + strings.Join(caps, ", ") + ")"
}

// lexiconBackend adapts a Lexicon to the backend interfaces without
// widening the lexicon's own API to []Analysis.
type lexiconBackend struct {
	lex *Lexicon
}

// NewLexiconBackend wraps a Lexicon for use in an engine chain. The
// wrapper supports validation and case-insensitive retry.
func NewLexiconBackend(lex *Lexicon) Backend {
	return lexiconBackend{lex: lex}
}

func (b lexiconBackend) Analyze(form string) ([]Analysis, error) {
	return morphToAnalyses(b.lex.Analyze(form)), nil
}

func (b lexiconBackend) AnalyzeInsensitive(form string) []Analysis {
	return morphToAnalyses(b.lex.AnalyzeInsensitive(form))
}

func (b lexiconBackend) IsValidForm(form string) bool {
	return b.lex.IsValidForm(form)
}

func morphToAnalyses(in []*MorphAnalysis) []Analysis {
	if len(in) == 0 {
		return nil
	}
	out := make([]Analysis, len(in))
	for i, a := range in {
		out[i] = a
	}
	return out
}
