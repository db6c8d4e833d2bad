package hywmorph

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// testAnalysis is a minimal Analysis for backend fakes.
type testAnalysis struct {
	form, lemma, pos string
}

func (a testAnalysis) Form() string       { return a.form }
func (a testAnalysis) Lemma() string      { return a.lemma }
func (a testAnalysis) POS() string        { return a.pos }
func (a testAnalysis) Description() string { return "" }
func (a testAnalysis) Features() Features { return Features{} }

func one(form, lemma string) []Analysis {
	return []Analysis{testAnalysis{form: form, lemma: lemma, pos: "NOUN"}}
}

type fakeBackend struct {
	answers map[string][]Analysis
	err     error
	calls   []string
}

func (b *fakeBackend) Analyze(form string) ([]Analysis, error) {
	b.calls = append(b.calls, form)
	if b.err != nil {
		return nil, b.err
	}
	return b.answers[form], nil
}

type fakeBatchBackend struct {
	fakeBackend
	batchCalls [][]string
	batchErr   error
}

func (b *fakeBatchBackend) AnalyzeBatch(ctx context.Context, forms []string) (map[string][]Analysis, error) {
	b.batchCalls = append(b.batchCalls, append([]string(nil), forms...))
	if b.batchErr != nil {
		return nil, b.batchErr
	}
	out := make(map[string][]Analysis)
	for _, f := range forms {
		if a := b.answers[f]; len(a) > 0 {
			out[f] = a
		}
	}
	return out, nil
}

type fakeInsensitiveBackend struct {
	fakeBackend
	insensitiveCalls []string
	lowerAnswers     map[string][]Analysis
}

func (b *fakeInsensitiveBackend) AnalyzeInsensitive(form string) []Analysis {
	b.insensitiveCalls = append(b.insensitiveCalls, form)
	return b.lowerAnswers[strings.ToLower(form)]
}

type fakeValidatorBackend struct {
	fakeBackend
	valid map[string]bool
}

func (b *fakeValidatorBackend) IsValidForm(form string) bool { return b.valid[form] }

type fakeCloserBackend struct {
	fakeBackend
	closes int
}

func (b *fakeCloserBackend) Close() error {
	b.closes++
	return nil
}

func TestAnalyzeFirstMatchWinsWithSourceTag(t *testing.T) {
	first := &fakeBackend{answers: map[string][]Analysis{}}
	second := &fakeBackend{answers: map[string][]Analysis{"form": one("form", "lemma2")}}

	e := NewEngine(nil)
	e.AddBackend("nayiri", first)
	e.AddBackend("apertium", second)

	results, err := e.Analyze("form")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Source != "apertium" {
		t.Errorf("source = %q, want apertium", results[0].Source)
	}
	if results[0].Lemma() != "lemma2" {
		t.Errorf("lemma = %q, want lemma2", results[0].Lemma())
	}
}

func TestAnalyzeStopsAtFirstHit(t *testing.T) {
	first := &fakeBackend{answers: map[string][]Analysis{"form": one("form", "lemma1")}}
	second := &fakeBackend{}

	e := NewEngine(nil)
	e.AddBackend("a", first)
	e.AddBackend("b", second)

	if _, err := e.Analyze("form"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(second.calls) != 0 {
		t.Errorf("second backend was queried %d times, want 0", len(second.calls))
	}
}

func TestAnalyzeUnknownFormEmptyNotError(t *testing.T) {
	e := NewEngine(nil)
	e.AddBackend("a", &fakeBackend{})
	results, err := e.Analyze("missing")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %v, want empty", results)
	}
}

func TestAnalyzeErrorPropagates(t *testing.T) {
	e := NewEngine(nil)
	e.AddBackend("broken", &fakeBackend{err: errors.New("process died")})
	if _, err := e.Analyze("form"); err == nil {
		t.Fatal("expected error from failing backend")
	}
}

func TestAnalyzeInsensitiveRetryGetsOriginalForm(t *testing.T) {
	plain := &fakeBackend{}
	insensitive := &fakeInsensitiveBackend{
		lowerAnswers: map[string][]Analysis{"form": one("form", "lemma")},
	}

	e := NewEngine(nil)
	e.AddBackend("plain", plain)
	e.AddBackend("lex", insensitive)

	results, err := e.Analyze("FORM")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 from insensitive retry", len(results))
	}
	// The backend lowercases internally, so it receives the original.
	if len(insensitive.insensitiveCalls) != 1 || insensitive.insensitiveCalls[0] != "FORM" {
		t.Errorf("insensitive calls = %v, want [FORM]", insensitive.insensitiveCalls)
	}
}

func TestAnalyzeInsensitiveRetryHappensPerBackend(t *testing.T) {
	// The first backend misses "Word" literally but hits it
	// case-insensitively; that must beat the second backend's literal
	// hit, because each backend exhausts its retry before the chain
	// moves on.
	first := &fakeInsensitiveBackend{
		lowerAnswers: map[string][]Analysis{"word": one("word", "from-lexicon")},
	}
	second := &fakeBackend{answers: map[string][]Analysis{"Word": one("Word", "from-transducer")}}

	e := NewEngine(nil)
	e.AddBackend("nayiri", first)
	e.AddBackend("apertium", second)

	results, err := e.Analyze("Word")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Source != "nayiri" {
		t.Errorf("source = %q, want nayiri", results[0].Source)
	}
	if len(second.calls) != 0 {
		t.Errorf("second backend was queried %d times, want 0", len(second.calls))
	}
}

func TestAnalyzeAllIncludesPerBackendInsensitiveHits(t *testing.T) {
	first := &fakeInsensitiveBackend{
		lowerAnswers: map[string][]Analysis{"word": one("word", "from-lexicon")},
	}
	second := &fakeBackend{answers: map[string][]Analysis{"Word": one("Word", "from-transducer")}}

	e := NewEngine(nil)
	e.AddBackend("nayiri", first)
	e.AddBackend("apertium", second)

	results, err := e.AnalyzeAll("Word")
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Source != "nayiri" || results[1].Source != "apertium" {
		t.Errorf("sources = %q, %q; want nayiri, apertium", results[0].Source, results[1].Source)
	}
}

func TestAnalyzeNoInsensitiveRetryForLowercase(t *testing.T) {
	insensitive := &fakeInsensitiveBackend{
		lowerAnswers: map[string][]Analysis{"form": one("form", "lemma")},
	}
	e := NewEngine(nil)
	e.AddBackend("lex", insensitive)

	// Already lowercase: a retry would be identical, so none happens.
	results, err := e.Analyze("unknown")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %v, want empty", results)
	}
	if len(insensitive.insensitiveCalls) != 0 {
		t.Errorf("insensitive retry ran for an all-lowercase form")
	}
}

func TestAnalyzeAllCollectsEveryBackend(t *testing.T) {
	first := &fakeBackend{answers: map[string][]Analysis{"form": one("form", "lemma1")}}
	second := &fakeBackend{answers: map[string][]Analysis{"form": one("form", "lemma2")}}

	e := NewEngine(nil)
	e.AddBackend("nayiri", first)
	e.AddBackend("apertium", second)

	results, err := e.AnalyzeAll("form")
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Source != "nayiri" || results[1].Source != "apertium" {
		t.Errorf("sources = %q, %q; want nayiri, apertium", results[0].Source, results[1].Source)
	}
}

func TestAnalyzeBatchInvokesBatchBackendOnceWithRemainder(t *testing.T) {
	lexicon := &fakeBackend{answers: map[string][]Analysis{"w1": one("w1", "l1")}}
	trans := &fakeBatchBackend{
		fakeBackend: fakeBackend{answers: map[string][]Analysis{"w2": one("w2", "l2")}},
	}

	e := NewEngine(nil)
	e.AddBackend("nayiri", lexicon)
	e.AddBackend("apertium", trans)

	results, err := e.AnalyzeBatch(context.Background(), []string{"w1", "w2"})
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}

	// The batch-capable backend sees exactly one call carrying exactly
	// the forms the first backend missed.
	if len(trans.batchCalls) != 1 {
		t.Fatalf("batch backend invoked %d times, want 1", len(trans.batchCalls))
	}
	if !reflect.DeepEqual(trans.batchCalls[0], []string{"w2"}) {
		t.Errorf("batch call = %v, want [w2]", trans.batchCalls[0])
	}

	if results["w1"][0].Source != "nayiri" {
		t.Errorf("w1 source = %q, want nayiri", results["w1"][0].Source)
	}
	if results["w2"][0].Source != "apertium" {
		t.Errorf("w2 source = %q, want apertium", results["w2"][0].Source)
	}
}

func TestAnalyzeBatchEarlyExitWhenAllResolved(t *testing.T) {
	lexicon := &fakeBackend{answers: map[string][]Analysis{
		"w1": one("w1", "l1"),
		"w2": one("w2", "l2"),
	}}
	trans := &fakeBatchBackend{}

	e := NewEngine(nil)
	e.AddBackend("nayiri", lexicon)
	e.AddBackend("apertium", trans)

	if _, err := e.AnalyzeBatch(context.Background(), []string{"w1", "w2"}); err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(trans.batchCalls) != 0 {
		t.Errorf("batch backend invoked with empty working set")
	}
}

func TestAnalyzeBatchDeduplicatesInput(t *testing.T) {
	lexicon := &fakeBackend{}
	e := NewEngine(nil)
	e.AddBackend("nayiri", lexicon)

	if _, err := e.AnalyzeBatch(context.Background(), []string{"w", "w", "w"}); err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(lexicon.calls) != 1 {
		t.Errorf("backend queried %d times for a duplicated form, want 1", len(lexicon.calls))
	}
}

func TestAnalyzeBatchRetriesInsensitivelyLikeAnalyze(t *testing.T) {
	// A capitalized form that only resolves case-insensitively must
	// resolve through AnalyzeBatch too, not just Analyze.
	lexicon := &fakeInsensitiveBackend{
		lowerAnswers: map[string][]Analysis{"word": one("word", "lemma")},
	}
	e := NewEngine(nil)
	e.AddBackend("nayiri", lexicon)

	single, err := e.Analyze("Word")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	batch, err := e.AnalyzeBatch(context.Background(), []string{"Word"})
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(single) != 1 {
		t.Fatalf("Analyze found %d results, want 1", len(single))
	}
	if len(batch["Word"]) != len(single) {
		t.Errorf("AnalyzeBatch found %d results for Word, Analyze found %d", len(batch["Word"]), len(single))
	}
	if batch["Word"][0].Source != "nayiri" {
		t.Errorf("source = %q, want nayiri", batch["Word"][0].Source)
	}
}

func TestAnalyzeBatchErrorFailsWholeBatch(t *testing.T) {
	trans := &fakeBatchBackend{batchErr: context.DeadlineExceeded}
	e := NewEngine(nil)
	e.AddBackend("apertium", trans)

	results, err := e.AnalyzeBatch(context.Background(), []string{"w1", "w2"})
	if err == nil {
		t.Fatal("expected error from failing batch backend")
	}
	if results != nil {
		t.Errorf("failed batch returned partial results: %v", results)
	}
}

func TestValidateFallsThroughValidators(t *testing.T) {
	noV := &fakeBackend{}
	v := &fakeValidatorBackend{valid: map[string]bool{"good": true}}

	e := NewEngine(nil)
	e.AddBackend("plain", noV)
	e.AddBackend("lex", v)

	if !e.Validate("good") {
		t.Error("Validate(good) = false, want true")
	}
	// No validator knows it and no spell checker is configured.
	if e.Validate("bad") {
		t.Error("Validate(bad) = true, want false")
	}
}

func TestSafeDefaultsWithoutCollaborators(t *testing.T) {
	e := NewEngine(nil)

	if got, err := e.Suggest("word"); err != nil || len(got) != 0 {
		t.Errorf("Suggest = %v, %v; want empty, nil", got, err)
	}
	if got := e.ConvertReformed("some text"); got != "some text" {
		t.Errorf("ConvertReformed = %q, want input unchanged", got)
	}
	if got := e.DetectReformed("some text"); len(got) != 0 {
		t.Errorf("DetectReformed = %v, want empty", got)
	}
	if got := e.LookupDefinition("word"); len(got) != 0 {
		t.Errorf("LookupDefinition = %v, want empty", got)
	}
	if got := e.Generate("word", Features{}); len(got) != 0 {
		t.Errorf("Generate = %v, want empty", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	closer := &fakeCloserBackend{}
	e := NewEngine(nil)
	e.AddBackend("plain", &fakeBackend{})
	e.AddBackend("closer", closer)

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if closer.closes != 1 {
		t.Errorf("backend closed %d times, want 1", closer.closes)
	}
}

func TestSummaryListsBackendsInOrder(t *testing.T) {
	e := NewEngine(nil)
	e.AddBackend("nayiri", &fakeInsensitiveBackend{})
	e.AddBackend("apertium", &fakeBatchBackend{})

	s := e.Summary()
	if !strings.Contains(s, "1. nayiri") || !strings.Contains(s, "2. apertium") {
		t.Errorf("Summary missing ordered backends:\n%s", s)
	}
	if !strings.Contains(s, "insensitive") || !strings.Contains(s, "batch") {
		t.Errorf("Summary missing capability notes:\n%s", s)
	}
}

func TestLexiconBackendCapabilities(t *testing.T) {
	lex := loadTestLexicon(t)
	b := NewLexiconBackend(lex)

	if _, ok := b.(InsensitiveAnalyzer); !ok {
		t.Error("lexicon backend should support case-insensitive retry")
	}
	if _, ok := b.(FormValidator); !ok {
		t.Error("lexicon backend should support validation")
	}
	if _, ok := b.(BatchAnalyzer); ok {
		t.Error("lexicon backend should not claim batch capability")
	}

	analyses, err := b.Analyze("ambele")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analyses) != 1 || analyses[0].Lemma() != "ambel" {
		t.Errorf("Analyze(ambele) = %v, want one analysis of ambel", analyses)
	}
}
