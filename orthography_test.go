package hywmorph

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDictr(t *testing.T, lexMap, flexMap, exceptions string) string {
	t.Helper()
	dir := t.TempDir()
	dictr := filepath.Join(dir, "Dictr")
	if err := os.MkdirAll(dictr, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"RCLexMap.dic":     lexMap,
		"RCFlexMap.dic":    flexMap,
		"RCExceptions.dic": exceptions,
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dictr, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestParseFlexSide(t *testing.T) {
	tests := []struct {
		side  string
		strip string
		add   string
	}{
		{"+abc", "", "abc"},
		{"-xy+abc", "xy", "abc"},
		{"-xy|+abc", "xy", "abc"},
		{"-xy", "xy", ""},
		{"+abc125", "", "abc"},
		{"[x]+", "", ""},
	}
	for _, tt := range tests {
		strip, add := parseFlexSide(tt.side)
		if strip != tt.strip || add != tt.add {
			t.Errorf("parseFlexSide(%q) = (%q, %q), want (%q, %q)",
				tt.side, strip, add, tt.strip, tt.add)
		}
	}
}

func TestParseFlexRulesSkipsBracketAndBlank(t *testing.T) {
	lines := []string{
		"[h]+:[y]+",
		"",
		"no colon here",
		"-e+el:-il+ile",
		"+s:+ner",
	}
	rules := parseFlexRules(lines)
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	want := FlexRule{RefSuffix: "el", RefRestore: "e", ClsStrip: "il", ClsSuffix: "ile"}
	if rules[0] != want {
		t.Errorf("rule[0] = %+v, want %+v", rules[0], want)
	}
	if rules[1].RefSuffix != "s" || rules[1].RefRestore != "" || rules[1].ClsSuffix != "ner" {
		t.Errorf("rule[1] = %+v", rules[1])
	}

	chars := parseCharRules(lines)
	if len(chars) != 1 || chars[0] != (CharRule{From: "h", To: "y"}) {
		t.Errorf("char rules = %v, want [{h y}]", chars)
	}
}

func TestConvertWordExceptionShortCircuits(t *testing.T) {
	dir := writeDictr(t, "refword:clsword\n", "", "refword\n")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatalf("NewOrthographyConverter: %v", err)
	}
	// The exception wins even though a direct mapping exists.
	if got := conv.ConvertWord("refword"); got != "refword" {
		t.Errorf("ConvertWord(refword) = %q, want refword", got)
	}
}

func TestConvertWordDirectMap(t *testing.T) {
	dir := writeDictr(t, "ref:cls\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("ref"); got != "cls" {
		t.Errorf("ConvertWord(ref) = %q, want cls", got)
	}
}

func TestConvertWordRecapitalizesFirstCharOnly(t *testing.T) {
	dir := writeDictr(t, "ref:cls\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("REF"); got != "Cls" {
		t.Errorf("ConvertWord(REF) = %q, want Cls", got)
	}
	if got := conv.ConvertWord("Ref"); got != "Cls" {
		t.Errorf("ConvertWord(Ref) = %q, want Cls", got)
	}
}

func TestFlexRuleFirstSuccessfulWins(t *testing.T) {
	// Both rules match the suffix, but only the second rule's
	// reconstructed base exists in the map.
	lexMap := "speak:talk\n"
	flexMap := "-x+ing:+ed\n+ing:+ed\n"
	dir := writeDictr(t, lexMap, flexMap, "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("speaking"); got != "talked" {
		t.Errorf("ConvertWord(speaking) = %q, want talked", got)
	}
}

func TestFlexRuleClsStripMismatchSkipsRule(t *testing.T) {
	// The first rule resolves its base but its classical strip does
	// not match the mapped base's ending, so the second rule applies.
	lexMap := "base:clsbase\n"
	flexMap := "+xx:-zz+A\n+xx:+B\n"
	dir := writeDictr(t, lexMap, flexMap, "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("basexx"); got != "clsbaseB" {
		t.Errorf("ConvertWord(basexx) = %q, want clsbaseB", got)
	}
}

func TestFlexRuleCapitalizationRestored(t *testing.T) {
	lexMap := "walk:march\n"
	flexMap := "+ing:+ed\n"
	dir := writeDictr(t, lexMap, flexMap, "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("Walking"); got != "Marched" {
		t.Errorf("ConvertWord(Walking) = %q, want Marched", got)
	}
}

func TestCharRuleLastResort(t *testing.T) {
	dir := writeDictr(t, "other:mapped\n", "[h]+:[y]+\n", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("hash"); got != "yasy" {
		t.Errorf("ConvertWord(hash) = %q, want yasy", got)
	}
}

func TestConvertWordIdentityWhenNothingApplies(t *testing.T) {
	dir := writeDictr(t, "ref:cls\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("untouched"); got != "untouched" {
		t.Errorf("ConvertWord(untouched) = %q, want untouched", got)
	}
}

func TestConvertTextPreservesNonWordRuns(t *testing.T) {
	dir := writeDictr(t, "ref:cls\nalso:too\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	in := "ref, also...  ref! 42"
	want := "cls, too...  cls! 42"
	if got := conv.ConvertText(in); got != want {
		t.Errorf("ConvertText = %q, want %q", got, want)
	}
	if got := conv.ConvertText(""); got != "" {
		t.Errorf("ConvertText(empty) = %q", got)
	}
}

func TestIsReformed(t *testing.T) {
	dir := writeDictr(t, "ref:cls\nsame:same\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !conv.IsReformed("ref") {
		t.Error("IsReformed(ref) = false, want true")
	}
	// Spelled identically in both orthographies.
	if conv.IsReformed("same") {
		t.Error("IsReformed(same) = true, want false")
	}
	if conv.IsReformed("unknown") {
		t.Error("IsReformed(unknown) = true, want false")
	}
}

func TestDetectReformedWordsDedupAndOrder(t *testing.T) {
	dir := writeDictr(t, "ref:cls\nolder:newer\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := conv.DetectReformedWords("older ref plain ref older")
	if len(got) != 2 {
		t.Fatalf("got %d detections, want 2: %v", len(got), got)
	}
	if got[0].Reformed != "older" || got[0].Classical != "newer" {
		t.Errorf("first detection = %+v", got[0])
	}
	if got[1].Reformed != "ref" || got[1].Classical != "cls" {
		t.Errorf("second detection = %+v", got[1])
	}
}

func TestLoaderStripsBOMAndMissingFilesAreEmpty(t *testing.T) {
	dir := writeDictr(t, "\uFEFFref:cls\n", "", "")
	conv, err := NewOrthographyConverter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := conv.ConvertWord("ref"); got != "cls" {
		t.Errorf("BOM-prefixed first line not handled, ConvertWord(ref) = %q", got)
	}

	// A directory with no tables at all still loads.
	empty, err := NewOrthographyConverter(t.TempDir())
	if err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	if got := empty.ConvertWord("anything"); got != "anything" {
		t.Errorf("empty converter changed a word: %q", got)
	}
}
