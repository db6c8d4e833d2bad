package hywmorph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRomanizeWordUnambiguous(t *testing.T) {
	r := NewRomanizer()
	require.Equal(t, []string{"մամա"}, r.RomanizeWord("mama"))
	require.Equal(t, []string{"լավաշ"}, r.RomanizeWord("lavash"))
}

func TestRomanizeWordDigraphBeforeSingle(t *testing.T) {
	r := NewRomanizer()
	// "sh" must segment as the digraph շ, never ս + հ.
	cands := r.RomanizeWord("shad")
	require.NotEmpty(t, cands)
	require.Equal(t, "շատ", cands[0])

	// "ou" wins over "o" + "u".
	require.Equal(t, []string{"նուռ"}, r.RomanizeWord("nourr"))
}

func TestRomanizeWordAmbiguityExpansion(t *testing.T) {
	r := NewRomanizer()
	// t has two candidates, so does e; first candidates come first.
	cands := r.RomanizeWord("te")
	require.Equal(t, []string{"թե", "թէ", "դե", "դէ"}, cands)
}

func TestRomanizeWordCaseInsensitive(t *testing.T) {
	r := NewRomanizer()
	require.Equal(t, r.RomanizeWord("mama"), r.RomanizeWord("MAMA"))
}

func TestRomanizeWordInitialExtraCandidates(t *testing.T) {
	r := NewRomanizer()
	cands := r.RomanizeWord("hay")
	require.Contains(t, cands, "հայ")
	require.Contains(t, cands, "յայ", "word-initial h also tries յ")

	// Non-initial h gets no extra candidate.
	cands = r.RomanizeWord("aha")
	require.Equal(t, []string{"ահա"}, cands)
}

func TestRomanizeWordCandidateCap(t *testing.T) {
	r := NewRomanizer()
	r.MaxCandidates = 4
	cands := r.RomanizeWord("tptp")
	require.Len(t, cands, 4)

	// Every candidate of an all-ambiguous word still has full length.
	for _, c := range cands {
		require.Len(t, []rune(c), 4)
	}
}

func TestRomanizeWordUnmappedRunePassesThrough(t *testing.T) {
	r := NewRomanizer()
	require.Equal(t, []string{"մ5մ"}, r.RomanizeWord("m5m"))
}

func TestAmbiguousKeys(t *testing.T) {
	r := NewRomanizer()
	keys := r.AmbiguousKeys()
	require.Contains(t, keys, "ts")
	require.Contains(t, keys, "e")
	require.NotContains(t, keys, "m")
	require.NotContains(t, keys, "sh")
}

func TestRomanizeText(t *testing.T) {
	r := NewRomanizer()
	got := r.RomanizeText("mama, shad lav!")
	require.Equal(t, "մամա, շատ լավ!", got)
}

func TestRomanizeTextLeavesArmenianAlone(t *testing.T) {
	r := NewRomanizer()
	require.Equal(t, "մամա", r.RomanizeText("մամա"))
	require.Equal(t, "", r.RomanizeText(""))
	require.Equal(t, "123 456", r.RomanizeText("123 456"))
}
