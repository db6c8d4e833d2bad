package hywmorph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const conlluSample = `# newdoc id = fiction-001
# sent_id = fiction-001-1
# text = Տունէն եկաւ։
1	Տունէն	տուն	NOUN	_	Case=Abl|Definite=Def|Number=Sing	2	obl	_	Translit=Tunēn|LTranslit=tun
2	եկաւ	գալ	VERB	_	Mood=Ind|Tense=Past	0	root	_	SpaceAfter=No
3	։	։	PUNCT	_	_	2	punct	_	_

# sent_id = fiction-001-2
# text = Չեմ գիտեր։
1-2	Չեմ	_	_	_	_	_	_	_	_
1	Չ	չ	PART	_	Polarity=Neg	3	advmod	_	_
2	եմ	եմ	AUX	_	Number=Sing|Person=1	3	aux	_	_
3	գիտեր	գիտնալ	VERB	_	_	0	root	_	SpaceAfter=No
4	։	։	PUNCT	_	_	3	punct	_	_`

func loadTestTreebank(t *testing.T) *Treebank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyw_armtdp-ud-test.conllu")
	require.NoError(t, os.WriteFile(path, []byte(conlluSample), 0o644))
	tb, err := TreebankFromFile(path)
	require.NoError(t, err)
	return tb
}

func TestParseCoNLLUStructure(t *testing.T) {
	tb := loadTestTreebank(t)
	// The final sentence has no trailing blank line and must still be
	// flushed.
	require.Equal(t, 2, tb.Len())

	s1 := tb.Sentences[0]
	require.Equal(t, "fiction-001-1", s1.SentID())
	require.Equal(t, "Տունէն եկաւ։", s1.Text())
	// "# newdoc id = ..." has a space inside the key and is skipped.
	require.NotContains(t, s1.Metadata, "newdoc")
	require.Equal(t, []string{"Տունէն", "եկաւ", "։"}, s1.Words())
	require.Equal(t, []string{"տուն", "գալ", "։"}, s1.Lemmas())
}

func TestMultiwordTokenExcludedFromRealTokens(t *testing.T) {
	tb := loadTestTreebank(t)
	s2 := tb.Sentences[1]

	require.Len(t, s2.Tokens, 5)
	require.Len(t, s2.RealTokens(), 4)
	require.True(t, s2.Tokens[0].IsMultiword())
	require.Equal(t, "Չեմ", s2.Tokens[0].Form)
	require.Equal(t, 7, tb.TokenCount())
}

func TestTokenFeaturesAndMisc(t *testing.T) {
	tb := loadTestTreebank(t)
	tok := tb.Sentences[0].Tokens[0]

	require.Equal(t, "Abl", tok.Feat("Case"))
	require.Equal(t, "Def", tok.Feat("Definite"))
	require.Equal(t, "", tok.Feat("Mood"))
	require.Equal(t, "Tunēn", tok.Translit())
	require.Equal(t, "tun", tok.LemmaTranslit())
	require.True(t, tok.SpaceAfter())

	verb := tb.Sentences[0].Tokens[1]
	require.False(t, verb.SpaceAfter())
	require.Empty(t, verb.Misc["Translit"])

	punct := tb.Sentences[0].Tokens[2]
	require.Empty(t, punct.Feats)
	require.Empty(t, punct.Misc)
}

func TestSentenceFilters(t *testing.T) {
	tb := loadTestTreebank(t)
	s1 := tb.Sentences[0]

	verbs := s1.ByUPOS("VERB")
	require.Len(t, verbs, 1)
	require.Equal(t, "գալ", verbs[0].Lemma)

	root := s1.Root()
	require.NotNil(t, root)
	require.Equal(t, "եկաւ", root.Form)
}

func TestTreebankAggregates(t *testing.T) {
	tb := loadTestTreebank(t)

	require.True(t, tb.UniqueLemmas()["տուն"])
	require.True(t, tb.UniqueForms()["Տունէն"])
	require.True(t, tb.Vocab()["տուն"]["Տունէն"])

	dist := tb.POSDistribution()
	require.Equal(t, 2, dist["VERB"])
	require.Equal(t, 2, dist["PUNCT"])
	require.Equal(t, 1, dist["NOUN"])

	deprels := tb.DeprelDistribution()
	require.Equal(t, 2, deprels["root"])
}

func TestTreebankFromDirSortsAndConcatenates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-dev.conllu"),
		[]byte("# sent_id = b-1\n1\tա\tա\tNOUN\t_\t_\t0\troot\t_\t_\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-train.conllu"),
		[]byte("# sent_id = a-1\n1\tբ\tբ\tNOUN\t_\t_\t0\troot\t_\t_\n"), 0o644))

	tb, err := TreebankFromDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	require.Equal(t, "a-1", tb.Sentences[0].SentID())
	require.Equal(t, "b-1", tb.Sentences[1].SentID())
}

func TestParseKeyValuesBareFlag(t *testing.T) {
	kv := parseKeyValues("Foo=Bar|Flag")
	require.Equal(t, "Bar", kv["Foo"])
	v, ok := kv["Flag"]
	require.True(t, ok)
	require.Equal(t, "", v)

	require.Empty(t, parseKeyValues("_"))
}
