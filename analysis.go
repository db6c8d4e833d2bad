package hywmorph

import "fmt"

// Features is the open feature bundle shared by every analysis source.
// An empty string means the feature is absent; features are never
// defaulted.
type Features struct {
	Case     string
	Number   string
	Person   string
	Tense    string
	Mood     string
	Polarity string
	Article  string
}

// Matches reports whether f satisfies the constraints in filter.
// An empty field in filter is a wildcard; a present field must match
// by exact string equality.
func (f Features) Matches(filter Features) bool {
	if filter.Case != "" && f.Case != filter.Case {
		return false
	}
	if filter.Number != "" && f.Number != filter.Number {
		return false
	}
	if filter.Person != "" && f.Person != filter.Person {
		return false
	}
	if filter.Tense != "" && f.Tense != filter.Tense {
		return false
	}
	if filter.Mood != "" && f.Mood != filter.Mood {
		return false
	}
	if filter.Polarity != "" && f.Polarity != filter.Polarity {
		return false
	}
	if filter.Article != "" && f.Article != filter.Article {
		return false
	}
	return true
}

// Analysis is a single morphological reading of a surface form,
// regardless of which backend produced it.
type Analysis interface {
	// Form is the surface form that was analyzed.
	Form() string
	// Lemma is the dictionary citation form.
	Lemma() string
	// POS is the normalized part-of-speech label (NOUN, VERB, ...).
	POS() string
	// Description is a human-readable English description of the reading.
	Description() string
	// Features returns the grammatical feature bundle.
	Features() Features
}

// Result tags an Analysis with the name of the backend that produced it.
type Result struct {
	// Source is the backend name ("nayiri", "apertium", ...).
	Source string
	Analysis
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s <- %s [%s]", r.Source, r.Form(), r.Lemma(), r.POS())
}
