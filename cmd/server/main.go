// Command server exposes the Western Armenian morphology engine as a
// JSON REST API.
//
// Endpoints:
//
//	GET  /api/analyze?form=<word>
//	GET  /api/analyze/all?form=<word>
//	POST /api/analyze/batch   body: {"forms":["...","..."]}
//	GET  /api/generate?lemma=<lemma>[&case=..&number=..&article=..]
//	POST /api/convert         body: {"text":"..."}
//	POST /api/detect          body: {"text":"..."}
//	GET  /api/validate?form=<word>
//	GET  /api/suggest?form=<word>
//	GET  /api/define?word=<word>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	hywmorph "github.com/armenian-nlp/hywmorph"
	"github.com/rs/cors"
)

// ---- JSON response types ------------------------------------------------

type analysisJSON struct {
	Source      string `json:"source"`
	Form        string `json:"form"`
	Lemma       string `json:"lemma"`
	POS         string `json:"pos"`
	Description string `json:"description"`
	Case        string `json:"case,omitempty"`
	Number      string `json:"number,omitempty"`
	Person      string `json:"person,omitempty"`
	Article     string `json:"article,omitempty"`
	Tense       string `json:"tense,omitempty"`
	Mood        string `json:"mood,omitempty"`
	Polarity    string `json:"polarity,omitempty"`
}

type analyzeResponse struct {
	Form     string         `json:"form"`
	Analyses []analysisJSON `json:"analyses"`
}

type batchResponse struct {
	Results map[string][]analysisJSON `json:"results"`
}

type generatedJSON struct {
	Surface     string `json:"surface"`
	Description string `json:"description"`
}

type generateResponse struct {
	Lemma string          `json:"lemma"`
	Forms []generatedJSON `json:"forms"`
}

type convertResponse struct {
	Text string `json:"text"`
}

type detectedJSON struct {
	Reformed  string `json:"reformed"`
	Classical string `json:"classical"`
}

type detectResponse struct {
	Words []detectedJSON `json:"words"`
}

type validateResponse struct {
	Form  string `json:"form"`
	Valid bool   `json:"valid"`
}

type suggestResponse struct {
	Form        string   `json:"form"`
	Suggestions []string `json:"suggestions"`
}

type definitionJSON struct {
	POS        string `json:"pos"`
	Definition string `json:"definition"`
}

type defineResponse struct {
	Word    string           `json:"word"`
	Entries []definitionJSON `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func toAnalysesJSON(results []hywmorph.Result) []analysisJSON {
	out := make([]analysisJSON, 0, len(results))
	for _, r := range results {
		f := r.Features()
		out = append(out, analysisJSON{
			Source:      r.Source,
			Form:        r.Form(),
			Lemma:       r.Lemma(),
			POS:         r.POS(),
			Description: r.Description(),
			Case:        f.Case,
			Number:      f.Number,
			Person:      f.Person,
			Article:     f.Article,
			Tense:       f.Tense,
			Mood:        f.Mood,
			Polarity:    f.Polarity,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func queryForm(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return "", false
	}
	form := r.URL.Query().Get("form")
	if form == "" {
		writeError(w, http.StatusBadRequest, "missing 'form' query parameter")
		return "", false
	}
	return form, true
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return "", false
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'text' field")
		return "", false
	}
	return body.Text, true
}

// ---- handlers -----------------------------------------------------------

func handleAnalyze(engine *hywmorph.Engine, all bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := queryForm(w, r)
		if !ok {
			return
		}
		var results []hywmorph.Result
		var err error
		if all {
			results, err = engine.AnalyzeAll(form)
		} else {
			results, err = engine.Analyze(form)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status := http.StatusOK
		if len(results) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, analyzeResponse{Form: form, Analyses: toAnalysesJSON(results)})
	}
}

func handleAnalyzeBatch(engine *hywmorph.Engine, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body struct {
			Forms []string `json:"forms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Forms) == 0 {
			writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'forms' array")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		batch, err := engine.AnalyzeBatch(ctx, body.Forms)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		results := make(map[string][]analysisJSON, len(batch))
		for form, rs := range batch {
			results[form] = toAnalysesJSON(rs)
		}
		writeJSON(w, http.StatusOK, batchResponse{Results: results})
	}
}

func handleGenerate(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		q := r.URL.Query()
		lemma := q.Get("lemma")
		if lemma == "" {
			writeError(w, http.StatusBadRequest, "missing 'lemma' query parameter")
			return
		}
		filter := hywmorph.Features{
			Case:     q.Get("case"),
			Number:   q.Get("number"),
			Person:   q.Get("person"),
			Article:  q.Get("article"),
			Tense:    q.Get("tense"),
			Mood:     q.Get("mood"),
			Polarity: q.Get("polarity"),
		}

		forms := engine.Generate(lemma, filter)
		out := make([]generatedJSON, 0, len(forms))
		for _, gf := range forms {
			out = append(out, generatedJSON{Surface: gf.Surface, Description: gf.Inflection.DisplayNameEn})
		}
		status := http.StatusOK
		if len(out) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, generateResponse{Lemma: lemma, Forms: out})
	}
}

func handleConvert(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, convertResponse{Text: engine.ConvertReformed(text)})
	}
}

func handleDetect(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		detected := engine.DetectReformed(text)
		out := make([]detectedJSON, 0, len(detected))
		for _, d := range detected {
			out = append(out, detectedJSON{Reformed: d.Reformed, Classical: d.Classical})
		}
		writeJSON(w, http.StatusOK, detectResponse{Words: out})
	}
}

func handleValidate(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := queryForm(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{Form: form, Valid: engine.Validate(form)})
	}
}

func handleSuggest(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := queryForm(w, r)
		if !ok {
			return
		}
		suggestions, err := engine.Suggest(form)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if suggestions == nil {
			suggestions = []string{}
		}
		writeJSON(w, http.StatusOK, suggestResponse{Form: form, Suggestions: suggestions})
	}
}

func handleDefine(engine *hywmorph.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		word := r.URL.Query().Get("word")
		if word == "" {
			writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
			return
		}
		entries := engine.LookupDefinition(word)
		out := make([]definitionJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, definitionJSON{POS: e.POS, Definition: e.Definition})
		}
		status := http.StatusOK
		if len(out) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, defineResponse{Word: word, Entries: out})
	}
}

// ---- main ---------------------------------------------------------------

func main() {
	configPath := flag.String("config", "hywmorph.yaml", "path to config file")
	addr := flag.String("addr", ":8080", "listen address")
	batchTimeout := flag.Duration("batch-timeout", 30*time.Second, "timeout per batch analysis request")
	flag.Parse()

	cfg, err := hywmorph.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	engine, err := hywmorph.EngineFromConfig(cfg, nil)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	defer engine.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze/batch", handleAnalyzeBatch(engine, *batchTimeout))
	mux.HandleFunc("/api/analyze/all", handleAnalyze(engine, true))
	mux.HandleFunc("/api/analyze", handleAnalyze(engine, false))
	mux.HandleFunc("/api/generate", handleGenerate(engine))
	mux.HandleFunc("/api/convert", handleConvert(engine))
	mux.HandleFunc("/api/detect", handleDetect(engine))
	mux.HandleFunc("/api/validate", handleValidate(engine))
	mux.HandleFunc("/api/suggest", handleSuggest(engine))
	mux.HandleFunc("/api/define", handleDefine(engine))

	handler := cors.Default().Handler(mux)

	log.Printf("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
