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
	"strings"
	"syscall"
)

// Hunspell pipe-mode result lines:
//
//	*                       correct
//	+ root                  correct (root compound)
//	- root                  correct (affix rule)
//	& word N offset: s1, s2 misspelled with suggestions
//	# word offset           misspelled, no suggestions
var suggestRe = regexp.MustCompile(`^& \S+ \d+ \d+: (.+)$`)

// SpellChecker wraps the hunspell CLI in pipe mode over the HySpell
// Classical Armenian dictionary (hy-c.aff and hy-c.dic). Single-word
// queries share one persistent process; batch queries shell out once
// per call.
//
// A SpellChecker missing its binary or dictionary files reports
// Available() == false and treats every word as invalid with no
// suggestions. Not safe for concurrent use.
type SpellChecker struct {
	dictDir      string
	affPath      string
	dicPath      string
	dictBase     string
	hunspellPath string

	available bool

	proc   *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// NewSpellChecker prepares a spell checker over the dictionary
// directory. It never fails: an unusable installation yields an
// unavailable checker.
func NewSpellChecker(dictDir string) *SpellChecker {
	sc := &SpellChecker{
		dictDir:  dictDir,
		affPath:  filepath.Join(dictDir, "hy-c.aff"),
		dicPath:  filepath.Join(dictDir, "hy-c.dic"),
		dictBase: filepath.Join(dictDir, "hy-c"),
	}
	path, err := exec.LookPath("hunspell")
	if err != nil {
		return sc
	}
	sc.hunspellPath = path
	if _, err := os.Stat(sc.affPath); err != nil {
		return sc
	}
	if _, err := os.Stat(sc.dicPath); err != nil {
		return sc
	}
	sc.available = true
	return sc
}

// Available reports whether hunspell and both dictionary files were
// found.
func (sc *SpellChecker) Available() bool { return sc.available }

func (sc *SpellChecker) args() []string {
	return []string{"-a", "-i", "UTF-8", "-d", sc.dictBase}
}

func (sc *SpellChecker) ensureProc() error {
	if sc.proc != nil && sc.proc.Process != nil {
		if sc.proc.Process.Signal(syscall.Signal(0)) == nil {
			return nil
		}
		sc.killProc()
	}
	cmd := exec.Command(sc.hunspellPath, sc.args()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("hunspell stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("hunspell stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start hunspell: %w", err)
	}
	sc.proc = cmd
	sc.stdin = stdin
	sc.stdout = bufio.NewReader(stdout)
	// Discard the version banner line.
	if _, err := sc.stdout.ReadString('\n'); err != nil {
		sc.killProc()
		return fmt.Errorf("hunspell banner: %w", err)
	}
	return nil
}

func (sc *SpellChecker) killProc() {
	if sc.proc == nil {
		return
	}
	if sc.stdin != nil {
		sc.stdin.Close()
	}
	if sc.proc.Process != nil {
		sc.proc.Process.Kill()
	}
	sc.proc.Wait()
	sc.proc = nil
	sc.stdin = nil
	sc.stdout = nil
}

// queryOne sends one word and returns its result line. The process is
// respawned and the query retried once on I/O failure.
func (sc *SpellChecker) queryOne(form string) (string, error) {
	line, err := sc.tryQuery(form)
	if err == nil {
		return line, nil
	}
	sc.killProc()
	line, err = sc.tryQuery(form)
	if err != nil {
		return "", fmt.Errorf("hunspell query %q: %w", form, err)
	}
	return line, nil
}

func (sc *SpellChecker) tryQuery(form string) (string, error) {
	if err := sc.ensureProc(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(sc.stdin, form+"\n"); err != nil {
		return "", err
	}
	result, err := sc.stdout.ReadString('\n')
	if err != nil {
		return "", err
	}
	result = strings.TrimRight(result, "\n")
	// Each query is followed by a blank line.
	if _, err := sc.stdout.ReadString('\n'); err != nil {
		return "", err
	}
	return result, nil
}

func isCorrectLine(line string) bool {
	return strings.HasPrefix(line, "*") ||
		strings.HasPrefix(line, "+") ||
		strings.HasPrefix(line, "-")
}

func parseSuggestions(line string) []string {
	m := suggestRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	suggestions := make([]string, 0, len(parts))
	for _, s := range parts {
		suggestions = append(suggestions, strings.TrimSpace(s))
	}
	return suggestions
}

// Check reports whether the word is valid per the Hunspell dictionary.
func (sc *SpellChecker) Check(form string) (bool, error) {
	if !sc.available {
		return false, nil
	}
	line, err := sc.queryOne(form)
	if err != nil {
		return false, err
	}
	return isCorrectLine(line), nil
}

// Suggest returns spelling suggestions for a word. A correct word, or
// one with no suggestions, yields an empty list.
func (sc *SpellChecker) Suggest(form string) ([]string, error) {
	if !sc.available {
		return nil, nil
	}
	line, err := sc.queryOne(form)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(line), nil
}

// CheckAndSuggest checks a word and returns suggestions when it is
// invalid.
func (sc *SpellChecker) CheckAndSuggest(form string) (bool, []string, error) {
	if !sc.available {
		return false, nil, nil
	}
	line, err := sc.queryOne(form)
	if err != nil {
		return false, nil, err
	}
	if isCorrectLine(line) {
		return true, nil, nil
	}
	return false, parseSuggestions(line), nil
}

// CheckBatch validates many words with a single one-shot hunspell
// invocation bounded by ctx.
func (sc *SpellChecker) CheckBatch(ctx context.Context, forms []string) (map[string]bool, error) {
	unique, lines, err := sc.runBatch(ctx, forms)
	if err != nil || lines == nil {
		return map[string]bool{}, err
	}
	results := make(map[string]bool, len(unique))
	for i, line := range lines {
		if i >= len(unique) {
			break
		}
		results[unique[i]] = isCorrectLine(line)
	}
	return results, nil
}

// SuggestBatch gathers suggestions for many words in one invocation.
func (sc *SpellChecker) SuggestBatch(ctx context.Context, forms []string) (map[string][]string, error) {
	unique, lines, err := sc.runBatch(ctx, forms)
	if err != nil || lines == nil {
		return map[string][]string{}, err
	}
	results := make(map[string][]string, len(unique))
	for i, line := range lines {
		if i >= len(unique) {
			break
		}
		results[unique[i]] = parseSuggestions(line)
	}
	return results, nil
}

// runBatch runs hunspell once over the deduplicated forms and returns
// the non-blank result lines after the banner, one per word in input
// order.
func (sc *SpellChecker) runBatch(ctx context.Context, forms []string) ([]string, []string, error) {
	if !sc.available || len(forms) == 0 {
		return nil, nil, nil
	}
	unique := make([]string, 0, len(forms))
	seen := make(map[string]bool, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}

	cmd := exec.CommandContext(ctx, sc.hunspellPath, sc.args()...)
	cmd.Stdin = strings.NewReader(strings.Join(unique, "\n") + "\n")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("hunspell batch: %w", ctx.Err())
		}
		return nil, nil, fmt.Errorf("hunspell batch: %w", err)
	}

	raw := strings.Split(string(out), "\n")
	var lines []string
	for i, line := range raw {
		if i == 0 || line == "" {
			// Skip the banner and the blank separators.
			continue
		}
		lines = append(lines, line)
	}
	return unique, lines, nil
}

// Close shuts down the persistent process. Safe to call repeatedly.
func (sc *SpellChecker) Close() error {
	sc.killProc()
	return nil
}

// Summary describes the spell checker installation.
func (sc *SpellChecker) Summary() string {
	var b strings.Builder
	b.WriteString("HySpell spell checker (Classical Armenian)\n")
	fmt.Fprintf(&b, "  Dictionary: %s\n", sc.dictDir)
	fmt.Fprintf(&b, "  Available:  %v", sc.available)
	if sc.available {
		fmt.Fprintf(&b, "\n  Affix file: %s", filepath.Base(sc.affPath))
		fmt.Fprintf(&b, "\n  Dict file:  %s", filepath.Base(sc.dicPath))
	} else {
		if sc.hunspellPath == "" {
			b.WriteString("\n  Problem:    hunspell not found in PATH")
		}
		if _, err := os.Stat(sc.affPath); err != nil {
			fmt.Fprintf(&b, "\n  Problem:    %s not found", sc.affPath)
		}
		if _, err := os.Stat(sc.dicPath); err != nil {
			fmt.Fprintf(&b, "\n  Problem:    %s not found", sc.dicPath)
		}
	}
	return b.String()
}
