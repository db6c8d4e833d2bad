package hywmorph

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config is the engine configuration, loaded from a YAML file. Every
// section is optional; an absent section simply omits that backend or
// collaborator. Relative paths resolve against the config file's
// directory and may contain glob patterns.
type Config struct {
	Lexicon    LexiconConfig    `yaml:"lexicon"`
	Transducer TransducerConfig `yaml:"transducer"`
	HySpell    HySpellConfig    `yaml:"hyspell"`
	Treebank   TreebankConfig   `yaml:"treebank"`
	Log        LogConfig        `yaml:"log"`
}

// LexiconConfig points at the Nayiri lexicon documents.
type LexiconConfig struct {
	// Paths may glob; matches are merged in sorted order per pattern.
	Paths []string `yaml:"paths"`
}

// TransducerConfig points at the apertium-hyw resource directory.
type TransducerConfig struct {
	Dir string `yaml:"dir"`
}

// HySpellConfig points at the HySpell dictionary root, which holds the
// Dictr orthography tables, the Dictc hunspell dictionary and the
// SmallArmDic glossary.
type HySpellConfig struct {
	Dir string `yaml:"dir"`
}

// TreebankConfig points at the UD ArmTDP .conllu files.
type TreebankConfig struct {
	Paths []string `yaml:"paths"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LoadConfig reads a YAML config file and resolves its paths against
// the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	cfg.Lexicon.Paths = resolveRelative(cfg.Lexicon.Paths, base)
	cfg.Treebank.Paths = resolveRelative(cfg.Treebank.Paths, base)
	cfg.Transducer.Dir = resolveOne(cfg.Transducer.Dir, base)
	cfg.HySpell.Dir = resolveOne(cfg.HySpell.Dir, base)
	return cfg, nil
}

func resolveOne(p, base string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func resolveRelative(paths []string, base string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolveOne(p, base)
	}
	return out
}

// expandPaths expands glob patterns into existing files, keeping
// non-pattern paths as-is. Matches of one pattern come out sorted.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", p, err)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// NewLogger builds a text logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// EngineFromConfig builds an engine from a configuration. A
// collaborator whose resources are missing is logged and skipped; the
// engine still constructs with everything that loaded. A configured
// lexicon that fails to parse is an error, since silently dropping
// the primary backend would misrepresent every later answer.
func EngineFromConfig(cfg *Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = NewLogger(cfg.Log.Level)
	}
	engine := NewEngine(logger)

	if len(cfg.Lexicon.Paths) > 0 {
		paths, err := expandPaths(cfg.Lexicon.Paths)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			logger.Warn("lexicon paths matched no files", "patterns", cfg.Lexicon.Paths)
		} else {
			lex, err := LexiconFromFiles(paths...)
			if err != nil {
				return nil, err
			}
			logger.Info("lexicon loaded", "files", len(paths), "lexemes", lex.NumLexemes(), "forms", lex.NumWordForms())
			engine.Lexicon = lex
			engine.AddBackend("nayiri", NewLexiconBackend(lex))
		}
	}

	if cfg.Transducer.Dir != "" {
		trans := NewTransducer(cfg.Transducer.Dir)
		if trans.Available() {
			logger.Info("transducer available", "dir", cfg.Transducer.Dir)
			engine.AddBackend("apertium", trans)
		} else {
			logger.Warn("transducer unavailable, skipping", "dir", cfg.Transducer.Dir)
		}
	}

	if cfg.HySpell.Dir != "" {
		conv, err := NewOrthographyConverter(cfg.HySpell.Dir)
		if err != nil {
			logger.Warn("orthography tables failed to load, skipping", "dir", cfg.HySpell.Dir, "error", err)
		} else {
			engine.Converter = conv
		}

		spell := NewSpellChecker(filepath.Join(cfg.HySpell.Dir, "Dictc"))
		if spell.Available() {
			engine.Spell = spell
		} else {
			logger.Warn("spell checker unavailable, skipping", "dir", cfg.HySpell.Dir)
		}

		glossPath := filepath.Join(cfg.HySpell.Dir, "SmallArmDic.txt")
		if _, err := os.Stat(glossPath); err == nil {
			gloss, err := GlossaryFromFile(glossPath)
			if err != nil {
				logger.Warn("glossary failed to load, skipping", "path", glossPath, "error", err)
			} else {
				logger.Info("glossary loaded", "headwords", gloss.NumHeadwords())
				engine.Gloss = gloss
			}
		} else {
			logger.Warn("glossary file not found, skipping", "path", glossPath)
		}
	}

	if len(cfg.Treebank.Paths) > 0 {
		paths, err := expandPaths(cfg.Treebank.Paths)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			logger.Warn("treebank paths matched no files", "patterns", cfg.Treebank.Paths)
		} else {
			tb, err := TreebankFromFiles(paths...)
			if err != nil {
				logger.Warn("treebank failed to load, skipping", "error", err)
			} else {
				logger.Info("treebank loaded", "sentences", tb.Len(), "tokens", tb.TokenCount())
				engine.Treebank = tb
			}
		}
	}

	return engine, nil
}
