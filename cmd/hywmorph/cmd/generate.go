package cmd

import (
	"fmt"

	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var genFilter hywmorph.Features

var generateCmd = &cobra.Command{
	Use:   "generate LEMMA",
	Short: "Generate surface forms for a lemma",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genFilter.Case, "case", "", "grammatical case, e.g. ABLATIVE")
	generateCmd.Flags().StringVar(&genFilter.Number, "number", "", "grammatical number, e.g. SINGULAR")
	generateCmd.Flags().StringVar(&genFilter.Person, "person", "", "grammatical person, e.g. FIRST")
	generateCmd.Flags().StringVar(&genFilter.Article, "article", "", "article, e.g. DEFINITE")
	generateCmd.Flags().StringVar(&genFilter.Tense, "tense", "", "verb tense")
	generateCmd.Flags().StringVar(&genFilter.Mood, "mood", "", "verb mood")
	generateCmd.Flags().StringVar(&genFilter.Polarity, "polarity", "", "verb polarity")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	forms := engine.Generate(args[0], genFilter)
	if len(forms) == 0 {
		fmt.Printf("no forms for %q\n", args[0])
		return nil
	}
	seen := make(map[string]bool)
	for _, gf := range forms {
		key := gf.Surface + "\x00" + gf.Inflection.DisplayNameEn
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Printf("  %-30s %s\n", gf.Surface, gf.Inflection.DisplayNameEn)
	}
	return nil
}
