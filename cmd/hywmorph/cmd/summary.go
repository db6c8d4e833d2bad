package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Describe the configured backends and resources",
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Println(engine.Summary())
	if engine.Lexicon != nil {
		fmt.Println("\n[lexicon]")
		fmt.Println(engine.Lexicon.Summary())
	}
	if engine.Treebank != nil {
		fmt.Println("\n[treebank]")
		fmt.Println(engine.Treebank.Summary())
	}
	if engine.Converter != nil {
		fmt.Println("\n[orthography]")
		fmt.Println(engine.Converter.Summary())
	}
	if engine.Spell != nil {
		fmt.Println("\n[spelling]")
		fmt.Println(engine.Spell.Summary())
	}
	if engine.Gloss != nil {
		fmt.Println("\n[glossary]")
		fmt.Println(engine.Gloss.Summary())
	}
	return nil
}
