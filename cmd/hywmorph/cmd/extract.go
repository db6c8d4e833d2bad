package cmd

import (
	"fmt"

	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var (
	extractOutput  string
	extractMinFreq int
	extractIndent  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract treebank words missing from the lexicon",
	Long:  "Collects frequent treebank lemmas the lexicon cannot analyze and writes them as a supplementary lexicon document, ready to be listed alongside the main lexicon paths.",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "function-words.json", "output path for the supplement document")
	extractCmd.Flags().IntVar(&extractMinFreq, "min-freq", 3, "minimum lemma frequency to include")
	extractCmd.Flags().BoolVar(&extractIndent, "indent", false, "pretty-print the JSON output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.Treebank == nil {
		return fmt.Errorf("extract needs treebank.paths in the config")
	}
	if engine.Lexicon == nil {
		return fmt.Errorf("extract needs lexicon.paths in the config")
	}

	doc := hywmorph.ExtractMissingWords(engine.Treebank, engine.Lexicon, extractMinFreq)
	if err := doc.WriteJSON(extractOutput, extractIndent); err != nil {
		return err
	}
	fmt.Println(doc.Summary())
	fmt.Printf("\nwritten to %s\n", extractOutput)
	return nil
}
