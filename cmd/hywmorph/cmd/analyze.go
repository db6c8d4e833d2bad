package cmd

import (
	"fmt"

	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var analyzeAll bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze FORM...",
	Short: "Analyze surface forms against the backend chain",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "query every backend, not just the first that matches")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, form := range args {
		var results []hywmorph.Result
		if analyzeAll {
			results, err = engine.AnalyzeAll(form)
		} else {
			results, err = engine.Analyze(form)
		}
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("%s: not found\n", form)
			continue
		}
		fmt.Printf("%s:\n", form)
		for _, r := range results {
			fmt.Printf("  [%s] %s (%s) %s\n", r.Source, r.Lemma(), r.POS(), r.Description())
		}
	}
	return nil
}
