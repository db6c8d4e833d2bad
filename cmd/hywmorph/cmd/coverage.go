package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var (
	coverageMismatches string
	coverageTimeout    time.Duration
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Cross-reference the treebank against the lexicon",
	Long:  "Measures what share of treebank tokens the lexicon can analyze, with the transducer rescuing misses when configured.",
	RunE:  runCoverage,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageMismatches, "mismatches", "", "write the full mismatch lists to this TSV file")
	coverageCmd.Flags().DurationVar(&coverageTimeout, "timeout", 60*time.Second, "transducer batch timeout")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.Treebank == nil {
		return fmt.Errorf("coverage needs treebank.paths in the config")
	}
	if engine.Lexicon == nil {
		return fmt.Errorf("coverage needs lexicon.paths in the config")
	}

	cfg, err := hywmorph.LoadConfig(configPath)
	if err != nil {
		return err
	}
	var trans *hywmorph.Transducer
	if cfg.Transducer.Dir != "" {
		trans = hywmorph.NewTransducer(cfg.Transducer.Dir)
		defer trans.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), coverageTimeout)
	defer cancel()

	report, err := hywmorph.CheckCoverage(ctx, engine.Treebank, engine.Lexicon, trans, nil)
	if err != nil {
		return err
	}
	fmt.Println(report.Summary())

	if coverageMismatches != "" {
		if err := report.WriteMismatches(coverageMismatches); err != nil {
			return err
		}
		fmt.Printf("\nmismatch lists written to %s\n", coverageMismatches)
	}
	return nil
}
