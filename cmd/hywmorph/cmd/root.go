package cmd

import (
	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hywmorph",
	Short: "Western Armenian morphological toolkit",
	Long:  "Morphological analysis, generation, orthography conversion and coverage checks for Western Armenian.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "hywmorph.yaml", "path to config file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(defineCmd)
	rootCmd.AddCommand(romanizeCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(summaryCmd)
}

// loadEngine builds the engine from the configured file. The caller
// owns the Close.
func loadEngine() (*hywmorph.Engine, error) {
	cfg, err := hywmorph.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return hywmorph.EngineFromConfig(cfg, nil)
}
