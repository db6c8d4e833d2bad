package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var defineCmd = &cobra.Command{
	Use:   "define WORD...",
	Short: "Look up glossary definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDefine,
}

func runDefine(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, word := range args {
		entries := engine.LookupDefinition(word)
		if len(entries) == 0 {
			fmt.Printf("%s: not found\n", word)
			continue
		}
		fmt.Printf("%s:\n", word)
		for _, e := range entries {
			fmt.Printf("  [%s] %s\n", e.POS, e.Definition)
		}
	}
	return nil
}
