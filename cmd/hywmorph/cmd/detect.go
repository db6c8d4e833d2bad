package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect TEXT...",
	Short: "Find Reformed-orthography words in text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	words := engine.DetectReformed(strings.Join(args, " "))
	if len(words) == 0 {
		fmt.Println("no reformed spellings found")
		return nil
	}
	for _, w := range words {
		fmt.Printf("  %-25s -> %s\n", w.Reformed, w.Classical)
	}
	return nil
}
