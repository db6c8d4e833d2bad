package cmd

import (
	"fmt"
	"strings"

	"github.com/armenian-nlp/hywmorph"
	"github.com/spf13/cobra"
)

var romanizeAll bool

var romanizeCmd = &cobra.Command{
	Use:   "romanize TEXT...",
	Short: "Convert Latin-typed Western Armenian to Armenian script",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRomanize,
}

func init() {
	romanizeCmd.Flags().BoolVar(&romanizeAll, "all", false, "list every candidate per word instead of the first")
}

func runRomanize(cmd *cobra.Command, args []string) error {
	rom := hywmorph.NewRomanizer()

	if !romanizeAll {
		fmt.Println(rom.RomanizeText(strings.Join(args, " ")))
		return nil
	}
	for _, word := range args {
		fmt.Printf("%s:\n", word)
		for _, cand := range rom.RomanizeWord(word) {
			fmt.Printf("  %s\n", cand)
		}
	}
	return nil
}
