package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FORM...",
	Short: "Validate forms, with spelling suggestions for misses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, form := range args {
		if engine.Validate(form) {
			fmt.Printf("%s: valid\n", form)
			continue
		}
		suggestions, err := engine.Suggest(form)
		if err != nil {
			return err
		}
		if len(suggestions) > 0 {
			fmt.Printf("%s: invalid, did you mean: %s\n", form, strings.Join(suggestions, ", "))
		} else {
			fmt.Printf("%s: invalid\n", form)
		}
	}
	return nil
}
