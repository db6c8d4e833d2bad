package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert TEXT...",
	Short: "Convert Reformed-orthography text to Classical",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Println(engine.ConvertReformed(strings.Join(args, " ")))
	return nil
}
