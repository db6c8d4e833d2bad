// hywmorph is a Western Armenian morphological toolkit: lexicon
// analysis and generation, transducer fallback, orthography
// conversion and treebank coverage checks.
package main

import (
	"fmt"
	"os"

	"github.com/armenian-nlp/hywmorph/cmd/hywmorph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
