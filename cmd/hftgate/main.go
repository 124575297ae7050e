// Command hftgate ejecuta el gateway entre el broker y el engine de estrategia.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hftgate: %v\n", err)
		os.Exit(exitCode(err))
	}
}
