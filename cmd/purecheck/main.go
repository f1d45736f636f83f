// Command purecheck serves the label analysis API and maintains the guideline index.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
