// Command scriptdeck is the Scriptdeck CLI entry point.
package main

import (
	"os"

	"github.com/jmgilman/scriptdeck/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
