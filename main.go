// ABOUTME: Entry point for the formationsgest CLI
// ABOUTME: Command-line and terminal client for the FormationsGest training-center API

package main

import (
	"fmt"
	"os"

	"github.com/markalston/formationsgest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
