// Package main provides the clapety audio tagging CLI.
//
// Usage:
//
//	clapety [flags] <command> [args]
//
// Commands:
//
//	caption - Caption audio files with ranked tags
//	tags    - Show the active tag vocabulary
//	serve   - Run the captioning HTTP server
//	export  - Export (and optionally publish) a model bundle
//	config  - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.clapety/clapety/
//	Use 'clapety config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/clapety/clapety/cmd/clapety/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
