// Package cli provides common utilities for clapety command-line tools.
//
// This package includes:
//   - Configuration management (contexts, similar to kubectl)
//   - Output formatting (JSON, YAML, raw)
//   - Styled terminal tables for caption results
//
// Configuration is stored in the ~/.clapety/<app>/ directory.
//
// Example usage:
//
//	// Initialize config for your app
//	cfg, err := cli.LoadConfig("clapety")
//
//	// Get current context
//	ctx, err := cfg.GetCurrentContext()
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
