package clap

import "strings"

// Assemble turns a ranked tag list into a human-readable caption:
// tag names joined by ", " in ranked order. An empty list yields "".
func Assemble(ranked RankedTags) string {
	return strings.Join(ranked.Tags(), ", ")
}
