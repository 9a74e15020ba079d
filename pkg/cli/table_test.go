package cli

import (
	"strings"
	"testing"
)

func TestCaptionTable(t *testing.T) {
	rows := []CaptionRow{
		{File: "clip.wav", Caption: "speech, music"},
		{File: "broken.mp3", Caption: "could not decode audio", Err: true},
	}

	out := CaptionTable(rows)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "FILE") || !strings.Contains(lines[0], "CAPTION") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "clip.wav") || !strings.Contains(lines[1], "speech, music") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "broken.mp3") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestCaptionTableEmpty(t *testing.T) {
	out := CaptionTable(nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("empty table should only have the header, got %d lines", len(lines))
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Errorf("pad should not truncate, got %q", got)
	}
}
