package clap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// A Sink receives caption records as a batch produces them.
type Sink interface {
	Write(rec *CaptionRecord) error
	Close() error
}

// IsJSONLPath reports whether path names a JSON Lines output
// (.jsonl or .ndjson).
func IsJSONLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return true
	}
	return false
}

// JSONLSink writes one JSON object per record, newline-delimited.
type JSONLSink struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLSink writes records to w. If w is an io.Closer, Close closes it.
func NewJSONLSink(w io.Writer) *JSONLSink {
	s := &JSONLSink{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// CreateJSONLSink creates (or truncates) the file at path and returns a
// sink writing to it.
func CreateJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("clap: create output: %w", err)
	}
	return NewJSONLSink(f), nil
}

func (s *JSONLSink) Write(rec *CaptionRecord) error {
	return s.enc.Encode(rec)
}

func (s *JSONLSink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// TextDirSink writes each caption as a sidecar .txt file named after the
// source clip. Existing sidecars are left alone unless Overwrite is set;
// skipped paths are collected for reporting.
type TextDirSink struct {
	// Dir is the output directory. Empty means alongside the source file.
	Dir string

	// Overwrite replaces existing sidecar files instead of skipping them.
	Overwrite bool

	// Skipped collects sidecar paths left untouched because they already
	// existed.
	Skipped []string
}

// SidecarPath returns the .txt path for the given source clip.
func (s *TextDirSink) SidecarPath(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".txt"
	if s.Dir == "" {
		return filepath.Join(filepath.Dir(file), base)
	}
	return filepath.Join(s.Dir, base)
}

func (s *TextDirSink) Write(rec *CaptionRecord) error {
	path := s.SidecarPath(rec.File)
	if !s.Overwrite {
		if _, err := os.Stat(path); err == nil {
			s.Skipped = append(s.Skipped, path)
			return nil
		}
	}
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("clap: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(rec.Caption+"\n"), 0o644); err != nil {
		return fmt.Errorf("clap: write sidecar: %w", err)
	}
	return nil
}

func (s *TextDirSink) Close() error { return nil }
