package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

type record struct {
	File    string   `json:"file" yaml:"file"`
	Caption string   `json:"caption" yaml:"caption"`
	Tags    []string `json:"tags" yaml:"tags"`
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	in := record{File: "clip.wav", Caption: "speech, music", Tags: []string{"speech", "music"}}

	err := Output(in, OutputOptions{Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}

	var out record
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.File != in.File || out.Caption != in.Caption || len(out.Tags) != 2 {
		t.Errorf("round trip = %+v", out)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer

	// Empty format selects YAML.
	err := Output(record{File: "clip.wav"}, OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}

	var out record
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if out.File != "clip.wav" {
		t.Errorf("file = %q", out.File)
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("raw string = %q", buf.String())
	}

	buf.Reset()
	if err := Output([]byte{0x01, 0x02}, OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x01, 0x02}) {
		t.Errorf("raw bytes = %v", buf.Bytes())
	}
}

func TestOutputUnsupportedFormat(t *testing.T) {
	err := Output("x", OutputOptions{Format: "csv", Writer: &bytes.Buffer{}})
	if err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	err := Output(record{File: "clip.wav"}, OutputOptions{Format: FormatJSON, File: path})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON in file: %v", err)
	}
	if out.File != "clip.wav" {
		t.Errorf("file = %q", out.File)
	}
}

func TestOutputWriterOverridesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "ignored.yaml")

	err := Output(record{File: "a"}, OutputOptions{File: path, Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("writer should receive the output")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not be created when a writer is set")
	}
}

func TestOutputCustomIndent(t *testing.T) {
	var buf bytes.Buffer
	err := Output(record{File: "a"}, OutputOptions{Format: FormatJSON, Indent: "\t", Writer: &buf})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n\t") {
		t.Errorf("output should use tab indent:\n%s", buf.String())
	}
}
