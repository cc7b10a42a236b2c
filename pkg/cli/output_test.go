package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type outputRecord struct {
	MessageID string `json:"message_id" yaml:"message_id"`
	URI       string `json:"uri" yaml:"uri"`
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(outputRecord{MessageID: "m1", URI: "u1"}, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got["message_id"] != "m1" {
		t.Fatalf("got %v", got)
	}
}

func TestOutput_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(outputRecord{MessageID: "m1", URI: "u1"}, OutputOptions{Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "message_id: m1") {
		t.Fatalf("YAML = %q", buf.String())
	}
}

func TestOutput_Raw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain text" {
		t.Fatalf("raw = %q", buf.String())
	}
	if err := Output(1, OutputOptions{Format: "xml", Writer: &buf}); err == nil {
		t.Fatal("unsupported format accepted")
	}
}

func TestOutput_Query(t *testing.T) {
	records := []outputRecord{{"m1", "u1"}, {"m2", "u2"}}

	var buf bytes.Buffer
	if err := Output(records, OutputOptions{Writer: &buf, Query: ".[].uri"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "u1\nu2\n" {
		t.Fatalf("query output = %q", buf.String())
	}

	buf.Reset()
	if err := Output(records, OutputOptions{Format: FormatJSON, Writer: &buf, Query: "map(.message_id)"}); err != nil {
		t.Fatal(err)
	}
	var ids []string
	if err := json.Unmarshal(buf.Bytes(), &ids); err != nil || len(ids) != 2 || ids[1] != "m2" {
		t.Fatalf("ids = %v (%v)", ids, err)
	}

	if err := Output(records, OutputOptions{Writer: &buf, Query: ".[["}); err == nil {
		t.Fatal("invalid query accepted")
	}
	if _, err := Query(records, ".[0].uri | tonumber"); err == nil {
		t.Fatal("runtime jq error not returned")
	}
}

func TestOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Output(outputRecord{MessageID: "m"}, OutputOptions{Format: FormatJSON, File: path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), `"message_id": "m"`) {
		t.Fatalf("file = %q (%v)", data, err)
	}
}
