package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type testRequest struct {
	Prompt     string `json:"prompt" yaml:"prompt"`
	Variations []int  `json:"variations" yaml:"variations"`
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		wantErr  bool
	}{
		{"yaml", "req.yaml", "prompt: a red fox\nvariations: [0, 3]\n", false},
		{"json", "req.json", `{"prompt":"a red fox","variations":[0,3]}`, false},
		{"unknown extension", "req.txt", `{"prompt":"a red fox","variations":[0,3]}`, false},
		{"bad json", "req.json", `{"prompt":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req testRequest
			err := ParseRequest([]byte(tt.data), tt.filename, &req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if req.Prompt != "a red fox" || len(req.Variations) != 2 || req.Variations[1] != 3 {
				t.Fatalf("req = %+v", req)
			}
		})
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yml")
	if err := os.WriteFile(path, []byte("prompt: fox\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var req testRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatal(err)
	}
	if req.Prompt != "fox" {
		t.Fatalf("Prompt = %q", req.Prompt)
	}
	if err := LoadRequest(filepath.Join(t.TempDir(), "missing.yaml"), &req); err == nil {
		t.Fatal("missing file accepted")
	}
}
