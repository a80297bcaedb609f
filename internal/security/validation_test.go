package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		base    string
		wantErr bool
	}{
		{"plain file", "tokens.json", "build", false},
		{"nested file", "css/tokens.css", "build", false},
		{"current dir base", "tokens.json", ".", false},
		{"dotted name", "tokens..json", "build", false},
		{"empty", "", "build", true},
		{"parent", "../tokens.json", "build", true},
		{"nested parent", "css/../../tokens.json", "build", true},
		{"absolute", "/etc/passwd", "build", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path, tt.base)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q, %q) error = %v, wantErr %v", tt.path, tt.base, err, tt.wantErr)
			}
		})
	}
}

func TestResolveHostPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not checked on windows")
	}
	dir := t.TempDir()

	exe := filepath.Join(dir, "host")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveHostPath(exe)
	if err != nil {
		t.Fatalf("ResolveHostPath(%q) error = %v", exe, err)
	}
	if got != exe {
		t.Errorf("ResolveHostPath(%q) = %q", exe, got)
	}

	for _, path := range []string{"", plain, dir, filepath.Join(dir, "missing")} {
		if _, err := ResolveHostPath(path); err == nil {
			t.Errorf("ResolveHostPath(%q) expected error", path)
		}
	}
}
