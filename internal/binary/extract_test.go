package binary

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExtractor_ExtractZip(t *testing.T) {
	tmp := t.TempDir()
	archive := writeTempFile(t, tmp, "slv_linux_amd64.zip", makeZip(t, []archiveEntry{
		{name: "docs", dir: true},
		{name: "slv", content: "#!/bin/sh\n", mode: 0755},
		{name: "docs/README.md", content: "readme"},
	}))
	dest := filepath.Join(tmp, "out")

	if err := NewExtractor().Extract(archive, dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "docs", "README.md"))
	if err != nil || string(data) != "readme" {
		t.Fatalf("README.md = %q, %v", data, err)
	}
	info, err := os.Stat(filepath.Join(dest, "slv"))
	if err != nil {
		t.Fatalf("stat slv: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		t.Errorf("slv mode = %v, want executable", info.Mode())
	}
}

func TestExtractor_ExtractTarGz(t *testing.T) {
	tmp := t.TempDir()
	archive := writeTempFile(t, tmp, "slv_linux_amd64.tar.gz", makeTarGz(t, []archiveEntry{
		{name: "bin", dir: true},
		{name: "bin/slv", content: "binary", mode: 0755},
	}))
	dest := filepath.Join(tmp, "out")

	if err := NewExtractor().Extract(archive, dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "bin", "slv"))
	if err != nil || string(data) != "binary" {
		t.Fatalf("bin/slv = %q, %v", data, err)
	}
}

func TestExtractor_PathTraversal(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		file string
	}{
		{
			name: "zip",
			file: "evil.zip",
			data: func(t *testing.T) []byte {
				return makeZip(t, []archiveEntry{{name: "../escape", content: "x"}})
			},
		},
		{
			name: "tar.gz",
			file: "evil.tar.gz",
			data: func(t *testing.T) []byte {
				return makeTarGz(t, []archiveEntry{{name: "../../escape", content: "x"}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			archive := writeTempFile(t, tmp, tt.file, tt.data(t))
			dest := filepath.Join(tmp, "nested", "out")

			err := NewExtractor().Extract(archive, dest)
			if err == nil || !strings.Contains(err.Error(), "illegal file path") {
				t.Fatalf("expected illegal file path error, got %v", err)
			}
			if _, err := os.Stat(filepath.Join(tmp, "nested", "escape")); !os.IsNotExist(err) {
				t.Error("file escaped the destination directory")
			}
		})
	}
}

func TestExtractor_UnsupportedFormat(t *testing.T) {
	tmp := t.TempDir()
	archive := writeTempFile(t, tmp, "slv.rar", []byte("data"))
	if err := NewExtractor().Extract(archive, filepath.Join(tmp, "out")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestExtractor_CorruptArchive(t *testing.T) {
	tmp := t.TempDir()
	archive := writeTempFile(t, tmp, "slv.zip", []byte("not a zip"))
	if err := NewExtractor().Extract(archive, filepath.Join(tmp, "out")); err == nil {
		t.Fatal("expected error for corrupt archive")
	}
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"plain file", "slv", false},
		{"nested", "a/b/c", false},
		{"dot", "./slv", false},
		{"parent", "../slv", true},
		{"sneaky parent", "a/../../slv", true},
		{"sibling prefix", "../dest-evil/slv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safeJoin(dest, tt.entry)
			if (err != nil) != tt.wantErr {
				t.Errorf("safeJoin(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
		})
	}
}
