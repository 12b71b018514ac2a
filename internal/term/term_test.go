package term

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRegularFileIsNotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
	if ColorEnabled(f) {
		t.Error("colour enabled for a regular file")
	}
}

func TestColorDisabledForBuffers(t *testing.T) {
	if ColorEnabled(&bytes.Buffer{}) {
		t.Error("colour enabled for a buffer")
	}
}

func TestNilFile(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("nil file reported as terminal")
	}
}

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(os.Stderr) {
		t.Error("NO_COLOR must disable colour")
	}
}
