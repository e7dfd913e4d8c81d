package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("WritesToGivenWriter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("NilWriterDefaults", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger for nil writer")
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 36 {
			t.Fatalf("expected 36-char uuid, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("UnsupportedPlatform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		t.Setenv("BROWSER", "")

		if err := OpenBrowser("http://example.com"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})

	t.Run("BrowserOverride", func(t *testing.T) {
		t.Setenv("BROWSER", "true")

		if err := OpenBrowser("http://example.com"); err != nil {
			t.Errorf("expected BROWSER override to start, got %v", err)
		}
	})
}
