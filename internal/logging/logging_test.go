package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.WithField("stimulus", 3).Warn("canvas missing")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug output should be suppressed: %s", out)
	}
	if !strings.Contains(out, "canvas missing") || !strings.Contains(out, "stimulus=3") {
		t.Fatalf("warning not logged with fields: %s", out)
	}

	buf.Reset()
	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("verbose logger should emit debug output")
	}
}
