package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(l) {
			t.Errorf("ValidLevel(%q) = false", l)
		}
	}
	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) = true")
	}
}

func TestInitWriter_JSONComponents(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "debug", true, ""); err != nil {
		t.Fatalf("InitWriter() error: %v", err)
	}
	defer InitWriter(os.Stderr, "info", false, "")

	Session.Info().Str("type", "segwit").Msg("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if entry["component"] != "session" {
		t.Errorf("component = %v, want session", entry["component"])
	}
	if entry["message"] != "started" {
		t.Errorf("message = %v, want started", entry["message"])
	}
}

func TestInitWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "warn", true, ""); err != nil {
		t.Fatalf("InitWriter() error: %v", err)
	}
	defer InitWriter(os.Stderr, "info", false, "")

	Wallet.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	Wallet.Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %q", buf.String())
	}
}

func TestInitWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedsim.log")
	var buf bytes.Buffer
	if err := InitWriter(&buf, "info", false, path); err != nil {
		t.Fatalf("InitWriter() error: %v", err)
	}
	defer InitWriter(os.Stderr, "info", false, "")

	CLI.Info().Msg("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"component":"cli"`) {
		t.Errorf("file log missing component: %q", data)
	}
}

func TestWithSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := WithSessionID(NewJSONLogger(&buf, "info"), "abc")
	l.Info().Msg("x")
	if !strings.Contains(buf.String(), `"session_id":"abc"`) {
		t.Errorf("missing session_id: %q", buf.String())
	}
}
