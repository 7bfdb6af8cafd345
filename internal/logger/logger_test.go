package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  level,
		Pretty: false,
		Output: &buf,
	})
	return log, &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(InfoLevel)

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message not logged")
	}
}

func TestStructuredFields(t *testing.T) {
	log, buf := newBufferLogger(DebugLevel)

	log.WithComponent("locator").WithCompany("stripe").WithURL("https://api.stripe.com").Info("probing")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"component", "locator"},
		{"company", "stripe"},
		{"url", "https://api.stripe.com"},
		{"message", "probing"},
	}
	for _, tt := range tests {
		if got, _ := entry[tt.key].(string); got != tt.want {
			t.Errorf("field %q = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestProbeEvent(t *testing.T) {
	log, buf := newBufferLogger(DebugLevel)

	log.ProbeEvent("https://docs.acme.com", 200, 0)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["url"] != "https://docs.acme.com" {
		t.Errorf("url field = %v", entry["url"])
	}
	if code, _ := entry["status_code"].(float64); int(code) != 200 {
		t.Errorf("status_code field = %v", entry["status_code"])
	}
}

func TestExtractionEvent(t *testing.T) {
	log, buf := newBufferLogger(DebugLevel)

	log.ExtractionEvent("code_block", 7)

	out := buf.String()
	if !strings.Contains(out, "code_block") {
		t.Error("strategy field missing from extraction event")
	}
	if !strings.Contains(out, "7") {
		t.Error("endpoint count missing from extraction event")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"info", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"bogus", InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err=%v, wantErr=%v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	log, buf := newBufferLogger(ErrorLevel)

	log.Info("dropped")
	log.SetLevel(InfoLevel)
	log.Info("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("message logged below the configured level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("message missing after SetLevel")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := Global()
	defer SetGlobal(original)

	var buf bytes.Buffer
	SetGlobal(New(Config{Level: InfoLevel, Pretty: false, Output: &buf}))

	Info("via global")

	if !strings.Contains(buf.String(), "via global") {
		t.Error("global logger did not write")
	}
}
