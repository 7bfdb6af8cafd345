package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GerritSt/API-discovery-agent/pkg/discovery"
)

func sampleResult() *discovery.Result {
	return &discovery.Result{
		RunID:              "run-123",
		Company:            "Stripe",
		DocumentationURL:   "https://docs.stripe.com/api",
		DocumentationTitle: "Stripe API Reference",
		Endpoints: []discovery.Endpoint{
			{Method: "GET", Path: "/v1/charges", FullEndpoint: "GET /v1/charges", Description: "List charges", Source: "code_block"},
			{Method: "POST", Path: "/v1/charges", FullEndpoint: "POST /v1/charges", Description: "Create a charge", Source: "table"},
		},
		GeneratedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Duration:    3 * time.Second,
		Stats: discovery.Stats{
			ProbesAttempted: 3,
			EndpointsFound:  2,
			ByStrategy:      map[string]int{"code_block": 1, "table": 1},
		},
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, false)

	if err := w.WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	var decoded discovery.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.Company != "Stripe" {
		t.Errorf("got company %q, want Stripe", decoded.Company)
	}
	if len(decoded.Endpoints) != 2 {
		t.Errorf("got %d endpoints, want 2", len(decoded.Endpoints))
	}
	if decoded.Endpoints[0].Source != "code_block" {
		t.Errorf("got source %q, want code_block", decoded.Endpoints[0].Source)
	}
}

func TestJSONWriterPretty(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, true)

	if err := w.WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("pretty output is not indented")
	}
}

func TestJSONWriterClosedWriteIgnored(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, false)
	w.Close()

	if err := w.WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult after Close returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Error("WriteResult after Close produced output")
	}
}

func TestExcelWriterWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewExcelWriter(path)

	if err := w.WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue(sheetEndpoints, "A1")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if title != "Stripe - API Documentation" {
		t.Errorf("got title %q", title)
	}

	docURL, _ := f.GetCellValue(sheetEndpoints, "B3")
	if docURL != "https://docs.stripe.com/api" {
		t.Errorf("got documentation URL %q", docURL)
	}

	header, _ := f.GetCellValue(sheetEndpoints, "A6")
	if header != "Method" {
		t.Errorf("got header %q, want Method", header)
	}

	method, _ := f.GetCellValue(sheetEndpoints, "A7")
	path7, _ := f.GetCellValue(sheetEndpoints, "B7")
	if method != "GET" || path7 != "/v1/charges" {
		t.Errorf("got first data row %q %q", method, path7)
	}

	source, _ := f.GetCellValue(sheetEndpoints, "E8")
	if source != "table" {
		t.Errorf("got source %q, want table", source)
	}

	company, _ := f.GetCellValue(sheetSummary, "B1")
	if company != "Stripe" {
		t.Errorf("got summary company %q", company)
	}
}

func TestExcelWriterPlaceholderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	w := NewExcelWriter(path)

	result := sampleResult()
	result.Endpoints = nil
	if err := w.WriteResult(result); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	method, _ := f.GetCellValue(sheetEndpoints, "A7")
	if method != "N/A" {
		t.Errorf("got %q, want N/A placeholder", method)
	}
}

func TestExcelWriterTracksWrittenFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.xlsx")

	w := NewExcelWriter(path)
	if err := w.WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	files := w.WrittenFiles()
	if len(files) != 1 || files[0] != path {
		t.Fatalf("got written files %v, want [%s]", files, path)
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		company  string
		wantPart string
	}{
		{"Stripe", "Stripe_API_Documentation_"},
		{"Acme Corp", "Acme_Corp_API_Documentation_"},
		{"We/Love\\Slashes", "We_Love_Slashes_API_Documentation_"},
		{"", "company_API_Documentation_"},
	}

	for _, tt := range tests {
		got := DefaultFilename(tt.company, "xlsx")
		if !strings.HasPrefix(got, tt.wantPart) {
			t.Errorf("DefaultFilename(%q) = %q, want prefix %q", tt.company, got, tt.wantPart)
		}
		if !strings.HasSuffix(got, ".xlsx") {
			t.Errorf("DefaultFilename(%q) = %q, want .xlsx suffix", tt.company, got)
		}
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		results int
		wantErr bool
	}{
		{"no fixed path", Config{Format: "xlsx"}, 3, false},
		{"single company", Config{Format: "xlsx", FilePath: "out.xlsx"}, 1, false},
		{"xlsx multiple companies", Config{Format: "xlsx", FilePath: "out.xlsx"}, 2, true},
		{"default format multiple companies", Config{FilePath: "out.xlsx"}, 2, true},
		{"json multiple companies", Config{Format: "json", FilePath: "out.json"}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.config, tt.results)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTarget() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNewWriterFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"xlsx", false},
		{"", false},
		{"csv", true},
	}

	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			w, err := NewWriter(Config{
				Format:   tt.format,
				FilePath: filepath.Join(dir, "out."+tt.format),
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
			if w != nil {
				w.Close()
			}
		})
	}
}
