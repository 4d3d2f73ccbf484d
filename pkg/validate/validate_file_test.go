package validate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestValidateFile_JSON_Auto_OK(t *testing.T) {
	path := writeTemp(t, "one.json", quoteJSON("q-1", "EUR/USD", "1.1", "1.2"))

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), domain.NewQuoteDeserializer(), NewQuoteValidator(), path, FormatAuto, &out, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (Summary{Valid: 1}) {
		t.Fatalf("unexpected summary: %s", summary)
	}
	want := `{"id":"q-1","symbol":"EUR/USD","bid":1.1,"ask":1.2,"timestamp":"2024-03-01T10:15:30Z"}`
	if strings.TrimSpace(out.String()) != want {
		t.Fatalf("canonical output mismatch:\n got=%s\nwant=%s", out.String(), want)
	}
}

func TestValidateFile_JSON_Invalid(t *testing.T) {
	path := writeTemp(t, "bad.json", "not-a-json")

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), domain.NewQuoteDeserializer(), NewQuoteValidator(), path, FormatJSON, &out, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if summary != (Summary{Invalid: 1}) || out.Len() != 0 {
		t.Fatalf("unexpected summary=%q out=%q", summary, out.String())
	}
}

func TestValidateFile_JSONL_Auto_Mixed(t *testing.T) {
	content := quoteJSON("q-1", "EUR/USD", "1.1", "1.2") + "\n" +
		"\n" + // пустая строка пропускается
		quoteJSON("q-2", "EUR/USD", "1.3", "1.2") + "\n" + // ask < bid
		"garbage\n" +
		quoteJSON("q-3", "GBP/USD", "1.25", "1.26") + "\n"
	path := writeTemp(t, "list.jsonl", content)

	var (
		out     bytes.Buffer
		skipped []int
	)
	summary, err := ValidateFile(context.Background(), domain.NewQuoteDeserializer(), NewQuoteValidator(), path, FormatAuto, &out,
		func(line int, err error) {
			if !errors.Is(err, ErrInvalidQuote) && !errors.Is(err, serde.ErrDecode) {
				t.Errorf("line %d: unexpected error kind: %v", line, err)
			}
			skipped = append(skipped, line)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.String() != "2 valid / 2 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(lines))
	}
	if len(skipped) != 2 || skipped[0] != 3 || skipped[1] != 4 {
		t.Fatalf("skipped lines = %v, want [3 4]", skipped)
	}
}

func TestValidateFile_Errors(t *testing.T) {
	deser := domain.NewQuoteDeserializer()
	v := NewQuoteValidator()

	if _, err := ValidateFile(context.Background(), deser, v, filepath.Join(t.TempDir(), "missing.json"), FormatJSON, &bytes.Buffer{}, nil); err == nil {
		t.Fatalf("expected open error")
	}

	path := writeTemp(t, "x.json", "{}")
	if _, err := ValidateFile(context.Background(), deser, v, path, InputFormat("xml"), &bytes.Buffer{}, nil); err == nil ||
		!strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]InputFormat{
		"quotes.jsonl":  FormatJSONL,
		"quotes.NDJSON": FormatJSONL,
		"quote.json":    FormatJSON,
		"noext":         FormatJSON,
		StdinPath:       FormatJSONL,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Fatalf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}
