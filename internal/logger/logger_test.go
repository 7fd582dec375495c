package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  template  ", Value: "  software_engineer  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "template" || fields[0].String != "software_engineer" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestSelectionFields(t *testing.T) {
	fields := SelectionFields("data_scientist", "")
	if len(fields) != 1 || fields[0].Key != FieldTemplate {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	if got := SelectionFields("", ""); len(got) != 0 {
		t.Fatalf("expected no fields, got %d", len(got))
	}
}

func TestWithAPI(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAPI(zap.New(core), "http://localhost:8000").Info("probe")

	if got := observed.All()[0].ContextMap()[FieldAPIURL]; got != "http://localhost:8000" {
		t.Fatalf("unexpected api url field %q", got)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "returns empty when limit non-positive", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates and adds ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "trims surrounding whitespace", input: "  spaced  ", limit: 5, expect: "space..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestScrubPII(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "email", input: "mail jane.doe+cv@example.co.uk now", expect: "mail [email] now"},
		{name: "phone", input: "call +1 (555) 123-4567 today", expect: "call [phone] today"},
		{name: "year is kept", input: "since 2023", expect: "since 2023"},
		{name: "local phone", input: "call 555-123-4567", expect: "call [phone]"},
		{name: "parenthesised phone", input: "(555) 123-4567 mobile", expect: "[phone] mobile"},
		{name: "date range is kept", input: "Acme 2019 - 2023", expect: "Acme 2019 - 2023"},
		{name: "iso date is kept", input: "from 2023-01-15", expect: "from 2023-01-15"},
		{name: "version is kept", input: "go 1.22.3 and k8s 1.29.0", expect: "go 1.22.3 and k8s 1.29.0"},
		{name: "empty", input: "", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ScrubPII(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("reach me at a@b.io please", 12); got != "reach me at ..." {
		t.Fatalf("unexpected preview %q", got)
	}
}
