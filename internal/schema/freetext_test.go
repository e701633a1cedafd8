package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sqlweaver/sqlweaver/internal/testutil"
)

func newTestNormalizer(t *testing.T, completer *testutil.MockCompleter) *Normalizer {
	t.Helper()
	n, err := New(Config{Completer: completer})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return n
}

func TestNormalizeNaturalLanguage(t *testing.T) {
	completer := testutil.NewMockCompleter(
		`{"table_name": "users", "columns": ["id (INT)", "email (VARCHAR(255))"], "relationships": []}`)
	n := newTestNormalizer(t, completer)

	got, err := n.Normalize(context.Background(), []byte("a table of users with id and email"), KindNaturalLanguage)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got.TableName != "users" {
		t.Errorf("TableName = %q, want %q", got.TableName, "users")
	}
	assertStrings(t, "Columns", got.Columns, []string{"id (INT)", "email (VARCHAR(255))"})

	prompts := completer.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("completer called %d times, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "a table of users with id and email") {
		t.Errorf("prompt does not embed the description:\n%s", prompts[0])
	}
}

func TestNormalizeNaturalLanguageFillsMissingFields(t *testing.T) {
	completer := testutil.NewMockCompleter(`{"columns": ["id (INT)"]}`)
	n := newTestNormalizer(t, completer)

	got, err := n.Normalize(context.Background(), []byte("desc"), KindNaturalLanguage)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got.TableName != UnknownTable {
		t.Errorf("TableName = %q, want %q", got.TableName, UnknownTable)
	}
	if got.Relationships == nil {
		t.Error("Relationships is nil, want empty slice")
	}
}

func TestNormalizeNaturalLanguageSalvagesMalformedReply(t *testing.T) {
	// Almost JSON: trailing comma makes strict decoding fail, but the
	// fields are still recoverable by pattern matching.
	completer := testutil.NewMockCompleter(
		`Here is the schema: {"table_name": "users", "columns": ["id (INT)", "email (TEXT)"],}`)
	n := newTestNormalizer(t, completer)

	got, err := n.Normalize(context.Background(), []byte("users table"), KindNaturalLanguage)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got.TableName != "users" {
		t.Errorf("TableName = %q, want %q", got.TableName, "users")
	}
	assertStrings(t, "Columns", got.Columns, []string{"id (INT)", "email (TEXT)"})
	assertStrings(t, "Relationships", got.Relationships, []string{})
}

func TestNormalizeNaturalLanguageUnsalvageableReply(t *testing.T) {
	completer := testutil.NewMockCompleter("I cannot help with that.")
	n := newTestNormalizer(t, completer)

	got, err := n.Normalize(context.Background(), []byte("whatever"), KindNaturalLanguage)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got.TableName != UnknownTable {
		t.Errorf("TableName = %q, want %q", got.TableName, UnknownTable)
	}
	assertStrings(t, "Columns", got.Columns, []string{})
	assertStrings(t, "Relationships", got.Relationships, []string{})
}

func TestNormalizeNaturalLanguageTransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	completer := testutil.NewMockCompleter().FailWith(wantErr)
	n := newTestNormalizer(t, completer)

	_, err := n.Normalize(context.Background(), []byte("desc"), KindNaturalLanguage)
	if !errors.Is(err, wantErr) {
		t.Errorf("Normalize() error = %v, want %v", err, wantErr)
	}
}

func TestNormalizeRejectsDocumentKind(t *testing.T) {
	completer := testutil.NewMockCompleter()
	n := newTestNormalizer(t, completer)

	_, err := n.Normalize(context.Background(), []byte("doc text"), KindDocument)
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("Normalize(KindDocument) error = %v, want ErrUnsupportedKind", err)
	}
	if completer.CallCount() != 0 {
		t.Errorf("completer called %d times, want 0", completer.CallCount())
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "text", want: KindNaturalLanguage},
		{input: "natural_language", want: KindNaturalLanguage},
		{input: "CSV", want: KindCSV},
		{input: "sql", want: KindSQL},
		{input: "ddl", want: KindSQL},
		{input: "document", want: KindDocument},
		{input: "document_text", want: KindDocument},
		{input: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
