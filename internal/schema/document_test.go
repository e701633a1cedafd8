package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/sqlweaver/sqlweaver/internal/testutil"
)

func TestGenerateFromDocument(t *testing.T) {
	wantDDL := "CREATE TABLE customers (id INT, name VARCHAR(100))"
	completer := testutil.NewMockCompleter(wantDDL)
	n, err := New(Config{
		Completer: completer,
		Embedder:  testutil.NewMockEmbedder(8),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	doc := strings.Repeat("The system must track customers and their orders. ", 50)
	got, err := n.GenerateFromDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("GenerateFromDocument() error: %v", err)
	}
	if got != wantDDL {
		t.Errorf("GenerateFromDocument() = %q, want %q", got, wantDDL)
	}

	prompts := completer.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("completer called %d times, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "CREATE TABLE") {
		t.Errorf("prompt does not request DDL output:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[0], "customers") {
		t.Errorf("prompt does not embed retrieved document context:\n%s", prompts[0])
	}
}

func TestGenerateFromDocumentRequiresEmbedder(t *testing.T) {
	n, err := New(Config{Completer: testutil.NewMockCompleter("x")})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := n.GenerateFromDocument(context.Background(), "doc"); err == nil {
		t.Error("expected error without embedder")
	}
}

func TestGenerateFromDocumentRejectsEmptyInput(t *testing.T) {
	n, err := New(Config{
		Completer: testutil.NewMockCompleter("x"),
		Embedder:  testutil.NewMockEmbedder(8),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := n.GenerateFromDocument(context.Background(), "   \n"); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestGenerateFromDocumentEmptyModelReply(t *testing.T) {
	n, err := New(Config{
		Completer: testutil.NewMockCompleter("  "),
		Embedder:  testutil.NewMockEmbedder(8),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := n.GenerateFromDocument(context.Background(), "requirements text"); err == nil {
		t.Error("expected error for empty model reply")
	}
}
