// Package schema normalizes heterogeneous table descriptions into one
// canonical schema record.
//
// Four input shapes are accepted: a free-text description (completed by
// the model into structured JSON), raw CSV bytes (types inferred from
// the value distribution), SQL DDL (first CREATE TABLE statement), and
// text extracted from a business-requirements document (a
// retrieval-augmented flow that emits raw DDL text rather than a
// structured Schema; see GenerateFromDocument).
//
// Error policy: malformed model output never surfaces as an error; the
// free-text path degrades to a sparse Schema instead. Unsupported input
// kinds and undecodable CSV are caller errors and do fail.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/sqlweaver/sqlweaver/internal/llm"
	"github.com/sqlweaver/sqlweaver/internal/log"
)

// Sentinel table names used when a real name cannot be recovered.
const (
	// UnknownTable is the fallback when free-text normalization cannot
	// recover a table name.
	UnknownTable = "unknown_table"

	// UploadedTable is the fixed name for CSV input, which carries no
	// table name of its own.
	UploadedTable = "uploaded_table"
)

// ErrUnsupportedKind indicates an input kind outside the four
// supported shapes.
var ErrUnsupportedKind = errors.New("unsupported input kind")

// Kind selects the normalization branch for one input shape.
type Kind int

const (
	// KindNaturalLanguage is a free-text table description.
	KindNaturalLanguage Kind = iota

	// KindCSV is raw CSV bytes with a header row.
	KindCSV

	// KindSQL is SQL DDL text containing a CREATE TABLE statement.
	KindSQL

	// KindDocument is text extracted from a requirements document.
	// Normalize rejects it; use GenerateFromDocument, whose output
	// shape is raw DDL text rather than a Schema.
	KindDocument
)

// ParseKind maps the wire names used by the CLI to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural_language", "text":
		return KindNaturalLanguage, nil
	case "csv":
		return KindCSV, nil
	case "sql", "ddl":
		return KindSQL, nil
	case "document", "document_text":
		return KindDocument, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNaturalLanguage:
		return "natural_language"
	case KindCSV:
		return "csv"
	case KindSQL:
		return "sql"
	case KindDocument:
		return "document_text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Schema is the canonical table description all generation logic
// consumes. Immutable once returned; construct a fresh one per request.
type Schema struct {
	// TableName is non-empty after normalization (sentinel placeholder
	// when unrecoverable).
	TableName string `json:"table_name"`

	// Columns holds "<name> (<type>)" entries in source order. Entries
	// never begin with a key-constraint keyword; those are redirected
	// into Relationships or dropped.
	Columns []string `json:"columns"`

	// Relationships holds "<local_col> -> <ref_table>.<ref_col>"
	// entries. Empty means no relationships were inferred.
	Relationships []string `json:"relationships"`
}

// String renders the schema for embedding into a generation prompt.
func (s Schema) String() string {
	var sb strings.Builder
	sb.WriteString("Table: ")
	sb.WriteString(s.TableName)
	sb.WriteString("\nColumns:")
	if len(s.Columns) == 0 {
		sb.WriteString(" (none)")
	}
	for _, c := range s.Columns {
		sb.WriteString("\n  - ")
		sb.WriteString(c)
	}
	if len(s.Relationships) > 0 {
		sb.WriteString("\nRelationships:")
		for _, r := range s.Relationships {
			sb.WriteString("\n  - ")
			sb.WriteString(r)
		}
	}
	return sb.String()
}

// Normalizer converts raw input into canonical Schemas. It holds no
// mutable state; concurrent Normalize calls are independent.
type Normalizer struct {
	completer    llm.Completer
	embedder     ai.Embedder
	chunkSize    int
	chunkOverlap int
	logger       log.Logger
}

// Config contains the Normalizer's dependencies.
type Config struct {
	// Completer serves the natural-language and document paths.
	// Required.
	Completer llm.Completer

	// Embedder serves the document path's transient index. Optional;
	// when nil, GenerateFromDocument fails.
	Embedder ai.Embedder

	// Chunking for the document path. Zero values use 800/50.
	ChunkSize    int
	ChunkOverlap int

	Logger log.Logger
}

// New creates a Normalizer.
func New(cfg Config) (*Normalizer, error) {
	if cfg.Completer == nil {
		return nil, errors.New("completer is required")
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 800
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 50
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Normalizer{
		completer:    cfg.Completer,
		embedder:     cfg.Embedder,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		logger:       cfg.Logger,
	}, nil
}

// Normalize dispatches on kind and returns the canonical Schema.
//
// KindDocument is deliberately not served here: that path's contract
// produces raw DDL text, not a Schema, and silently unifying the two
// shapes would hide the difference from callers. Use
// GenerateFromDocument and feed its output back through KindSQL when a
// Schema is needed.
func (n *Normalizer) Normalize(ctx context.Context, input []byte, kind Kind) (Schema, error) {
	switch kind {
	case KindNaturalLanguage:
		return n.fromNaturalLanguage(ctx, string(input))
	case KindCSV:
		return fromCSV(input)
	case KindSQL:
		return fromDDL(string(input)), nil
	case KindDocument:
		return Schema{}, fmt.Errorf("%w: document input produces raw schema text, use GenerateFromDocument", ErrUnsupportedKind)
	default:
		return Schema{}, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}
}
