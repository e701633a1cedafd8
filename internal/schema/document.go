package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sqlweaver/sqlweaver/internal/docs"
)

// documentQuery is the fixed retrieval query for the document path. The
// goal is always the same regardless of the document's wording: surface
// the passages that describe the data model.
const documentQuery = "business requirements"

const documentPrompt = `Based on these business requirements, design a database schema:

%s

Generate SQL DDL (CREATE TABLE statements) that includes:
- Table names
- Columns with appropriate data types
- Primary and foreign keys
- Constraints

Return only the SQL DDL, no other text.`

// GenerateFromDocument turns extracted requirements text into raw
// schema DDL. The document is chunked and indexed into a transient
// in-memory store, the most relevant passages are retrieved with a
// fixed query, and the model designs a schema over that condensed
// context rather than the full document.
//
// The output is the model's DDL text verbatim. Callers wanting a
// canonical Schema feed it back through Normalize with KindSQL.
func (n *Normalizer) GenerateFromDocument(ctx context.Context, document string) (string, error) {
	if n.embedder == nil {
		return "", errors.New("embedder is required for document input")
	}
	if strings.TrimSpace(document) == "" {
		return "", errors.New("document text is empty")
	}

	chunks := docs.Chunk(document, n.chunkSize, n.chunkOverlap)
	passages := make([]docs.Passage, len(chunks))
	for i, c := range chunks {
		passages[i] = docs.Passage{ID: uuid.NewString(), Text: c}
	}

	store := docs.NewMemoryStore(n.embedder)
	if err := store.Add(ctx, passages); err != nil {
		return "", fmt.Errorf("indexing document: %w", err)
	}

	k := docs.DefaultTopK
	if k > len(passages) {
		k = len(passages)
	}
	scored, err := store.Search(ctx, documentQuery, k)
	if err != nil {
		return "", fmt.Errorf("retrieving document context: %w", err)
	}

	n.logger.Debug("document context assembled",
		"chunks", len(chunks), "retrieved", len(scored))

	parts := make([]string, len(scored))
	for i, s := range scored {
		parts[i] = s.Passage.Text
	}

	reply, err := n.completer.Complete(ctx, fmt.Sprintf(documentPrompt, strings.Join(parts, "\n\n")))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("model returned an empty schema")
	}
	return reply, nil
}
