package generate

import (
	"fmt"
	"strings"

	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/schema"
)

// systemPrompt fixes the output contract and the per-dialect syntax
// constraints. Spark gets an allow-list of constructs known to work on
// the batch engine; Trino gets a deny-list, each forbidden construct
// paired with the substitute a Trino deployment would actually use.
const systemPrompt = `You are a SQL expert generating queries for a specific engine.

When the dialect is SPARK, use only these features:
- Date functions: date_trunc, date_add, current_date, unix_timestamp
- Filtering: WHERE, BETWEEN
- Aggregations: GROUP BY, HAVING
- Joins: INNER, LEFT, RIGHT, FULL OUTER JOIN
- CTEs (WITH clause) for complex queries
- Window functions: RANK(), ROW_NUMBER(), LEAD(), LAG()
- JSON handling: get_json_object(), json_tuple()
- Bucketing and partitioning: PARTITIONED BY, CLUSTERED BY

When the dialect is TRINO, never generate these constructs:
- CREATE INDEX (use partitioning instead)
- CREATE MATERIALIZED VIEW (use regular views instead)
- MERGE INTO (use INSERT INTO ... SELECT instead)
- UPDATE / DELETE (limited support; use CTAS or INSERT INTO ... SELECT instead)
- AUTO_INCREMENT (use UUID() or ROW_NUMBER() instead)
- BEGIN TRANSACTION (use ETL pipelines instead)
- CREATE PROCEDURE / TRIGGER (use external orchestration instead)

Respond with a single JSON object containing EXACTLY these fields:
- "query": the SQL string
- "explanation": technical rationale for the query
- "potential_issues": list of strings describing caveats
- "alternatives": list of alternative SQL query strings

Return only the JSON object, no other text and no markdown fences.`

// buildPrompt assembles the full generation request: contract and
// constraints first, then the schema, dialect, retrieved
// documentation, and finally the question.
func buildPrompt(question string, sch schema.Schema, d dialect.Dialect, passages []string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(sch.String())
	fmt.Fprintf(&sb, "\n\nDialect: %s\n", strings.ToUpper(string(d)))
	if len(passages) > 0 {
		sb.WriteString("\nRelevant documentation:\n")
		for _, p := range passages {
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}
