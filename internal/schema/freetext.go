package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const naturalLanguagePrompt = `Convert this table description to a JSON schema with fields: table_name, columns (list of "name (type)" strings), relationships (list of "column -> table.column" strings).

Description: %s

Return only valid JSON, no other text.`

// Fallback extraction for model responses that are almost JSON but not
// quite. Pulled fields are best effort; anything unmatched stays at its
// sentinel or zero value.
var (
	tableNameRe = regexp.MustCompile(`"table_name"\s*:\s*"([^"]+)"`)
	columnsRe   = regexp.MustCompile(`"columns"\s*:\s*\[([^\]]+)\]`)
)

// fromNaturalLanguage asks the model to structure a free-text table
// description. Transport errors propagate; a malformed response never
// does. When strict decoding of the reply fails, regex salvage builds a
// sparse Schema instead, so callers always get something usable.
func (n *Normalizer) fromNaturalLanguage(ctx context.Context, description string) (Schema, error) {
	reply, err := n.completer.Complete(ctx, fmt.Sprintf(naturalLanguagePrompt, description))
	if err != nil {
		return Schema{}, err
	}

	var s Schema
	if err := json.Unmarshal([]byte(reply), &s); err == nil {
		if s.TableName == "" {
			s.TableName = UnknownTable
		}
		if s.Columns == nil {
			s.Columns = []string{}
		}
		if s.Relationships == nil {
			s.Relationships = []string{}
		}
		return s, nil
	}

	n.logger.Warn("model reply is not valid JSON, falling back to regex extraction",
		"reply_len", len(reply))

	return salvageSchema(reply), nil
}

// salvageSchema recovers what it can from a non-JSON reply. It never
// fails: unrecoverable fields degrade to the unknown-table sentinel and
// empty lists, and relationships are never salvaged (too error-prone to
// guess from broken output).
func salvageSchema(reply string) Schema {
	s := Schema{
		TableName:     UnknownTable,
		Columns:       []string{},
		Relationships: []string{},
	}

	if m := tableNameRe.FindStringSubmatch(reply); m != nil {
		s.TableName = m[1]
	}
	if m := columnsRe.FindStringSubmatch(reply); m != nil {
		for _, raw := range strings.Split(m[1], ",") {
			col := strings.Trim(strings.TrimSpace(raw), `"`)
			if col != "" {
				s.Columns = append(s.Columns, col)
			}
		}
	}
	return s
}
