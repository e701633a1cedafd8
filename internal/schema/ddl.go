package schema

import (
	"regexp"
	"strings"
)

// createTableRe locates the first CREATE TABLE statement and captures
// the table name token. The definition body is scanned separately so
// nested parentheses (e.g. VARCHAR(255)) survive.
var createTableRe = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([^\s(]+)\s*\(`)

// foreignKeyRe matches FOREIGN KEY (<local>) REFERENCES <table>(<col>),
// whitespace-insensitive.
var foreignKeyRe = regexp.MustCompile(`(?is)FOREIGN\s+KEY\s*\(\s*([^)]+?)\s*\)\s*REFERENCES\s+([^\s(]+)\s*\(\s*([^)]+?)\s*\)`)

// fromDDL extracts a Schema from SQL DDL text.
//
// Only the first CREATE TABLE statement is processed; anything after it
// is ignored. This is a known limitation inherited from the
// single-table assumption, not something to silently "fix". Regex-based
// parsing is best-effort: definitions that match nothing contribute
// nothing, and an input without a CREATE TABLE yields the sentinel
// table name with no columns.
func fromDDL(ddl string) Schema {
	s := Schema{
		TableName:     UnknownTable,
		Columns:       []string{},
		Relationships: []string{},
	}

	m := createTableRe.FindStringSubmatchIndex(ddl)
	if m == nil {
		return s
	}

	if name := strings.Trim(ddl[m[2]:m[3]], "`\"'"); name != "" {
		s.TableName = name
	}

	// m[1] is the index just past the opening parenthesis.
	body, ok := definitionBody(ddl[m[1]:])
	if !ok {
		return s
	}

	for _, def := range splitDefinitions(body) {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}

		upper := strings.ToUpper(def)
		switch {
		case strings.HasPrefix(upper, "PRIMARY KEY"):
			// Key constraints never appear as columns.
		case strings.Contains(upper, "FOREIGN KEY"):
			if fk := foreignKeyRe.FindStringSubmatch(def); fk != nil {
				local := strings.Trim(strings.TrimSpace(fk[1]), "`\"'")
				table := strings.Trim(strings.TrimSpace(fk[2]), "`\"'")
				col := strings.Trim(strings.TrimSpace(fk[3]), "`\"'")
				s.Relationships = append(s.Relationships, local+" -> "+table+"."+col)
			}
		default:
			s.Columns = append(s.Columns, def)
		}
	}
	return s
}

// definitionBody returns the text up to the parenthesis matching the
// already-consumed opening one.
func definitionBody(rest string) (string, bool) {
	depth := 1
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return rest[:i], true
			}
		}
	}
	return "", false
}

// splitDefinitions splits a definition list on top-level commas only.
func splitDefinitions(body string) []string {
	var defs []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				defs = append(defs, body[start:i])
				start = i + 1
			}
		}
	}
	defs = append(defs, body[start:])
	return defs
}
