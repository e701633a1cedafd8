package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// defaultVarcharLen is used for columns with no non-null values.
const defaultVarcharLen = 255

// timestampLayouts accepted by CSV type inference, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// fromCSV infers a Schema from CSV bytes with a header row.
//
// Per-column type precedence: all-integer -> INT, all-numeric with a
// fractional part -> FLOAT, all-timestamp -> TIMESTAMP, all-boolean ->
// BOOLEAN, otherwise VARCHAR sized to the longest non-null value.
// Empty cells are treated as nulls and do not influence the type.
// CSV carries no foreign-key information, so Relationships is always
// empty. The result is fully deterministic for identical input bytes.
func fromCSV(data []byte) (Schema, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return Schema{}, fmt.Errorf("decoding CSV: %w", err)
	}
	if len(records) == 0 {
		return Schema{}, fmt.Errorf("decoding CSV: no header row")
	}

	header := records[0]
	rows := records[1:]

	columns := make([]string, len(header))
	for i, name := range header {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		columns[i] = fmt.Sprintf("%s (%s)", strings.TrimSpace(name), inferSQLType(values))
	}

	return Schema{
		TableName:     UploadedTable,
		Columns:       columns,
		Relationships: []string{},
	}, nil
}

// inferSQLType maps a column's value distribution to a SQL type.
func inferSQLType(values []string) string {
	var nonNull []string
	maxLen := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonNull = append(nonNull, v)
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}
	if len(nonNull) == 0 {
		return fmt.Sprintf("VARCHAR(%d)", defaultVarcharLen)
	}

	if all(nonNull, isInteger) {
		return "INT"
	}
	if all(nonNull, isNumeric) {
		return "FLOAT"
	}
	if all(nonNull, isTimestamp) {
		return "TIMESTAMP"
	}
	if all(nonNull, isBoolean) {
		return "BOOLEAN"
	}
	return fmt.Sprintf("VARCHAR(%d)", maxLen)
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isInteger(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isNumeric(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func isTimestamp(v string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func isBoolean(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false":
		return true
	default:
		return false
	}
}
