// Package dialect defines the SQL engine targets supported by sqlweaver.
//
// Exactly two dialects exist: Trino (distributed query engine) and
// Spark SQL (batch processing engine). Each has distinct allowed and
// forbidden syntax encoded in the generation prompt (internal/generate).
package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect identifies a supported SQL engine target.
// The zero value is not a valid dialect; obtain one via Parse.
type Dialect string

const (
	// Trino is the distributed query engine dialect.
	Trino Dialect = "trino"

	// Spark is the batch processing engine dialect.
	Spark Dialect = "spark"
)

// ErrUnsupported indicates a dialect tag outside {trino, spark}.
// Check with errors.Is.
var ErrUnsupported = errors.New("unsupported dialect")

// Parse normalizes a dialect tag. Input is case-insensitive and
// surrounding whitespace is ignored; the canonical form is lowercase.
//
// Returns ErrUnsupported (wrapped with the offending tag) for anything
// other than "trino" or "spark".
func Parse(tag string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case string(Trino):
		return Trino, nil
	case string(Spark):
		return Spark, nil
	default:
		return "", fmt.Errorf("%w: %q (expected trino or spark)", ErrUnsupported, tag)
	}
}

// All returns the supported dialects in declaration order.
func All() []Dialect {
	return []Dialect{Trino, Spark}
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	return string(d)
}
