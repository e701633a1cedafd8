package generate

import (
	"encoding/json"
	"fmt"
)

// Validate checks a parsed model response against the four-field
// result contract and reports every violation, not just the first, so
// a single round trip yields complete diagnostics.
//
// Pure function: no side effects, safe for concurrent use.
func Validate(obj map[string]json.RawMessage) (Result, []string) {
	var res Result
	var violations []string

	checkString := func(field string, dst *string) {
		raw, ok := obj[field]
		if !ok {
			violations = append(violations, fmt.Sprintf("missing field %q", field))
			return
		}
		// json.Unmarshal leaves the target untouched on null; the
		// contract requires a real string.
		if err := json.Unmarshal(raw, dst); err != nil || string(raw) == "null" {
			violations = append(violations, fmt.Sprintf("field %q must be a string", field))
		}
	}
	checkStringList := func(field string, dst *[]string) {
		raw, ok := obj[field]
		if !ok {
			violations = append(violations, fmt.Sprintf("missing field %q", field))
			return
		}
		// json.Unmarshal accepts null for a slice; the contract does not.
		if err := json.Unmarshal(raw, dst); err != nil || *dst == nil {
			violations = append(violations, fmt.Sprintf("field %q must be a list of strings", field))
			return
		}
	}

	checkString("query", &res.Query)
	checkString("explanation", &res.Explanation)
	checkStringList("potential_issues", &res.PotentialIssues)
	checkStringList("alternatives", &res.Alternatives)

	if len(violations) > 0 {
		return Result{}, violations
	}
	return res, nil
}
