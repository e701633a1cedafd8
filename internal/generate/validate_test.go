package generate

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("test input is not valid JSON: %v", err)
	}
	return obj
}

func TestValidate(t *testing.T) {
	res, violations := Validate(mustParse(t, validResponse))
	if len(violations) != 0 {
		t.Fatalf("violations = %v, want none", violations)
	}
	if res.Query == "" || res.Explanation == "" {
		t.Errorf("result not populated: %+v", res)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	// Two problems at once: one missing field, one mistyped field.
	obj := mustParse(t, `{"query": 42, "explanation": "e", "potential_issues": []}`)

	_, violations := Validate(obj)
	if len(violations) != 2 {
		t.Fatalf("violations = %v, want 2 entries", violations)
	}
	joined := strings.Join(violations, "; ")
	if !strings.Contains(joined, `"query"`) || !strings.Contains(joined, `"alternatives"`) {
		t.Errorf("violations = %v, want both the mistyped and the missing field", violations)
	}
}

func TestValidateMistypedList(t *testing.T) {
	obj := mustParse(t, `{"query": "q", "explanation": "e", "potential_issues": "oops", "alternatives": []}`)

	_, violations := Validate(obj)
	if len(violations) != 1 || !strings.Contains(violations[0], "potential_issues") {
		t.Errorf("violations = %v", violations)
	}
}

func TestValidateNullFieldsRejected(t *testing.T) {
	obj := mustParse(t, `{"query": null, "explanation": "e", "potential_issues": null, "alternatives": []}`)

	_, violations := Validate(obj)
	if len(violations) != 2 {
		t.Fatalf("violations = %v, want 2 entries", violations)
	}
	joined := strings.Join(violations, "; ")
	if !strings.Contains(joined, `"query"`) || !strings.Contains(joined, `"potential_issues"`) {
		t.Errorf("violations = %v, want the null fields flagged", violations)
	}
}

func TestValidateExtraFieldsIgnored(t *testing.T) {
	obj := mustParse(t, `{"query": "q", "explanation": "e", "potential_issues": [], "alternatives": [], "confidence": 0.9}`)

	_, violations := Validate(obj)
	if len(violations) != 0 {
		t.Errorf("violations = %v, want none for extra fields", violations)
	}
}
