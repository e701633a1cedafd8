// Package generate turns a natural-language question plus a canonical
// schema into a dialect-checked SQL query via a single constrained
// model call.
//
// Every failure mode is a structured *Error rather than a bare string:
// unsupported dialect, completion transport failure, empty output,
// unparseable JSON, and contract violations all surface through the
// same shape so callers can render them uniformly.
package generate

// Result is the success contract. All four fields are mandatory;
// Validate rejects any response missing one.
type Result struct {
	// Query is the generated SQL text.
	Query string `json:"query"`

	// Explanation is the model's technical rationale.
	Explanation string `json:"explanation"`

	// PotentialIssues lists caveats the model flagged (missing
	// indexes, scan cost, skew).
	PotentialIssues []string `json:"potential_issues"`

	// Alternatives lists rewritten query variants.
	Alternatives []string `json:"alternatives"`
}

// Error is the failure contract. It implements error so orchestration
// code can return it through ordinary error plumbing, and marshals to
// the wire shape {"error": ..., "raw_response": ...}.
type Error struct {
	// Message is a human-readable cause, safe to show end users.
	Message string `json:"error"`

	// RawResponse carries the verbatim model output whenever the model
	// produced any, so broken responses stay debuggable.
	RawResponse string `json:"raw_response,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }
