package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/docs"
	"github.com/sqlweaver/sqlweaver/internal/llm"
	"github.com/sqlweaver/sqlweaver/internal/log"
	"github.com/sqlweaver/sqlweaver/internal/schema"
)

// Retriever supplies documentation passages for a dialect. Failures
// must be absorbed by the implementation; Generate treats whatever
// comes back as best-effort context. *docs.Retriever satisfies this.
type Retriever interface {
	Retrieve(ctx context.Context, d dialect.Dialect, query string, k int) []string
}

// Orchestrator runs the full question-to-result pipeline. It holds no
// per-request state; concurrent Generate calls are independent.
type Orchestrator struct {
	completer     llm.Completer
	retriever     Retriever
	limiter       *rate.Limiter
	topK          int
	lenientFences bool
	logger        log.Logger
}

// Config contains the Orchestrator's dependencies.
type Config struct {
	// Completer performs the single model call. Required.
	Completer llm.Completer

	// Retriever supplies documentation context. Optional; when nil,
	// generation proceeds with the unavailable sentinel.
	Retriever Retriever

	// Limiter throttles model calls across goroutines. Optional.
	Limiter *rate.Limiter

	// TopK is the number of documentation passages retrieved per
	// request. Values below 1 use docs.DefaultTopK.
	TopK int

	// LenientFences strips a surrounding markdown code fence from the
	// model output before JSON parsing. Off by default: a fenced
	// response is a parse failure unless this is set explicitly.
	LenientFences bool

	Logger log.Logger
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Completer == nil {
		return nil, errors.New("completer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.TopK < 1 {
		cfg.TopK = docs.DefaultTopK
	}
	return &Orchestrator{
		completer:     cfg.Completer,
		retriever:     cfg.Retriever,
		limiter:       cfg.Limiter,
		topK:          cfg.TopK,
		lenientFences: cfg.LenientFences,
		logger:        cfg.Logger,
	}, nil
}

// Generate answers a question over a normalized schema for the given
// dialect tag (case-insensitive).
//
// The model is called exactly once; there are no retries. On failure
// the returned error is always a *Error carrying the verbatim model
// output when any exists. The caller decides whether and how to retry.
func (o *Orchestrator) Generate(ctx context.Context, question string, sch schema.Schema, tag string) (Result, error) {
	d, err := dialect.Parse(tag)
	if err != nil {
		return Result{}, &Error{Message: fmt.Sprintf("unsupported dialect: %q", tag)}
	}

	passages := []string{docs.Unavailable}
	if o.retriever != nil {
		passages = o.retriever.Retrieve(ctx, d, question, o.topK)
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return Result{}, &Error{Message: fmt.Sprintf("rate limit wait: %v", err)}
		}
	}

	prompt := buildPrompt(question, sch, d, passages)
	o.logger.Debug("calling model", "dialect", d, "passages", len(passages), "prompt_len", len(prompt))

	raw, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		e := &Error{Message: fmt.Sprintf("completion failed: %v", err)}
		if strings.TrimSpace(raw) != "" {
			e.RawResponse = raw
		}
		return Result{}, e
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, &Error{Message: "empty response from model"}
	}

	text := raw
	if o.lenientFences {
		text = stripCodeFences(raw)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return Result{}, &Error{
			Message:     fmt.Sprintf("invalid JSON: %v", err),
			RawResponse: raw,
		}
	}

	res, violations := Validate(obj)
	if len(violations) > 0 {
		return Result{}, &Error{
			Message:     "validation failed: " + strings.Join(violations, "; "),
			RawResponse: raw,
		}
	}
	return res, nil
}

// stripCodeFences removes one surrounding markdown code fence, with or
// without a language tag. Text that is not fenced passes through
// unchanged.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return s
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
