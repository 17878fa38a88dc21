package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// Blob is an inline binary payload (an encoded image) attached to a
// vision request.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Client is the minimal surface the rest of the app depends on. Gemini is
// the production implementation; FakeClient serves offline tests.
type Client interface {
	Name() string
	// GenerateJSON sends prompt plus a JSON-encoded input payload and
	// returns the model's JSON output.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	// GenerateVisionJSON sends prompt plus inline image blobs.
	GenerateVisionJSON(ctx context.Context, prompt string, images []Blob) (json.RawMessage, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

type opKey struct{}

// WithOp tags ctx with the logical operation name ("detect", "suggest").
// Used by logging middleware and the fake client.
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

// OpFrom returns the operation name tagged by WithOp, or "".
func OpFrom(ctx context.Context) string {
	if v, ok := ctx.Value(opKey{}).(string); ok {
		return v
	}
	return ""
}
