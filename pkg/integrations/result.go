package integrations

import (
	"encoding/json"
	"fmt"

	errs "github.com/matzehuels/repostats/pkg/errors"
)

// Kind tags the outcome of one upstream call.
type Kind int

const (
	// KindEmpty means the call completed without usable data, e.g. the
	// upstream was still computing statistics after the retry budget.
	KindEmpty Kind = iota
	// KindSuccess means Value holds the payload.
	KindSuccess
	// KindFailed means Err holds the reason.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Result is the outcome of fetching one sub-resource. Exactly one of its
// states is valid: Value only for KindSuccess, Err only for KindFailed.
// The zero Result is empty.
type Result[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Success wraps a payload.
func Success[T any](v T) Result[T] { return Result[T]{Kind: KindSuccess, Value: v} }

// Failed wraps an error. A nil err still yields a failed result.
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = errs.New(errs.ErrCodeInternal, "unknown failure")
	}
	return Result[T]{Kind: KindFailed, Err: err}
}

// Empty returns a result without data.
func Empty[T any]() Result[T] { return Result[T]{Kind: KindEmpty} }

// OK reports whether the result holds a payload.
func (r Result[T]) OK() bool { return r.Kind == KindSuccess }

// Or returns the payload on success and def otherwise.
func (r Result[T]) Or(def T) T {
	if r.Kind == KindSuccess {
		return r.Value
	}
	return def
}

// Decode JSON-decodes a successful response body into T. Empty and failed
// results carry over unchanged; a body that does not decode becomes a
// failure.
func Decode[T any](r Result[*Response]) Result[T] {
	switch r.Kind {
	case KindFailed:
		return Failed[T](r.Err)
	case KindEmpty:
		return Empty[T]()
	}
	var v T
	if err := json.Unmarshal(r.Value.Body, &v); err != nil {
		return Failed[T](errs.Wrap(errs.ErrCodeUpstream, err, "decode %T", v))
	}
	return Success(v)
}

// String is used in debug logs.
func (r Result[T]) String() string {
	if r.Kind == KindFailed {
		return fmt.Sprintf("failed(%v)", r.Err)
	}
	return r.Kind.String()
}
