// Package quote defines the normalized result of fetching a single quote.
package quote

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// SuccessStatus is the only HTTP status whose message is treated as quote text.
	SuccessStatus = 200

	// MessageField is the response body field carrying the quote text or failure detail.
	MessageField = "message"

	// QuoteKey is the JSON key of a successful result.
	QuoteKey = "Arnie Quote"

	// FailureKey is the JSON key of a failed result.
	FailureKey = "FAILURE"
)

// ErrAmbiguousResult is returned when decoding an object that carries both or
// neither of QuoteKey and FailureKey.
var ErrAmbiguousResult = errors.New("result must carry exactly one of quote or failure")

// Result is the outcome of fetching one URL. Exactly one of text or message is
// meaningful, selected by ok.
type Result struct {
	ok      bool
	text    string
	message string
}

// Success returns a result holding quote text.
func Success(text string) Result {
	return Result{ok: true, text: text}
}

// Failure returns a result holding a failure description.
func Failure(message string) Result {
	return Result{message: message}
}

// IsSuccess reports whether the result is the Success variant.
func (r Result) IsSuccess() bool {
	return r.ok
}

// Text returns the quote text. Empty for failures.
func (r Result) Text() string {
	return r.text
}

// Message returns the failure description. Empty for successes.
func (r Result) Message() string {
	return r.message
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if r.ok {
		return fmt.Sprintf("%s: %s", QuoteKey, r.text)
	}
	return fmt.Sprintf("%s: %s", FailureKey, r.message)
}

// MarshalJSON encodes a success as {"Arnie Quote": text} and a failure as
// {"FAILURE": message}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(map[string]string{QuoteKey: r.text})
	}
	return json.Marshal(map[string]string{FailureKey: r.message})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	text, hasText := raw[QuoteKey]
	message, hasFailure := raw[FailureKey]
	switch {
	case hasText && !hasFailure:
		*r = Success(text)
	case hasFailure && !hasText:
		*r = Failure(message)
	default:
		return ErrAmbiguousResult
	}
	return nil
}

// Batch is an ordered sequence of results; element i belongs to input URL i.
type Batch []Result

// Successes counts Success entries.
func (b Batch) Successes() int {
	n := 0
	for _, r := range b {
		if r.ok {
			n++
		}
	}
	return n
}

// Failures counts Failure entries.
func (b Batch) Failures() int {
	return len(b) - b.Successes()
}
