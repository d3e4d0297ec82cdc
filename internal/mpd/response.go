// ResponseBuilder assembles the key: value lines MPD handlers emit,
// grounded on rmpd-protocol's ResponseBuilder (field/blank_line/ok) rather
// than the teacher's ad hoc fmt.Sprintf concatenation, since nearly every
// handler in this package needs the same field-then-terminator shape.
package mpd

import (
	"fmt"
	"strings"
)

// ResponseBuilder accumulates key: value lines for a single command
// response.
type ResponseBuilder struct {
	b strings.Builder
}

// NewResponseBuilder returns an empty builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// Field appends a "key: value\n" line. value is formatted with fmt.Sprint
// so callers can pass ints, floats, or strings interchangeably.
func (r *ResponseBuilder) Field(key string, value any) *ResponseBuilder {
	fmt.Fprintf(&r.b, "%s: %v\n", key, value)
	return r
}

// BlankLine appends a bare newline.
func (r *ResponseBuilder) BlankLine() *ResponseBuilder {
	r.b.WriteByte('\n')
	return r
}

// Raw appends text verbatim, for handlers assembling binary responses.
func (r *ResponseBuilder) Raw(s string) *ResponseBuilder {
	r.b.WriteString(s)
	return r
}

// OK terminates the response with "OK\n" and returns the full text.
func (r *ResponseBuilder) OK() string {
	r.b.WriteString("OK\n")
	return r.b.String()
}

// String returns the accumulated text without a terminator, for command-
// list assembly where the terminator is added once for the whole batch.
func (r *ResponseBuilder) String() string {
	return r.b.String()
}
