// Package errcode holds the stable error identifiers returned by the UART
// driver. A Code is comparable and allocation-free; E adds the failing
// operation and a human message without losing the Code.
package errcode

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Configuration: the TX/RX pin pair does not resolve to one UART.
	Configuration Code = "configuration"
	// InvalidFormat: data bits, stop bits or parity outside the accepted set.
	InvalidFormat Code = "invalid_format"
	// UnroutableBaud: the baud rate produces a zero divisor.
	UnroutableBaud Code = "unroutable_baud_rate"
	// WouldBlock: a non-blocking call found the hardware not ready.
	WouldBlock Code = "would_block"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the operation that failed and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E for op.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
