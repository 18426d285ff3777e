package errcode

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Fatal bring-up conditions.
	ClockConfig  Code = "clock_config"  // clock targets unreachable from the oscillator
	RateConfig   Code = "rate_config"   // bus rate unreachable from its bus clock
	AlreadyTaken Code = "already_taken" // peripheral token acquired twice

	// Structural misuse, detected before any register write.
	InvalidAltFunc Code = "invalid_alt_func"
	InvalidPin     Code = "invalid_pin"
	InvalidMode    Code = "invalid_mode"
	InvalidParams  Code = "invalid_params"
	InvalidState   Code = "invalid_state"
	UnknownPin     Code = "unknown_pin"
	PinInUse       Code = "pin_in_use"
	PinConsumed    Code = "pin_consumed"

	Timeout Code = "timeout"
	Nack    Code = "nack"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
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
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// New builds an *E without cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap attaches op context to err. The code is taken from err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: Of(err), Op: op, Err: err}
}

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
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return Of(u.Unwrap())
	}
	return Error
}

// Is reports whether err carries code c.
func Is(err error, c Code) bool { return Of(err) == c }

// Fatal reports whether c is one of the conditions that abort bring-up
// without recovery.
func Fatal(c Code) bool {
	switch c {
	case ClockConfig, RateConfig, AlreadyTaken:
		return true
	}
	return false
}
