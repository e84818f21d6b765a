package automaton

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by a DFA satisfies errors.Is against
// exactly one of these.
var (
	ErrInvalidConfiguration = errors.New("invalid automaton configuration")
	ErrInvalidSymbol        = errors.New("invalid symbol")
	ErrInvalidState         = errors.New("invalid state")
	ErrMissingTransition    = errors.New("missing transition")
)

// ErrUndefined is returned (or wrapped) by a TransitionFunction that has no
// value for the given (state, symbol) pair.
var ErrUndefined = errors.New("transition undefined")

// Kind names of the error taxonomy, as reported by Kind.
const (
	KindInvalidConfiguration = "InvalidConfiguration"
	KindInvalidSymbol        = "InvalidSymbol"
	KindInvalidState         = "InvalidState"
	KindMissingTransition    = "MissingTransition"
)

// Kind returns the taxonomy name of err, or "" if err is not an automaton error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingTransition):
		return KindMissingTransition
	case errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfiguration
	case errors.Is(err, ErrInvalidSymbol):
		return KindInvalidSymbol
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	default:
		return ""
	}
}

// TokenizeError reports the rune offset at which no alphabet symbol matched.
type TokenizeError struct {
	Position  int
	Remainder string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%v: no symbol matches input at position %d: %q", ErrInvalidSymbol, e.Position, e.Remainder)
}

// Unwrap makes errors.Is(err, ErrInvalidSymbol) hold.
func (e *TokenizeError) Unwrap() error {
	return ErrInvalidSymbol
}

func configError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfiguration)
}

func symbolError(symbol string) error {
	return errors.Mark(errors.Newf("symbol %q is not in the alphabet", symbol), ErrInvalidSymbol)
}

func stateError(result any) error {
	return errors.Mark(errors.Newf("transition returned %s, which is not a declared state", StateToString(result)), ErrInvalidState)
}

func pairStateError(state any, symbol string, result any) error {
	return errors.Mark(errors.Newf("transition (%s, %q) returned %s, which is not a declared state",
		StateToString(state), symbol, StateToString(result)), ErrInvalidState)
}

// missingError wraps the transition function's cause. A cause that already
// carries one of the error kinds, such as an error from a nested DFA, is
// made opaque so the result matches ErrMissingTransition only.
func missingError(state any, symbol string, cause error) error {
	if Kind(cause) != "" {
		cause = errors.Handled(cause)
	}
	return errors.Mark(errors.Wrapf(cause, "no transition from state %s on symbol %q", StateToString(state), symbol), ErrMissingTransition)
}
