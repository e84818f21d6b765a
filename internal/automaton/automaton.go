// Package automaton implements deterministic finite automata over an
// alphabet of variable-length symbols.
package automaton

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// TransitionFunction maps (state, symbol) to the next state. A function that
// is undefined for a pair returns an error, usually ErrUndefined. Panics are
// treated the same way.
//
// Rollback in ProcessSequence only restores the cursor, so implementations
// should be free of side effects.
type TransitionFunction[S any] interface {
	Transition(state S, symbol string) (S, error)
}

// TransitionFunc adapts an ordinary function to TransitionFunction.
type TransitionFunc[S any] func(state S, symbol string) (S, error)

func (f TransitionFunc[S]) Transition(state S, symbol string) (S, error) {
	return f(state, symbol)
}

// DFA is a deterministic finite automaton with a current-state cursor.
//
// Everything but the cursor is fixed at construction. A DFA does no locking;
// callers sharing one across goroutines must serialize access themselves.
type DFA[S any] struct {
	states   []S
	alphabet []string
	symbols  map[string]struct{}
	initial  S
	finals   []S
	fn       TransitionFunction[S]

	tokenizer *Tokenizer
	current   S

	logger *zap.Logger
}

// New validates the configuration and returns a DFA positioned at initial.
// Errors are marked ErrInvalidConfiguration.
func New[S any](states []S, alphabet []string, initial S, finals []S, fn TransitionFunction[S], opts Options) (*DFA[S], error) {
	if err := validateConfiguration(states, alphabet, initial, finals); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, configError("transition function must not be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tokenizer := NewTokenizer(alphabet)
	symbols := make(map[string]struct{}, len(alphabet))
	for _, s := range alphabet {
		symbols[s] = struct{}{}
	}

	d := &DFA[S]{
		states:    append([]S(nil), states...),
		alphabet:  tokenizer.Symbols(),
		symbols:   symbols,
		initial:   initial,
		finals:    append([]S(nil), finals...),
		fn:        fn,
		tokenizer: tokenizer,
		current:   initial,
		logger:    logger,
	}
	logger.Debug("automaton constructed",
		zap.Int("states", len(d.states)),
		zap.Strings("alphabet", d.alphabet),
		zap.String("initial", StateToString(initial)),
	)
	return d, nil
}

// Process applies a single symbol. On error the cursor is unchanged.
func (d *DFA[S]) Process(symbol string) error {
	if _, ok := d.symbols[symbol]; !ok {
		return symbolError(symbol)
	}
	next, err := d.call(d.current, symbol)
	if err != nil {
		return missingError(d.current, symbol, err)
	}
	if !d.IsState(next) {
		return stateError(next)
	}
	if ce := d.logger.Check(zap.DebugLevel, "transition"); ce != nil {
		ce.Write(
			zap.String("from", StateToString(d.current)),
			zap.String("symbol", symbol),
			zap.String("to", StateToString(next)),
		)
	}
	d.current = next
	return nil
}

// ProcessSequence tokenizes input and applies every symbol in order. Either
// all symbols are applied, or the cursor is left where it was and the first
// error is returned unchanged. Empty input is a no-op.
func (d *DFA[S]) ProcessSequence(input string) (S, error) {
	symbols, err := d.tokenizer.Tokenize(input)
	if err != nil {
		var zero S
		return zero, err
	}
	return d.ProcessSymbols(symbols)
}

// ProcessSymbols applies already tokenized symbols with the same
// all-or-nothing semantics as ProcessSequence.
func (d *DFA[S]) ProcessSymbols(symbols []string) (S, error) {
	snapshot := d.current
	for i, symbol := range symbols {
		if err := d.Process(symbol); err != nil {
			d.current = snapshot
			if ce := d.logger.Check(zap.DebugLevel, "sequence rolled back"); ce != nil {
				ce.Write(
					zap.Int("index", i),
					zap.String("symbol", symbol),
					zap.String("restored", StateToString(snapshot)),
					zap.Error(err),
				)
			}
			var zero S
			return zero, err
		}
	}
	return d.current, nil
}

// Tokenize splits input into symbols without touching the cursor.
func (d *DFA[S]) Tokenize(input string) ([]string, error) {
	return d.tokenizer.Tokenize(input)
}

// Reset moves the cursor back to the initial state.
func (d *DFA[S]) Reset() {
	d.current = d.initial
}

// ValidateAllTransitions calls the transition function for every declared
// state and symbol and returns the first pair that is undefined or leads
// outside the state set. The cursor is never changed.
func (d *DFA[S]) ValidateAllTransitions() error {
	saved := d.current
	defer func() { d.current = saved }()

	for _, state := range d.states {
		for _, symbol := range d.alphabet {
			next, err := d.call(state, symbol)
			if err != nil {
				return missingError(state, symbol, err)
			}
			if !d.IsState(next) {
				return pairStateError(state, symbol, next)
			}
		}
	}
	d.logger.Debug("all transitions valid",
		zap.Int("states", len(d.states)),
		zap.Int("symbols", len(d.alphabet)),
	)
	return nil
}

// call invokes the transition function, turning a panic into an
// ErrUndefined error.
func (d *DFA[S]) call(state S, symbol string) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero S
			next, err = zero, errors.Wrapf(ErrUndefined, "transition panicked: %v", r)
		}
	}()
	return d.fn.Transition(state, symbol)
}

// IsState reports whether s is one of the declared states.
func (d *DFA[S]) IsState(s S) bool {
	return containsState(d.states, s)
}

// IsFinal reports whether s is one of the final states.
func (d *DFA[S]) IsFinal(s S) bool {
	return containsState(d.finals, s)
}

// InFinalState reports whether the cursor is on a final state.
func (d *DFA[S]) InFinalState() bool {
	return d.IsFinal(d.current)
}

func (d *DFA[S]) States() []S {
	return append([]S(nil), d.states...)
}

// Alphabet returns the symbols in tokenizer order (longest first).
func (d *DFA[S]) Alphabet() []string {
	return append([]string(nil), d.alphabet...)
}

func (d *DFA[S]) InitialState() S {
	return d.initial
}

func (d *DFA[S]) FinalStates() []S {
	return append([]S(nil), d.finals...)
}

func (d *DFA[S]) CurrentState() S {
	return d.current
}
