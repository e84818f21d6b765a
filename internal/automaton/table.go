package automaton

// Table is a map-backed TransitionFunction. Pairs without a rule return
// ErrUndefined. States must be hashable; map or slice states need a
// TransitionFunc instead.
type Table[S comparable] struct {
	rules map[S]map[string]S
	size  int
}

// NewTable creates an empty transition table.
func NewTable[S comparable]() *Table[S] {
	return &Table[S]{rules: make(map[S]map[string]S)}
}

// Set defines the transition from --symbol--> to, replacing any earlier rule
// for the same pair.
func (t *Table[S]) Set(from S, symbol string, to S) {
	row, ok := t.rules[from]
	if !ok {
		row = make(map[string]S)
		t.rules[from] = row
	}
	if _, exists := row[symbol]; !exists {
		t.size++
	}
	row[symbol] = to
}

// Lookup returns the target for (from, symbol) and whether a rule exists.
func (t *Table[S]) Lookup(from S, symbol string) (S, bool) {
	to, ok := t.rules[from][symbol]
	return to, ok
}

// Len returns the number of rules.
func (t *Table[S]) Len() int {
	return t.size
}

func (t *Table[S]) Transition(state S, symbol string) (S, error) {
	if to, ok := t.Lookup(state, symbol); ok {
		return to, nil
	}
	var zero S
	return zero, ErrUndefined
}
