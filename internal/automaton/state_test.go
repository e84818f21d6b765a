package automaton

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type color int

func (c color) String() string {
	return [...]string{"red", "green"}[c]
}

type point struct{ X, Y int }

type labelled struct {
	Tags map[string]int
}

func TestIdentical_Scalars(t *testing.T) {
	require.True(t, Identical(0, 0))
	require.True(t, Identical("0", "0"))
	require.True(t, Identical(true, true))
	require.True(t, Identical(1.5, 1.5))
	require.True(t, Identical(nil, nil))
	require.True(t, Identical(point{1, 2}, point{1, 2}))

	// No coercion between kinds.
	require.False(t, Identical(0, "0"))
	require.False(t, Identical(1, true))
	require.False(t, Identical(1, 1.0))
	require.False(t, Identical(int(1), int64(1)))
	require.False(t, Identical(nil, 0))
	require.False(t, Identical("", nil))
	require.False(t, Identical(math.NaN(), math.NaN()))
}

func TestIdentical_References(t *testing.T) {
	m := map[string]int{"a": 1}
	same := m
	other := map[string]int{"a": 1}
	require.True(t, Identical(m, same))
	require.False(t, Identical(m, other))

	s := []int{1, 2, 3}
	require.True(t, Identical(s, s))
	require.False(t, Identical(s, []int{1, 2, 3}))
	require.False(t, Identical(s, s[:2]))

	p := &point{1, 2}
	require.True(t, Identical(p, p))
	require.False(t, Identical(p, &point{1, 2}))

	// Structs holding maps cannot be compared at all.
	l := labelled{Tags: m}
	require.False(t, Identical(l, l))
}

func TestNew_MapStatesUseReferenceIdentity(t *testing.T) {
	s0 := map[string]int{"id": 0}
	s1 := map[string]int{"id": 1}
	fn := TransitionFunc[any](func(state any, symbol string) (any, error) {
		return s1, nil
	})

	// An equal-content copy is not a member.
	_, err := New[any]([]any{s0, s1}, []string{"a"}, map[string]int{"id": 0}, nil, fn, DefaultOptions())
	require.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
	require.Contains(t, err.Error(), "initial state Array")

	d, err := New[any]([]any{s0, s1}, []string{"a"}, s0, []any{s1}, fn, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, d.Process("a"))
	require.True(t, Identical(s1, d.CurrentState()))
	require.True(t, d.InFinalState())
}

func TestNew_HeterogeneousStates(t *testing.T) {
	states := []any{0, "0", true, 2.5, nil}
	fn := TransitionFunc[any](func(state any, symbol string) (any, error) {
		switch symbol {
		case "i":
			return 0, nil
		case "s":
			return "0", nil
		case "n":
			return nil, nil
		case "f":
			return 2.5, nil
		}
		return int64(0), nil
	})
	d, err := New[any](states, []string{"i", "s", "n", "f", "x"}, true, []any{nil}, fn, DefaultOptions())
	require.NoError(t, err)

	got, err := d.ProcessSequence("sif")
	require.NoError(t, err)
	require.Equal(t, 2.5, got)

	got, err = d.ProcessSequence("n")
	require.NoError(t, err)
	require.Nil(t, got)
	require.True(t, d.InFinalState())

	// int64(0) is not the declared int 0.
	_, err = d.ProcessSequence("ix")
	require.True(t, errors.Is(err, ErrInvalidState))
	require.Nil(t, d.CurrentState())
}

func TestStateToString(t *testing.T) {
	var nilPoint *point
	testCases := []struct {
		state any
		want  string
	}{
		{nil, "nil"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(3), "3"},
		{1.5, "1.5"},
		{"S0", "S0"},
		{"", ""},
		{map[string]int{"a": 1}, "Array"},
		{[]string{"a"}, "Array"},
		{[2]int{1, 2}, "Array"},
		{color(1), "green"},
		{point{1, 2}, "automaton.point"},
		{&point{1, 2}, "*automaton.point"},
		{nilPoint, "nil"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, StateToString(tc.state), "%#v", tc.state)
	}
}
