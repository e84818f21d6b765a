package automaton

// validateConfiguration checks the structural part of the 5-tuple. Checks run
// in a fixed order and the first violation is returned.
func validateConfiguration[S any](states []S, alphabet []string, initial S, finals []S) error {
	if len(states) == 0 {
		return configError("states must not be empty")
	}
	if len(alphabet) == 0 {
		return configError("alphabet must not be empty")
	}
	for i, sym := range alphabet {
		if sym == "" {
			return configError("alphabet symbol at index %d is empty", i)
		}
	}
	seen := make(map[string]struct{}, len(alphabet))
	for _, sym := range alphabet {
		if _, dup := seen[sym]; dup {
			return configError("alphabet contains duplicate symbol %q", sym)
		}
		seen[sym] = struct{}{}
	}
	if !containsState(states, initial) {
		return configError("initial state %s is not a declared state", StateToString(initial))
	}
	for _, f := range finals {
		if !containsState(states, f) {
			return configError("final state %s is not a declared state", StateToString(f))
		}
	}
	return nil
}
