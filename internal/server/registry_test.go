package server

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"GoDFA/internal/automaton"
	"GoDFA/internal/definition"
	"GoDFA/internal/storage"
	"GoDFA/internal/testutil"
)

func mod3Definition(t *testing.T, name string) *definition.Definition {
	t.Helper()
	def, err := definition.Parse([]byte(testutil.Mod3YAML), definition.FormatYAML)
	require.NoError(t, err)
	def.Name = name
	return def
}

func TestNewRegistry_LoadsExistingDefinitions(t *testing.T) {
	dataDir := t.TempDir()
	defs := filepath.Join(dataDir, definitionsDir)
	testutil.WriteDefinition(t, defs, "alpha.yaml", testutil.Mod3YAML)
	testutil.WriteDefinition(t, defs, "beta.toml", testutil.Mod3TOML)
	testutil.WriteDefinition(t, defs, "gamma.json", testutil.Mod3JSON)
	testutil.WriteDefinition(t, defs, "broken.yaml", "states: [")
	testutil.WriteDefinition(t, defs, "invalid.yaml", "states: []\nalphabet: [a]\ninitial: q\n")
	testutil.WriteDefinition(t, defs, "README.md", "not a definition")

	reg, err := NewRegistry(dataDir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, reg.List())

	inst, err := reg.Get("beta")
	require.NoError(t, err)
	require.Equal(t, "beta", inst.Definition().Name)
}

func TestNewRegistry_SkipsDuplicateStems(t *testing.T) {
	dataDir := t.TempDir()
	defs := filepath.Join(dataDir, definitionsDir)
	testutil.WriteDefinition(t, defs, "mod3.json", testutil.Mod3JSON)
	testutil.WriteDefinition(t, defs, "mod3.yaml", testutil.Mod3YAML)

	reg, err := NewRegistry(dataDir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"mod3"}, reg.List())

	inst, err := reg.Get("mod3")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(defs, "mod3.json"), inst.Path)
}

func TestRegistry_CreatePersists(t *testing.T) {
	dataDir := t.TempDir()
	reg, err := NewRegistry(dataDir, nil)
	require.NoError(t, err)

	inst, err := reg.Create(mod3Definition(t, "divisible"))
	require.NoError(t, err)
	testutil.AssertFileExists(t, inst.Path)

	reopened, err := NewRegistry(dataDir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"divisible"}, reopened.List())

	again, err := reopened.Get("divisible")
	require.NoError(t, err)
	require.Equal(t, inst.Fingerprint(), again.Fingerprint())
}

func TestRegistry_CreateErrors(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = reg.Create(mod3Definition(t, "mod3"))
	require.NoError(t, err)

	_, err = reg.Create(mod3Definition(t, "mod3"))
	require.True(t, errors.Is(err, ErrAutomatonExists), "got %v", err)

	for _, name := range []string{"", "../escape", "has space", "dot.ted"} {
		_, err = reg.Create(mod3Definition(t, name))
		require.True(t, errors.Is(err, ErrInvalidName), "name %q: got %v", name, err)
	}

	bad := mod3Definition(t, "bad")
	bad.Initial = "nowhere"
	_, err = reg.Create(bad)
	require.True(t, errors.Is(err, automaton.ErrInvalidConfiguration), "got %v", err)
	testutil.AssertFileNotExists(t, filepath.Join(reg.dir, "bad.yaml"))
}

func TestRegistry_Delete(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)
	inst, err := reg.Create(mod3Definition(t, "mod3"))
	require.NoError(t, err)

	require.NoError(t, reg.Delete("mod3"))
	testutil.AssertFileNotExists(t, inst.Path)
	require.Empty(t, reg.List())

	_, err = reg.Get("mod3")
	require.True(t, errors.Is(err, ErrAutomatonNotFound))
	require.True(t, errors.Is(reg.Delete("mod3"), ErrAutomatonNotFound))
}

func TestInstance_Run(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)
	inst, err := reg.Create(mod3Definition(t, "mod3"))
	require.NoError(t, err)

	result, err := inst.Run("1001", false)
	require.NoError(t, err)
	require.Equal(t, "S0", result.State)
	require.True(t, result.Final)
	require.Equal(t, []string{"1", "0", "0", "1"}, result.Tokens)
	require.NotEmpty(t, result.RunID)

	// The cursor carries over between runs: 1001 then 1 is 10011 = 19.
	result, err = inst.Run("1", false)
	require.NoError(t, err)
	require.Equal(t, "S1", result.State)
	require.False(t, result.Final)

	result, err = inst.Run("100", true)
	require.NoError(t, err)
	require.Equal(t, "S1", result.State)
}

func TestInstance_RunFailureKeepsState(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)
	def, err := definition.Parse([]byte(testutil.PartialMod3YAML), definition.FormatYAML)
	require.NoError(t, err)
	def.Name = "partial"
	inst, err := reg.Create(def)
	require.NoError(t, err)

	_, err = inst.Run("10", false)
	require.NoError(t, err)

	_, err = inst.Run("01", false)
	require.True(t, errors.Is(err, automaton.ErrMissingTransition), "got %v", err)
	state, _ := inst.State()
	require.Equal(t, "S2", state)

	_, err = inst.Run("0x", false)
	require.True(t, errors.Is(err, automaton.ErrInvalidSymbol))
	state, _ = inst.State()
	require.Equal(t, "S2", state)

	require.True(t, errors.Is(inst.Validate(), automaton.ErrMissingTransition))
	state, _ = inst.State()
	require.Equal(t, "S2", state)

	require.Equal(t, "S0", inst.Reset())
}

func TestInstance_ConcurrentRuns(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)
	inst, err := reg.Create(mod3Definition(t, "mod3"))
	require.NoError(t, err)

	// Appending "11" maps n to 4n+3, which keeps n mod 3, so the final state
	// does not depend on how the runs interleave.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := inst.Run("11", false); err != nil {
					t.Errorf("Run: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	state, final := inst.State()
	require.Equal(t, "S0", state)
	require.True(t, final)
}

func TestRegistry_CreateRefusesUnloadedFile(t *testing.T) {
	dataDir := t.TempDir()
	broken := testutil.WriteDefinition(t, filepath.Join(dataDir, definitionsDir), "mod3.toml", "states = [")

	reg, err := NewRegistry(dataDir, nil)
	require.NoError(t, err)
	require.Empty(t, reg.List())

	_, err = reg.Create(mod3Definition(t, "mod3"))
	require.True(t, errors.Is(err, ErrAutomatonExists), "got %v", err)
	testutil.AssertFileExists(t, broken)
	testutil.AssertFileNotExists(t, filepath.Join(reg.dir, "mod3.yaml"))
}

func TestRegistry_DeleteIfMatch(t *testing.T) {
	reg, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)
	inst, err := reg.Create(mod3Definition(t, "mod3"))
	require.NoError(t, err)

	err = reg.DeleteIfMatch("mod3", "sha256:abc")
	require.True(t, errors.Is(err, storage.ErrInvalidChecksum), "got %v", err)

	err = reg.DeleteIfMatch("mod3", storage.ComputeChecksum([]byte("something else")))
	require.True(t, errors.Is(err, storage.ErrChecksumMismatch), "got %v", err)
	testutil.AssertFileExists(t, inst.Path)

	err = reg.DeleteIfMatch("missing", inst.Fingerprint())
	require.True(t, errors.Is(err, ErrAutomatonNotFound), "got %v", err)

	require.NoError(t, reg.DeleteIfMatch("mod3", inst.Fingerprint()))
	testutil.AssertFileNotExists(t, inst.Path)
	require.Empty(t, reg.List())
}
