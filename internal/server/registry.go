package server

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"GoDFA/internal/automaton"
	"GoDFA/internal/definition"
	"GoDFA/internal/storage"
)

var (
	ErrAutomatonNotFound = errors.New("automaton not found")
	ErrAutomatonExists   = errors.New("automaton already exists")
	ErrInvalidName       = errors.New("invalid automaton name")
)

// namePattern restricts names to safe file name stems.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// definitionsDir is the subdirectory of the data dir holding definitions.
const definitionsDir = "definitions"

// Instance is a named automaton with its own current-state cursor.
type Instance struct {
	Name     string
	Path     string
	LoadedAt time.Time

	def         *definition.Definition
	fingerprint storage.Checksum

	// The DFA does no locking of its own.
	mu  sync.Mutex
	dfa *automaton.DFA[string]

	logger *zap.Logger
}

// RunResult describes a successful run.
type RunResult struct {
	RunID  string   `json:"run_id"`
	State  string   `json:"state"`
	Final  bool     `json:"final"`
	Tokens []string `json:"tokens"`
}

// Registry manages the automata served by one process. Definitions live as
// YAML, TOML or JSON files in <dataDir>/definitions.
type Registry struct {
	dir    string
	logger *zap.Logger

	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewRegistry creates a Registry rooted at dataDir and loads every
// definition already on disk.
func NewRegistry(dataDir string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Join(dataDir, definitionsDir)
	if err := storage.EnsureDir(dir); err != nil {
		return nil, errors.Wrap(err, "ensure definitions directory")
	}

	r := &Registry{
		dir:       dir,
		logger:    logger,
		instances: make(map[string]*Instance),
	}
	if err := r.loadExisting(); err != nil {
		return nil, errors.Wrap(err, "load existing definitions")
	}
	automataLoaded.Set(float64(len(r.instances)))
	return r, nil
}

// loadExisting opens every definition file. Files that fail to load are
// logged and skipped.
func (r *Registry) loadExisting() error {
	files, err := storage.ListFiles(r.dir, extensions()...)
	if err != nil {
		return err
	}

	for _, file := range files {
		name := strings.TrimSuffix(file, filepath.Ext(file))
		if _, dup := r.instances[name]; dup {
			r.logger.Warn("skipping duplicate definition", zap.String("automaton", name), zap.String("file", file))
			continue
		}
		path := filepath.Join(r.dir, file)
		def, err := definition.Load(path)
		if err != nil {
			r.logger.Error("failed to load definition", zap.String("file", file), zap.Error(err))
			continue
		}
		inst, err := r.newInstance(name, path, def)
		if err != nil {
			r.logger.Error("failed to build automaton", zap.String("file", file), zap.Error(err))
			continue
		}
		r.instances[name] = inst
		r.logger.Info("automaton loaded",
			zap.String("automaton", name),
			zap.String("fingerprint", string(inst.fingerprint)),
		)
	}
	return nil
}

func (r *Registry) newInstance(name, path string, def *definition.Definition) (*Instance, error) {
	def = def.Clone()
	def.Name = name

	logger := r.logger.With(zap.String("automaton", name))
	dfa, err := def.Build(automaton.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Instance{
		Name:        name,
		Path:        path,
		LoadedAt:    time.Now().UTC(),
		def:         def,
		fingerprint: def.Fingerprint(),
		dfa:         dfa,
		logger:      logger,
	}, nil
}

// Create validates def, persists it as <name>.yaml and registers it.
func (r *Registry) Create(def *definition.Definition) (*Instance, error) {
	if !namePattern.MatchString(def.Name) {
		return nil, errors.Wrapf(ErrInvalidName, "%q", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[def.Name]; exists {
		return nil, errors.Wrapf(ErrAutomatonExists, "%q", def.Name)
	}

	// A file that failed to load at startup still owns the name.
	for ext := range definition.Extensions {
		if existing := filepath.Join(r.dir, def.Name+ext); storage.FileExists(existing) {
			return nil, errors.Wrapf(ErrAutomatonExists, "%q: %s is on disk but not loaded", def.Name, existing)
		}
	}

	path := filepath.Join(r.dir, def.Name+".yaml")
	inst, err := r.newInstance(def.Name, path, def)
	if err != nil {
		return nil, err
	}

	data, err := inst.def.Marshal(definition.FormatYAML)
	if err != nil {
		return nil, errors.Wrap(err, "encode definition")
	}
	if err := storage.AtomicWriteFile(path, data); err != nil {
		return nil, errors.Wrap(err, "persist definition")
	}

	r.instances[def.Name] = inst
	automataLoaded.Set(float64(len(r.instances)))
	r.logger.Info("automaton created", zap.String("automaton", def.Name), zap.String("path", path))
	return inst, nil
}

// Delete unregisters an automaton and removes its definition file.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(name)
}

// DeleteIfMatch deletes the automaton only if its fingerprint is expected.
// A malformed fingerprint returns storage.ErrInvalidChecksum and a different
// one storage.ErrChecksumMismatch.
func (r *Registry) DeleteIfMatch(name string, expected storage.Checksum) error {
	if _, err := storage.ParseChecksum(expected); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, exists := r.instances[name]
	if !exists {
		return errors.Wrapf(ErrAutomatonNotFound, "%q", name)
	}
	if err := storage.VerifyChecksum(inst.def.Canonical(), expected); err != nil {
		return errors.Wrapf(err, "%q", name)
	}
	return r.deleteLocked(name)
}

func (r *Registry) deleteLocked(name string) error {
	inst, exists := r.instances[name]
	if !exists {
		return errors.Wrapf(ErrAutomatonNotFound, "%q", name)
	}
	if err := storage.RemoveFile(inst.Path); err != nil {
		return errors.Wrap(err, "remove definition")
	}

	delete(r.instances, name)
	automataLoaded.Set(float64(len(r.instances)))
	r.logger.Info("automaton deleted", zap.String("automaton", name))
	return nil
}

// Get returns the instance registered under name.
func (r *Registry) Get(name string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, exists := r.instances[name]
	if !exists {
		return nil, errors.Wrapf(ErrAutomatonNotFound, "%q", name)
	}
	return inst, nil
}

// List returns the sorted names of all registered automata.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func extensions() []string {
	exts := make([]string, 0, len(definition.Extensions))
	for ext := range definition.Extensions {
		exts = append(exts, ext)
	}
	return exts
}

// Definition returns a copy of the instance's definition.
func (inst *Instance) Definition() *definition.Definition {
	return inst.def.Clone()
}

// Fingerprint returns the definition fingerprint.
func (inst *Instance) Fingerprint() storage.Checksum {
	return inst.fingerprint
}

// Run applies input to the cursor atomically. With reset the cursor first
// returns to the initial state; the reset is not undone if the run fails.
func (inst *Instance) Run(input string, reset bool) (*RunResult, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	runID := uuid.NewString()
	start := time.Now()
	if reset {
		inst.dfa.Reset()
	}

	tokens, err := inst.dfa.Tokenize(input)
	if err != nil {
		recordRun(inst.Name, 0, time.Since(start), err)
		return nil, err
	}
	state, err := inst.dfa.ProcessSymbols(tokens)
	recordRun(inst.Name, len(tokens), time.Since(start), err)
	if err != nil {
		inst.logger.Debug("run failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	inst.logger.Debug("run complete",
		zap.String("run_id", runID),
		zap.Int("symbols", len(tokens)),
		zap.String("state", state),
	)
	return &RunResult{
		RunID:  runID,
		State:  state,
		Final:  inst.dfa.IsFinal(state),
		Tokens: tokens,
	}, nil
}

// Tokenize splits input without moving the cursor.
func (inst *Instance) Tokenize(input string) ([]string, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.dfa.Tokenize(input)
}

// Reset returns the cursor to the initial state.
func (inst *Instance) Reset() string {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.dfa.Reset()
	return inst.dfa.CurrentState()
}

// Validate runs the exhaustive transition check.
func (inst *Instance) Validate() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.dfa.ValidateAllTransitions()
}

// State returns the cursor and whether it is on a final state.
func (inst *Instance) State() (string, bool) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.dfa.CurrentState(), inst.dfa.InFinalState()
}

// Info returns summary information about the automaton.
func (inst *Instance) Info() map[string]interface{} {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	return map[string]interface{}{
		"name":          inst.Name,
		"description":   inst.def.Description,
		"version":       inst.def.Version,
		"fingerprint":   inst.fingerprint,
		"loaded_at":     inst.LoadedAt,
		"states":        inst.dfa.States(),
		"alphabet":      inst.dfa.Alphabet(),
		"initial":       inst.dfa.InitialState(),
		"final":         inst.dfa.FinalStates(),
		"transitions":   len(inst.def.Transitions),
		"current_state": inst.dfa.CurrentState(),
	}
}
