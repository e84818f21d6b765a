// Package definition loads automata from declarative YAML, TOML or JSON
// files.
package definition

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"GoDFA/internal/automaton"
	"GoDFA/internal/storage"
)

// Format constants.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// CurrentVersion is written into definitions that do not carry a version.
const CurrentVersion = "1.0.0"

// supportedVersions is the semver constraint a definition version must meet.
const supportedVersions = "^1"

var (
	ErrUnsupportedFormat  = errors.New("unsupported definition format")
	ErrUnsupportedVersion = errors.New("unsupported definition version")
	ErrDuplicateRule      = errors.New("duplicate transition rule")
	ErrMalformed          = errors.New("malformed definition")
)

// Extensions maps file extensions to formats.
var Extensions = map[string]string{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

// Rule is one entry of the transition table.
type Rule struct {
	From   string `yaml:"from" toml:"from" json:"from"`
	Symbol string `yaml:"symbol" toml:"symbol" json:"symbol"`
	To     string `yaml:"to" toml:"to" json:"to"`
}

// Definition is the serialized form of an automaton with string states.
type Definition struct {
	Version     string   `yaml:"version" toml:"version" json:"version"`
	Name        string   `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	States      []string `yaml:"states" toml:"states" json:"states"`
	Alphabet    []string `yaml:"alphabet" toml:"alphabet" json:"alphabet"`
	Initial     string   `yaml:"initial" toml:"initial" json:"initial"`
	Final       []string `yaml:"final" toml:"final" json:"final"`
	Transitions []Rule   `yaml:"transitions" toml:"transitions" json:"transitions"`
}

// FormatFromPath returns the format implied by the file extension of path.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := Extensions[ext]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
	return format, nil
}

// Load reads and validates the definition at path.
func Load(path string) (*Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read definition %s", path)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "definition %s", path)
	}
	return def, nil
}

// Parse decodes data in the given format and validates the result.
func Parse(data []byte, format string) (*Definition, error) {
	var def Definition
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &def)
	case FormatTOML:
		err = toml.Unmarshal(data, &def)
	case FormatJSON:
		err = json.Unmarshal(data, &def)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s", format), ErrMalformed)
	}
	if def.Version == "" {
		def.Version = CurrentVersion
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Marshal encodes the definition in the given format.
func (d *Definition) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, errors.Wrap(err, "encode toml")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

// Validate checks what the automaton constructor cannot: the format version
// and that no (from, symbol) pair has two rules. Structural checks of the
// 5-tuple happen in Build.
func (d *Definition) Validate() error {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return errors.Wrapf(ErrUnsupportedVersion, "%q: %v", d.Version, err)
	}
	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return errors.Wrap(err, "parse version constraint")
	}
	if !c.Check(v) {
		return errors.Wrapf(ErrUnsupportedVersion, "%s does not satisfy %s", v, supportedVersions)
	}

	seen := make(map[[2]string]string, len(d.Transitions))
	for _, r := range d.Transitions {
		key := [2]string{r.From, r.Symbol}
		if to, dup := seen[key]; dup {
			return errors.Wrapf(ErrDuplicateRule, "(%s, %q) maps to both %s and %s", r.From, r.Symbol, to, r.To)
		}
		seen[key] = r.To
	}
	return nil
}

// Table returns the transition table described by the rules.
func (d *Definition) Table() *automaton.Table[string] {
	t := automaton.NewTable[string]()
	for _, r := range d.Transitions {
		t.Set(r.From, r.Symbol, r.To)
	}
	return t
}

// Build constructs the automaton. Configuration errors are marked
// automaton.ErrInvalidConfiguration.
func (d *Definition) Build(opts automaton.Options) (*automaton.DFA[string], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return automaton.New(d.States, d.Alphabet, d.Initial, d.Final, d.Table(), opts)
}

// Canonical returns the compact JSON encoding of the definition. It does not
// depend on the format the definition was loaded from.
func (d *Definition) Canonical() []byte {
	data, err := json.Marshal(d)
	if err != nil {
		// A Definition holds only strings; encoding cannot fail.
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "marshal definition"))
	}
	return data
}

// Fingerprint hashes the canonical encoding, so the same automaton loaded
// from YAML or TOML has the same fingerprint.
func (d *Definition) Fingerprint() storage.Checksum {
	return storage.ComputeChecksum(d.Canonical())
}

// Clone returns a deep copy.
func (d *Definition) Clone() *Definition {
	var out Definition
	if err := deepcopy.Copy(&out, d); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "copy definition"))
	}
	return &out
}
