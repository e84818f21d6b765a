package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Mod3YAML defines an automaton whose current state is the value of the
// binary number read so far, modulo 3.
const Mod3YAML = `version: "1.0.0"
name: mod3
description: binary numbers divisible by three
states: [S0, S1, S2]
alphabet: ["0", "1"]
initial: S0
final: [S0]
transitions:
  - {from: S0, symbol: "0", to: S0}
  - {from: S0, symbol: "1", to: S1}
  - {from: S1, symbol: "0", to: S2}
  - {from: S1, symbol: "1", to: S0}
  - {from: S2, symbol: "0", to: S1}
  - {from: S2, symbol: "1", to: S2}
`

// Mod3TOML is Mod3YAML in TOML.
const Mod3TOML = `version = "1.0.0"
name = "mod3"
states = ["S0", "S1", "S2"]
alphabet = ["0", "1"]
initial = "S0"
final = ["S0"]

[[transitions]]
from = "S0"
symbol = "0"
to = "S0"

[[transitions]]
from = "S0"
symbol = "1"
to = "S1"

[[transitions]]
from = "S1"
symbol = "0"
to = "S2"

[[transitions]]
from = "S1"
symbol = "1"
to = "S0"

[[transitions]]
from = "S2"
symbol = "0"
to = "S1"

[[transitions]]
from = "S2"
symbol = "1"
to = "S2"
`

// Mod3JSON is Mod3YAML in JSON.
const Mod3JSON = `{
  "version": "1.0.0",
  "name": "mod3",
  "states": ["S0", "S1", "S2"],
  "alphabet": ["0", "1"],
  "initial": "S0",
  "final": ["S0"],
  "transitions": [
    {"from": "S0", "symbol": "0", "to": "S0"},
    {"from": "S0", "symbol": "1", "to": "S1"},
    {"from": "S1", "symbol": "0", "to": "S2"},
    {"from": "S1", "symbol": "1", "to": "S0"},
    {"from": "S2", "symbol": "0", "to": "S1"},
    {"from": "S2", "symbol": "1", "to": "S2"}
  ]
}
`

// PartialMod3YAML is Mod3YAML without the (S1, "1") rule.
const PartialMod3YAML = `version: "1.0.0"
name: partial
states: [S0, S1, S2]
alphabet: ["0", "1"]
initial: S0
final: [S0]
transitions:
  - {from: S0, symbol: "0", to: S0}
  - {from: S0, symbol: "1", to: S1}
  - {from: S1, symbol: "0", to: S2}
  - {from: S2, symbol: "0", to: S1}
  - {from: S2, symbol: "1", to: S2}
`

// KeywordsYAML has multi-character symbols that exercise greedy matching.
const KeywordsYAML = `version: "1.0.0"
name: keywords
states: [start, word]
alphabet: [a, aa, aab, " "]
initial: start
final: [word]
transitions:
  - {from: start, symbol: a, to: word}
  - {from: start, symbol: aa, to: word}
  - {from: start, symbol: aab, to: word}
  - {from: start, symbol: " ", to: start}
  - {from: word, symbol: a, to: word}
  - {from: word, symbol: aa, to: word}
  - {from: word, symbol: aab, to: word}
  - {from: word, symbol: " ", to: start}
`

// WriteDefinition writes content to dir/name and returns the full path.
func WriteDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// AssertFileExists checks that a file exists at the given path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that nothing exists at the given path.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be absent", path)
	}
}
