// Package config loads the repgraph configuration file.
//
// Configuration is YAML on disk, validated against an embedded CUE
// schema before it is decoded, so malformed files fail with a
// field-level message instead of a zero value deep in the stack.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/score"
)

//go:embed schema.cue
var schemaCUE string

// Config holds runtime settings. Zero fields fall back to defaults.
type Config struct {
	// Database is the SQLite path.
	Database string `yaml:"database"`

	// MetricsAddr is the Prometheus listen address; empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// WalkDepth bounds score-query iteration. Defaults to the score
	// view's fixed depth.
	WalkDepth int `yaml:"walk_depth"`

	// Damping is the reference engine's walk damping factor.
	Damping float64 `yaml:"damping"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:  "repgraph.db",
		WalkDepth: score.DefaultDepth,
		Damping:   engine.DefaultDamping,
	}
}

// Load reads, validates, and decodes a YAML config file. Fields absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes raw YAML config bytes.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validate(raw); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// validate unifies the raw document with the embedded #Config schema.
func validate(raw map[string]any) error {
	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("schema has no #Config definition")
	}

	doc := cctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError flattens a CUE error list into one message.
func formatCUEError(err error) error {
	msgs := cueerrors.Errors(err)
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("%s", cueerrors.Details(msgs[0], nil))
}
