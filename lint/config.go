// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

// ConfigFileName is the project configuration file searched for by
// FindConfig.
const ConfigFileName = "jsscope.toml"

// Config is the project lint configuration, usually read from
// jsscope.toml:
//
//	source_type = "module"
//	env = ["browser"]
//	disable = ["no-shadow"]
//
//	[globals]
//	analytics = "writable"
//	legacy = "off"
//
//	[severity]
//	no-unused-vars = "error"
type Config struct {
	// SourceType is "module", "script", or empty to infer it from each
	// file name.
	SourceType string `toml:"source_type"`

	// Env names predefined global environments (see semantic.Environments).
	Env []string `toml:"env"`

	// Globals declares extra globals as "writable", "readonly" or "off".
	Globals map[string]string `toml:"globals"`

	// Disable lists checks that never run.
	Disable []string `toml:"disable"`

	// Severity overrides the default severity of checks.
	Severity map[string]string `toml:"severity"`

	// Path is the file the configuration was read from.
	Path string `toml:"-"`
}

// LoadConfig reads a configuration file. Unknown keys are an error so that
// typos do not go unnoticed.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return &cfg, nil
}

// FindConfig looks for ConfigFileName in dir and its ancestors.
func FindConfig(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// SourceTypeOverride returns the configured source type, or nil when it
// is inferred per file.
func (c *Config) SourceTypeOverride() (*ast.SourceType, error) {
	switch c.SourceType {
	case "", "auto":
		return nil, nil
	case "module":
		return &ast.SourceType{Module: true}, nil
	case "script":
		return &ast.SourceType{}, nil
	}
	return nil, fmt.Errorf("invalid source_type %q", c.SourceType)
}

// PredefinedGlobals returns the globals of the configured environments
// with the [globals] table applied.
func (c *Config) PredefinedGlobals() (map[string]bool, error) {
	envs := make([]semantic.Environment, len(c.Env))
	for i, e := range c.Env {
		envs[i] = semantic.Environment(e)
	}
	globals, err := semantic.Globals(envs...)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.Globals))
	for name := range c.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch v := c.Globals[name]; v {
		case "writable", "writeable", "true":
			globals[name] = true
		case "readonly", "false":
			globals[name] = false
		case "off":
			delete(globals, name)
		default:
			return nil, fmt.Errorf("global %s: invalid value %q", name, v)
		}
	}
	return globals, nil
}

// Analyzers returns the default analyzers minus the disabled ones, with
// severity overrides applied. The shared default analyzers are not
// modified.
func (c *Config) Analyzers() ([]*Analyzer, error) {
	if _, err := LookupAnalyzers(c.Disable); err != nil {
		return nil, err
	}
	disabled := checkSet(c.Disable)
	var out []*Analyzer
	for _, a := range DefaultAnalyzers() {
		if disabled[a.Name] {
			continue
		}
		if s, ok := c.Severity[a.Name]; ok {
			sev, err := ParseSeverity(s)
			if err != nil {
				return nil, fmt.Errorf("severity of %s: %w", a.Name, err)
			}
			cp := *a
			cp.Severity = sev
			a = &cp
		}
		out = append(out, a)
	}
	for name := range c.Severity {
		if _, err := LookupAnalyzers([]string{name}); err != nil {
			return nil, fmt.Errorf("severity: %w", err)
		}
	}
	return out, nil
}

// NewLinter builds a Linter from the configuration. A nil configuration
// yields the defaults.
func NewLinter(c *Config, analysis *semantic.Config) (*Linter, error) {
	if c == nil {
		c = &Config{}
	}
	analyzers, err := c.Analyzers()
	if err != nil {
		return nil, err
	}
	globals, err := c.PredefinedGlobals()
	if err != nil {
		return nil, err
	}
	st, err := c.SourceTypeOverride()
	if err != nil {
		return nil, err
	}
	if st != nil {
		var cp semantic.Config
		if analysis != nil {
			cp = *analysis
		}
		cp.SourceType = st
		analysis = &cp
	}
	return &Linter{Analyzers: analyzers, Globals: globals, Analysis: analysis}, nil
}
