// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/jsscope/semantic"
)

// Option configures an exported command factory (LintCommand, LSPCommand,
// DocCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	globals map[string]bool
	envs    []semantic.Environment
	log     logrus.FieldLogger
}

// WithGlobals declares extra predefined globals, true meaning writable.
// Embedders use it for names their host injects into every script. The
// globals are merged over those of jsscope.toml.
func WithGlobals(globals map[string]bool) Option {
	return func(c *cmdConfig) { c.globals = globals }
}

// WithEnvironments enables predefined global environments in addition to
// the ones a jsscope.toml names.
func WithEnvironments(envs ...semantic.Environment) Option {
	return func(c *cmdConfig) { c.envs = append(c.envs, envs...) }
}

// WithLogger sets the logger commands hand to the analyzer.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *cmdConfig) { c.log = log }
}

func newCmdConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{log: logrus.StandardLogger()}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
