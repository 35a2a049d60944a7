// Copyright © 2024 The ELPS authors

// Package docs embeds the jsscope guides for use by the CLI.
package docs

import _ "embed"

// ScopingGuide explains how names are resolved.
//
//go:embed scoping.md
var ScopingGuide string

// ConfigReference documents jsscope.toml and the source directives.
//
//go:embed config.md
var ConfigReference string
