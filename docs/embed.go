// Copyright © 2024 The ELPS authors

// Package docs embeds the stack reflection guide for use by the CLI.
package docs

import _ "embed"

//go:embed debugging-guide.md
var DebuggingGuide string
