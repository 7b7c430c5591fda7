// Package pipeline wires the Goldmark parser and renderer into the
// conversion pipeline: mode-specific extension sets, tree postprocessors,
// and the HTML-level attribute injection passes.
package pipeline
