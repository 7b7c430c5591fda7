// Package apexmark converts Markdown to HTML through a pipeline of text
// preprocessors, a Goldmark parse, tree postprocessors, and HTML cleanup
// passes, with five compatibility dialects.
//
// # Quick Start
//
//	opts := apexmark.DefaultOptions()
//	html, err := apexmark.Convert([]byte("# Hello\n\nWorld"), &opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(html)
//
// # Dialects
//
// Use OptionsForMode to start from a dialect's defaults, then flip
// individual fields:
//
//	opts := apexmark.OptionsForMode(apexmark.ModeKramdown)
//	opts.Highlight = true
//	html, err := apexmark.Convert(input, &opts)
//
// ModeUnified is the superset dialect: metadata with transform chains,
// Kramdown attribute lists, relaxed tables, wiki links, callouts, and
// citations all default on.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Liquid-tag protection ({% ... %} regions shielded from every pass)
//  2. Metadata extraction, merge, and [%key:transform] substitution
//  3. Kramdown IAL/ALD and image-attribute preprocessing
//  4. Relaxed and headerless table normalization
//  5. Citation and index sigil protection
//  6. Goldmark parse with the dialect's extension set
//  7. Tree postprocessors (wiki links, callouts, attribute attachment,
//     mixed-list merging)
//  8. Render plus HTML passes (attribute injection, header ids, table
//     header cleanup, bibliography/index blocks, Liquid restoration,
//     optional standalone wrapping)
//
// # Concurrency
//
// Convert allocates all state per call; independent conversions may run
// concurrently. There is no cancellation — a call runs to completion.
package apexmark
