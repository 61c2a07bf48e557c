// Package main hosts the silencescan CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies flag overrides,
// and hands off to the internal packages: scan runs a batch and prints a
// summary, check reports preflight status, history lists previous runs, and
// config scaffolds or validates the TOML file. Commands own presentation only;
// the pipeline lives under internal/.
package main
