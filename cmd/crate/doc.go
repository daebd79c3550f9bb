// Package main hosts the crate CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into export
// pipeline runs, run history queries, and configuration scaffolding. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
package main
