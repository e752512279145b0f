// Package version exposes the deploy tool's build metadata injected via
// ldflags and a cobra subcommand to print it.
package version
