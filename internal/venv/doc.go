// Package venv provides scoped activation of a Python virtual environment
// and dependency installation through its package installer.
//
// Acquire validates the environment and returns an Env whose Release is
// deferred by callers, guaranteeing deactivation on every exit path.
package venv
