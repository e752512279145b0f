// Package executil abstracts external command execution behind a small
// Runner interface so services can be exercised in tests without touching
// the host, and provides the os/exec implementation used in production.
package executil
