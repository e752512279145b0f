// Package vcs syncs the project working tree to the tip of a configured
// remote branch using go-git, so deployments need no git binary on the host.
package vcs
