// Package deploy holds the domain model of a deployment run: who triggered
// it, what was synced and whether it succeeded.
package deploy
