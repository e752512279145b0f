// Package deployer runs the deployment workflow for the bot service: sync
// the project working tree to the branch tip, install dependencies inside the
// virtual environment when a manifest is present, restart the service unit
// and report its status.
//
// Steps run in strict order and the first failure aborts the rest; only the
// final status report is best-effort. A marker file in the project directory
// guards against two runs updating one working tree at once.
package deployer
