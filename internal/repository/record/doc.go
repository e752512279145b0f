// Package record persists the outcome of the most recent deployment run to a
// YAML file inside the project directory, giving operators an audit trail
// without any external storage.
package record
