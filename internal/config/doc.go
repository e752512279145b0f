// Package config defines deployment settings used by sunrise-deploy and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type names the project checkout, the branch and remote to sync,
// the service unit to restart and the virtual environment holding the bot's
// dependencies. Defaults describe a stock installation, so running without a
// settings file is supported.
package config
