// Package file provides the TOML-file configuration adapter.
// Connector credentials, limits and the scheduler task catalogue live in
// a single config.toml; the file is watched and reloaded on change.
package file
