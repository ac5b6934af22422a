// Package app wires application dependencies for the CLI.
//
// It loads the YAML configuration, resolves the master seed, and builds
// the estimator, generator and key-file writer from Config, exposing them
// via the App struct for commands to use.
package app
