// Package commands defines the primeforge CLI and wires dependencies for subcommands.
//
// Commands
//
//   - keygen    Generate an RSA keypair and self-signed certificate
//   - estimate  Query the prime-location estimator (nth, count)
//   - seed      Create and convert master seeds (new, words)
//
// # Implementation
//
// The root command sets log levels and loads the YAML config before any
// subcommand runs. keygen layers its flags over the config, builds the app
// graph (seed, estimator, generator, writer) and drives the full pipeline:
// derive, estimate, search, assemble, write.
package commands
