// Package entropy wraps the operating system's cryptographic randomness
// source with fail-closed semantics: any read problem is surfaced as an
// error and never papered over with a weaker generator.
package entropy
