// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and the optional configuration file into the
// application's configuration and dispatches to the subcommands.
package cli
