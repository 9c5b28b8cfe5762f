// Package app contains the application core shared by every entrypoint. It
// owns the logger, the configuration, and the active catalog registry, and
// runs the long-lived services, decoupled from any specific entrypoint like
// the CLI.
package app
