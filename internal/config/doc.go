// Package config defines the service configuration, its defaults, and how
// it is read from a TOML file.
//
// A configuration file only needs to name the settings it changes:
//
//	catalog = "catalog/"
//
//	[log]
//	level = "debug"
//
//	[server]
//	addr  = ":9090"
//	watch = true
//
//	[nats]
//	url = "nats://127.0.0.1:4222"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
// Command-line flags are applied on top of the file by the cli package.
package config
