// Package commands defines the wowcli CLI and wires the client for
// subcommands.
//
// Commands
//
//   - realms  Authenticate and print the realm list
//   - login   Run the full login sequence and stay in the world
//
// # Implementation
//
// The root command builds a shared client from the persistent flags
// before any subcommand runs. Subcommands drive the client from a
// single loop with Update and the recommended iteration interval.
package commands
