// Package entity decodes the server-pushed object snapshot and delta
// messages: packed variable-width identifiers, bitmask-selected 32-bit
// field updates, movement blocks and lifecycle transitions.
//
// The decoder owns no entities. A message is first parsed in full — a
// structurally invalid block aborts the whole message, since later
// blocks cannot be located without correctly consuming earlier ones —
// and only then applied to the caller's Table, so a decode failure
// never leaves half a message's effects behind.
package entity
