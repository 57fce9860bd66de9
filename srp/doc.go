// Package srp implements the client side of the SRP6a password proof
// used by the authentication server.
//
// The engine never transmits or retains the secret: Initialize consumes
// the credentials to derive the private key hash, Feed processes the
// server's challenge parameters, and afterwards the public ephemeral,
// the client proof and the 40-byte session key are available through
// accessors. All byte-array parameters and outputs are little-endian,
// matching the wire.
//
// Example:
//
//	engine := srp.NewEngine(nil, nil)
//	engine.Initialize("ADMIN", "PASSWORD")
//	if err := engine.Feed(challenge.B, challenge.G, challenge.N, challenge.Salt); err != nil {
//	    return err
//	}
//	proof := engine.Proof()
package srp
