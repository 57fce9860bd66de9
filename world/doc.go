// Package world implements the world-server phase of the protocol: the
// seed/hash re-authentication with the session key from the auth phase,
// RC4-obfuscated packet headers, character enumeration, world entry,
// movement, chat and the server-pushed entity stream.
//
// A Session is single-goroutine: drive it from the application's main
// loop via Update, which polls the transport, reassembles frames and
// advances the state machine. Server traffic never blocks; everything
// observable is surfaced through callbacks registered before Connect.
//
// Header encryption starts at a precise point in the handshake: the
// re-authentication packet itself goes out with a plaintext header, and
// both direction ciphers are initialized immediately after it is sent,
// before any later header is read or written.
//
// Example:
//
//	session := world.NewSession(world.Config{Transport: tcp})
//	session.OnWorldEntered(func(pos world.Position) { ... })
//	if err := session.Connect("realm.example.com", 8085, key, "user"); err != nil {
//	    return err
//	}
//	for {
//	    session.Update()
//	    time.Sleep(50 * time.Millisecond)
//	}
package world
