// Package auth implements the authentication-server phase of the login
// flow: the SRP6a challenge/proof exchange and the realm list.
//
// Auth frames are tagged with a single command byte and have no size
// field for most commands, so the framer derives each frame's length
// from its command: fixed for the proof reply, probed from embedded
// length fields for the challenge and the realm list. The handler is a
// strict state machine; the server proof is verified before the session
// key is ever surfaced.
//
// Example:
//
//	handler := auth.NewHandler(auth.Config{Transport: tcp})
//	handler.OnSuccess(func(key [40]byte) { ... })
//	if err := handler.Connect("realm.example.com", 3724, "user", "pass"); err != nil {
//	    return err
//	}
//	for handler.State() != auth.StateRealmListReceived {
//	    handler.Update()
//	}
package auth
