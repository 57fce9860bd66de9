// Package transport provides the raw byte pipe the session core reads
// and writes. The core treats it as dumb plumbing: no DNS policy, no
// TLS, no retries, and crucially no blocking — Poll returns whatever
// bytes have arrived, possibly none.
//
// Example:
//
//	tcp := transport.NewTCP(nil)
//	if err := tcp.Connect("realm.example.com", 3724); err != nil {
//	    return err
//	}
//	data, err := tcp.Poll()
package transport
