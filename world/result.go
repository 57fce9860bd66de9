package world

import "fmt"

// AuthResult is the status code in the world server's authentication
// response. The code space is shared with other login replies, which is
// why it starts at 12.
type AuthResult uint8

const (
	AuthOK                  AuthResult = 12
	AuthFailed              AuthResult = 13
	AuthReject              AuthResult = 14
	AuthBadServerProof      AuthResult = 15
	AuthUnavailable         AuthResult = 16
	AuthSystemError         AuthResult = 17
	AuthBillingError        AuthResult = 18
	AuthBillingExpired      AuthResult = 19
	AuthVersionMismatch     AuthResult = 20
	AuthUnknownAccount      AuthResult = 21
	AuthIncorrectPassword   AuthResult = 22
	AuthSessionExpired      AuthResult = 23
	AuthServerShuttingDown  AuthResult = 24
	AuthAlreadyLoggingIn    AuthResult = 25
	AuthLoginServerNotFound AuthResult = 26
	AuthWaitQueue           AuthResult = 27
	AuthBanned              AuthResult = 28
	AuthAlreadyOnline       AuthResult = 29
	AuthNoTime              AuthResult = 30
	AuthDBBusy              AuthResult = 31
	AuthSuspended           AuthResult = 32
	AuthParentalControl     AuthResult = 33
	AuthLockedEnforced      AuthResult = 34
)

// String returns the reason surfaced when world authentication fails.
func (r AuthResult) String() string {
	switch r {
	case AuthOK:
		return "Authentication successful"
	case AuthFailed:
		return "Authentication failed"
	case AuthReject:
		return "Connection rejected"
	case AuthBadServerProof:
		return "Invalid server proof"
	case AuthUnavailable:
		return "Server unavailable"
	case AuthSystemError:
		return "System error"
	case AuthBillingError:
		return "Billing error"
	case AuthBillingExpired:
		return "Subscription expired"
	case AuthVersionMismatch:
		return "Client version mismatch"
	case AuthUnknownAccount:
		return "Account not found"
	case AuthIncorrectPassword:
		return "Wrong password"
	case AuthSessionExpired:
		return "Session has expired"
	case AuthServerShuttingDown:
		return "Server is shutting down"
	case AuthAlreadyLoggingIn:
		return "Already logging in"
	case AuthLoginServerNotFound:
		return "Cannot contact login server"
	case AuthWaitQueue:
		return "Waiting in queue"
	case AuthBanned:
		return "Account is banned"
	case AuthAlreadyOnline:
		return "Character already logged in"
	case AuthNoTime:
		return "No game time remaining"
	case AuthDBBusy:
		return "Database is busy"
	case AuthSuspended:
		return "Account is suspended"
	case AuthParentalControl:
		return "Parental controls active"
	case AuthLockedEnforced:
		return "Account is locked"
	default:
		return fmt.Sprintf("Unknown result (%d)", uint8(r))
	}
}
