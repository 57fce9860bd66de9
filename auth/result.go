package auth

import "fmt"

// Result is the status code carried by challenge and proof replies.
type Result uint8

const (
	ResultSuccess          Result = 0x00
	ResultUnknown0         Result = 0x01
	ResultUnknown1         Result = 0x02
	ResultAccountBanned    Result = 0x03
	ResultAccountInvalid   Result = 0x04
	ResultPasswordInvalid  Result = 0x05
	ResultAlreadyOnline    Result = 0x06
	ResultOutOfCredit      Result = 0x07
	ResultBusy             Result = 0x08
	ResultBuildInvalid     Result = 0x09
	ResultBuildUpdate      Result = 0x0A
	ResultInvalidServer    Result = 0x0B
	ResultAccountSuspended Result = 0x0C
	ResultAccessDenied     Result = 0x0D
	ResultSurvey           Result = 0x0E
	ResultParentalControl  Result = 0x0F
	ResultLockEnforced     Result = 0x10
	ResultTrialExpired     Result = 0x11
	ResultBattleNet        Result = 0x12
)

// String returns the human-readable reason surfaced through the failure
// callback when the server rejects an attempt.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultUnknown0:
		return "Unknown Error 0"
	case ResultUnknown1:
		return "Unknown Error 1"
	case ResultAccountBanned:
		return "Account Banned"
	case ResultAccountInvalid:
		return "Account Invalid"
	case ResultPasswordInvalid:
		return "Password Invalid"
	case ResultAlreadyOnline:
		return "Already Online"
	case ResultOutOfCredit:
		return "Out of Credit"
	case ResultBusy:
		return "Server Busy"
	case ResultBuildInvalid:
		return "Build Invalid"
	case ResultBuildUpdate:
		return "Build Update Required"
	case ResultInvalidServer:
		return "Invalid Server"
	case ResultAccountSuspended:
		return "Account Suspended"
	case ResultAccessDenied:
		return "Access Denied"
	case ResultSurvey:
		return "Survey Required"
	case ResultParentalControl:
		return "Parental Control"
	case ResultLockEnforced:
		return "Lock Enforced"
	case ResultTrialExpired:
		return "Trial Expired"
	case ResultBattleNet:
		return "Battle.net Error"
	default:
		return fmt.Sprintf("Unknown (0x%02X)", uint8(r))
	}
}
