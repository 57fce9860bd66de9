package packet

import "fmt"

// Auth server commands are single byte tags; the world server uses
// 16-bit opcodes inbound and 32-bit opcodes outbound. Both fit the
// envelope's uint32 tag.

// Auth phase command tags.
const (
	AuthLogonChallenge     uint32 = 0x00
	AuthLogonProof         uint32 = 0x01
	AuthReconnectChallenge uint32 = 0x02
	AuthReconnectProof     uint32 = 0x03
	AuthRealmList          uint32 = 0x10
)

// World phase opcodes (client build 12340).
const (
	CMSGCharEnum          uint32 = 0x037
	SMSGCharEnum          uint32 = 0x03B
	CMSGPlayerLogin       uint32 = 0x03D
	CMSGMessageChat       uint32 = 0x095
	SMSGMessageChat       uint32 = 0x096
	SMSGUpdateObject      uint32 = 0x0A9
	SMSGDestroyObject     uint32 = 0x0AA
	MSGMoveStartForward   uint32 = 0x0B5
	MSGMoveStartBackward  uint32 = 0x0B6
	MSGMoveStop           uint32 = 0x0B7
	MSGMoveStartStrafeL   uint32 = 0x0B8
	MSGMoveStartStrafeR   uint32 = 0x0B9
	MSGMoveStopStrafe     uint32 = 0x0BA
	MSGMoveJump           uint32 = 0x0BB
	MSGMoveStartTurnL     uint32 = 0x0BC
	MSGMoveStartTurnR     uint32 = 0x0BD
	MSGMoveStopTurn       uint32 = 0x0BE
	MSGMoveFallLand       uint32 = 0x0C9
	MSGMoveHeartbeat      uint32 = 0x0EE
	CMSGPing              uint32 = 0x1DC
	SMSGPong              uint32 = 0x1DD
	SMSGAuthChallenge     uint32 = 0x1EC
	CMSGAuthSession       uint32 = 0x1ED
	SMSGAuthResponse      uint32 = 0x1EE
	SMSGAccountDataTimes  uint32 = 0x209
	SMSGLoginVerifyWorld  uint32 = 0x236
	SMSGMotd              uint32 = 0x33D
)

var worldOpcodeNames = map[uint32]string{
	CMSGCharEnum:         "CMSG_CHAR_ENUM",
	SMSGCharEnum:         "SMSG_CHAR_ENUM",
	CMSGPlayerLogin:      "CMSG_PLAYER_LOGIN",
	CMSGMessageChat:      "CMSG_MESSAGECHAT",
	SMSGMessageChat:      "SMSG_MESSAGECHAT",
	SMSGUpdateObject:     "SMSG_UPDATE_OBJECT",
	SMSGDestroyObject:    "SMSG_DESTROY_OBJECT",
	MSGMoveStartForward:  "MSG_MOVE_START_FORWARD",
	MSGMoveStartBackward: "MSG_MOVE_START_BACKWARD",
	MSGMoveStop:          "MSG_MOVE_STOP",
	MSGMoveStartStrafeL:  "MSG_MOVE_START_STRAFE_LEFT",
	MSGMoveStartStrafeR:  "MSG_MOVE_START_STRAFE_RIGHT",
	MSGMoveStopStrafe:    "MSG_MOVE_STOP_STRAFE",
	MSGMoveJump:          "MSG_MOVE_JUMP",
	MSGMoveStartTurnL:    "MSG_MOVE_START_TURN_LEFT",
	MSGMoveStartTurnR:    "MSG_MOVE_START_TURN_RIGHT",
	MSGMoveStopTurn:      "MSG_MOVE_STOP_TURN",
	MSGMoveFallLand:      "MSG_MOVE_FALL_LAND",
	MSGMoveHeartbeat:     "MSG_MOVE_HEARTBEAT",
	CMSGPing:             "CMSG_PING",
	SMSGPong:             "SMSG_PONG",
	SMSGAuthChallenge:    "SMSG_AUTH_CHALLENGE",
	CMSGAuthSession:      "CMSG_AUTH_SESSION",
	SMSGAuthResponse:     "SMSG_AUTH_RESPONSE",
	SMSGAccountDataTimes: "SMSG_ACCOUNT_DATA_TIMES",
	SMSGLoginVerifyWorld: "SMSG_LOGIN_VERIFY_WORLD",
	SMSGMotd:             "SMSG_MOTD",
}

// WorldOpcodeName returns a readable name for a world opcode, or a hex
// placeholder for opcodes this core does not handle.
func WorldOpcodeName(opcode uint32) string {
	if name, ok := worldOpcodeNames[opcode]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%03X)", opcode)
}

// AuthCommandName returns a readable name for an auth command tag.
func AuthCommandName(cmd uint32) string {
	switch cmd {
	case AuthLogonChallenge:
		return "AUTH_LOGON_CHALLENGE"
	case AuthLogonProof:
		return "AUTH_LOGON_PROOF"
	case AuthReconnectChallenge:
		return "AUTH_RECONNECT_CHALLENGE"
	case AuthReconnectProof:
		return "AUTH_RECONNECT_PROOF"
	case AuthRealmList:
		return "REALM_LIST"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", cmd)
	}
}
