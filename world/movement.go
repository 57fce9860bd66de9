package world

import "github.com/MeulenG/Puhaa-WoW/packet"

// Movement flag bits carried in every movement packet.
const (
	MoveFlagForward     uint32 = 0x00000001
	MoveFlagBackward    uint32 = 0x00000002
	MoveFlagStrafeLeft  uint32 = 0x00000004
	MoveFlagStrafeRight uint32 = 0x00000008
	MoveFlagTurnLeft    uint32 = 0x00000010
	MoveFlagTurnRight   uint32 = 0x00000020
	MoveFlagWalking     uint32 = 0x00000100
	MoveFlagFalling     uint32 = 0x00001000
	MoveFlagFallingFar  uint32 = 0x00002000
	MoveFlagSwimming    uint32 = 0x00200000
	MoveFlagFlying      uint32 = 0x02000000
)

// MovementInfo is the client's current movement state, serialized into
// every outgoing movement packet. Pitch and fall fields are written only
// when the corresponding flags demand them.
type MovementInfo struct {
	Flags       uint32
	Flags2      uint16
	Time        uint32
	X, Y, Z     float32
	Orientation float32
	Pitch       float32

	FallTime     uint32
	JumpVelocity float32
	JumpSinAngle float32
	JumpCosAngle float32
	JumpXYSpeed  float32
}

// HasFlag reports whether all given flag bits are set.
func (m MovementInfo) HasFlag(flag uint32) bool {
	return m.Flags&flag == flag
}

// buildMovement serializes the movement state under the given opcode.
func buildMovement(opcode uint32, info MovementInfo) *packet.Packet {
	p := packet.New(opcode)
	p.WriteUint32(info.Flags)
	p.WriteUint16(info.Flags2)
	p.WriteUint32(info.Time)
	p.WriteFloat32(info.X)
	p.WriteFloat32(info.Y)
	p.WriteFloat32(info.Z)
	p.WriteFloat32(info.Orientation)

	if info.HasFlag(MoveFlagSwimming) || info.HasFlag(MoveFlagFlying) {
		p.WriteFloat32(info.Pitch)
	}
	if info.HasFlag(MoveFlagFalling) {
		p.WriteUint32(info.FallTime)
		p.WriteFloat32(info.JumpVelocity)
		if info.HasFlag(MoveFlagFallingFar) {
			p.WriteFloat32(info.JumpSinAngle)
			p.WriteFloat32(info.JumpCosAngle)
			p.WriteFloat32(info.JumpXYSpeed)
		}
	}
	return p
}

// applyMovementFlags mutates the flag word for a movement opcode: start
// opcodes set their bit, stop opcodes clear the whole axis.
func applyMovementFlags(flags uint32, opcode uint32) uint32 {
	switch opcode {
	case packet.MSGMoveStartForward:
		return flags | MoveFlagForward
	case packet.MSGMoveStartBackward:
		return flags | MoveFlagBackward
	case packet.MSGMoveStop:
		return flags &^ (MoveFlagForward | MoveFlagBackward)
	case packet.MSGMoveStartStrafeL:
		return flags | MoveFlagStrafeLeft
	case packet.MSGMoveStartStrafeR:
		return flags | MoveFlagStrafeRight
	case packet.MSGMoveStopStrafe:
		return flags &^ (MoveFlagStrafeLeft | MoveFlagStrafeRight)
	case packet.MSGMoveJump:
		return flags | MoveFlagFalling
	case packet.MSGMoveStartTurnL:
		return flags | MoveFlagTurnLeft
	case packet.MSGMoveStartTurnR:
		return flags | MoveFlagTurnRight
	case packet.MSGMoveStopTurn:
		return flags &^ (MoveFlagTurnLeft | MoveFlagTurnRight)
	case packet.MSGMoveFallLand:
		return flags &^ MoveFlagFalling
	default:
		// Heartbeat and unknown opcodes report state without changing it.
		return flags
	}
}
