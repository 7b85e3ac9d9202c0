package protocol

import (
	"encoding/binary"
	"fmt"
)

// DropPayload is the fixed-layout body of an item drop packet. All multi-byte
// fields are little-endian. Position and velocity are carried on the wire but
// unused by provenance tracking.
type DropPayload struct {
	SlotIndex byte
	PosX      int16
	PosY      int16
	VelX      int16
	VelY      int16
	Stack     int16
	Prefix    byte
	ItemID    int16
}

const dropPayloadLen = 14

func DecodeDropPayload(b []byte) (DropPayload, error) {
	var p DropPayload
	if len(b) < dropPayloadLen {
		return p, fmt.Errorf("drop payload too short: %d bytes, want %d", len(b), dropPayloadLen)
	}
	p.SlotIndex = b[0]
	p.PosX = int16(binary.LittleEndian.Uint16(b[1:3]))
	p.PosY = int16(binary.LittleEndian.Uint16(b[3:5]))
	p.VelX = int16(binary.LittleEndian.Uint16(b[5:7]))
	p.VelY = int16(binary.LittleEndian.Uint16(b[7:9]))
	p.Stack = int16(binary.LittleEndian.Uint16(b[9:11]))
	p.Prefix = b[11]
	p.ItemID = int16(binary.LittleEndian.Uint16(b[12:14]))
	return p, nil
}

func EncodeDropPayload(p DropPayload) []byte {
	b := make([]byte, dropPayloadLen)
	b[0] = p.SlotIndex
	binary.LittleEndian.PutUint16(b[1:3], uint16(p.PosX))
	binary.LittleEndian.PutUint16(b[3:5], uint16(p.PosY))
	binary.LittleEndian.PutUint16(b[5:7], uint16(p.VelX))
	binary.LittleEndian.PutUint16(b[7:9], uint16(p.VelY))
	binary.LittleEndian.PutUint16(b[9:11], uint16(p.Stack))
	b[11] = p.Prefix
	binary.LittleEndian.PutUint16(b[12:14], uint16(p.ItemID))
	return b
}
