// Package ts carries si sections in MPEG transport stream packets:
// packetizing sections onto a PID and reassembling them back out of a
// 188-byte packet stream, with continuity and discontinuity handling.
package ts

import "fmt"

const (
	// PacketSize is the fixed size of a transport stream packet.
	PacketSize = 188

	// SyncByte opens every transport stream packet.
	SyncByte = 0x47
)

// Well-known PIDs.
const (
	PIDPAT  uint16 = 0x0000
	PIDNull uint16 = 0x1FFF
)

// Packet is a parsed transport stream packet.
type Packet struct {
	PID               uint16
	ContinuityCounter uint8
	PayloadStart      bool
	TransportError    bool
	Discontinuity     bool
	HasAdaptation     bool
	Payload           []byte
}

// ParsePacket parses one 188-byte transport stream packet. The payload
// slice aliases buf.
func ParsePacket(buf []byte) (*Packet, error) {
	if len(buf) != PacketSize {
		return nil, fmt.Errorf("ts: packet size %d, expected %d", len(buf), PacketSize)
	}
	if buf[0] != SyncByte {
		return nil, fmt.Errorf("ts: invalid sync byte 0x%02X", buf[0])
	}

	p := &Packet{
		PID:               uint16(buf[1]&0x1F)<<8 | uint16(buf[2]),
		ContinuityCounter: buf[3] & 0x0F,
		PayloadStart:      buf[1]&0x40 != 0,
		TransportError:    buf[1]&0x80 != 0,
		HasAdaptation:     buf[3]&0x20 != 0,
	}

	offset := 4
	if p.HasAdaptation {
		afLen := int(buf[offset])
		if afLen > 0 && offset+1 < PacketSize {
			p.Discontinuity = buf[offset+1]&0x80 != 0
		}
		offset += 1 + afLen
		if offset > PacketSize {
			return nil, fmt.Errorf("ts: adaptation field length %d overruns the packet", afLen)
		}
	}
	if buf[3]&0x10 != 0 && offset < PacketSize {
		p.Payload = buf[offset:]
	}
	return p, nil
}
