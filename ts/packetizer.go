package ts

import (
	"fmt"

	"github.com/zsiec/psikit/si"
)

// Packetizer slices encoded sections into transport stream packets on
// one PID, keeping the continuity counter across calls. Each section
// starts a fresh packet with the payload unit start indicator set and a
// zero pointer field; the tail of the last packet is stuffed with 0xFF.
type Packetizer struct {
	pid uint16
	cc  uint8
}

// NewPacketizer returns a packetizer for one PID.
func NewPacketizer(pid uint16) *Packetizer {
	return &Packetizer{pid: pid}
}

// Packetize encodes the sections and returns the concatenated packets
// carrying them.
func (pz *Packetizer) Packetize(sections ...*si.Section) ([]byte, error) {
	var out []byte
	for _, s := range sections {
		data, err := s.Encode()
		if err != nil {
			return nil, fmt.Errorf("ts: encoding section for PID 0x%04X: %w", pz.pid, err)
		}
		// pointer_field precedes the section in the first packet.
		payload := make([]byte, 0, len(data)+1)
		payload = append(payload, 0)
		payload = append(payload, data...)

		for offset, first := 0, true; offset < len(payload); {
			var pkt [PacketSize]byte
			pkt[0] = SyncByte
			pkt[1] = byte(pz.pid>>8) & 0x1F
			if first {
				pkt[1] |= 0x40
				first = false
			}
			pkt[2] = byte(pz.pid)
			pkt[3] = 0x10 | (pz.cc & 0x0F)
			pz.cc = (pz.cc + 1) & 0x0F

			n := copy(pkt[4:], payload[offset:])
			offset += n
			for i := 4 + n; i < PacketSize; i++ {
				pkt[i] = 0xFF
			}
			out = append(out, pkt[:]...)
		}
	}
	return out, nil
}
