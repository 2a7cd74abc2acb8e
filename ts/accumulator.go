package ts

import (
	"fmt"

	"github.com/zsiec/psikit/si"
)

// Accumulator reassembles raw sections from the packets of one PID.
// Packets with transport errors reset the buffer, duplicate packets are
// dropped, and an unsignaled continuity jump discards the partial
// section rather than emitting a corrupt one.
type Accumulator struct {
	pid     uint16
	buf     []byte
	lastCC  uint8
	started bool
}

// NewAccumulator returns an accumulator for one PID.
func NewAccumulator(pid uint16) *Accumulator {
	return &Accumulator{pid: pid}
}

func (a *Accumulator) reset() {
	a.buf = nil
	a.started = false
}

// Add feeds one packet and returns any raw sections it completed.
// Packets on other PIDs are ignored.
func (a *Accumulator) Add(p *Packet) [][]byte {
	if p.PID != a.pid {
		return nil
	}
	if p.TransportError {
		a.reset()
		return nil
	}
	if p.Payload == nil {
		return nil
	}
	if a.started && !p.Discontinuity {
		expected := (a.lastCC + 1) & 0x0F
		if p.ContinuityCounter != expected {
			if p.ContinuityCounter == a.lastCC {
				return nil // duplicate, drop
			}
			a.reset()
		}
	}
	a.lastCC = p.ContinuityCounter

	payload := p.Payload
	if p.PayloadStart {
		pointer := int(payload[0])
		if 1+pointer > len(payload) {
			a.reset()
			return nil
		}
		// Bytes before the pointer target finish the previous section.
		if a.started {
			a.buf = append(a.buf, payload[1:1+pointer]...)
		}
		tail := a.extract()
		a.buf = append([]byte(nil), payload[1+pointer:]...)
		a.started = true
		return append(tail, a.extract()...)
	}
	if !a.started {
		return nil
	}
	a.buf = append(a.buf, payload...)
	return a.extract()
}

// extract peels complete sections off the front of the buffer. A
// stuffing byte where a table id should be ends the payload unit.
func (a *Accumulator) extract() [][]byte {
	var out [][]byte
	for {
		if len(a.buf) > 0 && a.buf[0] == 0xFF {
			a.buf = nil
			return out
		}
		if len(a.buf) < si.ShortHeaderSize {
			return out
		}
		total := si.ShortHeaderSize + (int(a.buf[1]&0x0F)<<8 | int(a.buf[2]))
		if len(a.buf) < total {
			return out
		}
		sec := append([]byte(nil), a.buf[:total]...)
		a.buf = a.buf[total:]
		out = append(out, sec)
	}
}

// ExtractSections walks a whole transport stream buffer and decodes the
// sections carried on one PID.
func ExtractSections(data []byte, pid uint16, opts ...si.SectionOption) ([]*si.Section, error) {
	if len(data)%PacketSize != 0 {
		return nil, fmt.Errorf("ts: stream length %d is not a packet multiple", len(data))
	}
	acc := NewAccumulator(pid)
	var sections []*si.Section
	for off := 0; off < len(data); off += PacketSize {
		p, err := ParsePacket(data[off : off+PacketSize])
		if err != nil {
			return nil, fmt.Errorf("ts: packet at offset %d: %w", off, err)
		}
		for _, raw := range acc.Add(p) {
			sec, err := si.DecodeSection(raw, opts...)
			if err != nil {
				return nil, fmt.Errorf("ts: section on PID 0x%04X: %w", pid, err)
			}
			sections = append(sections, sec)
		}
	}
	return sections, nil
}
