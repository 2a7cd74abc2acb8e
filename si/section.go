package si

import "fmt"

const (
	// MaxStandardSectionSize bounds PSI/SI sections of the standard
	// family (PAT, PMT, SDT, NIT and friends).
	MaxStandardSectionSize = 1024

	// MaxPrivateSectionSize bounds sections of the private family,
	// including SCTE-35 splice information sections.
	MaxPrivateSectionSize = 4096

	// ShortHeaderSize is the size of the header shared by all sections:
	// table_id, flag bits and the 12-bit section_length.
	ShortHeaderSize = 3

	// LongHeaderSize additionally covers table_id_extension, version,
	// current_next, section_number and last_section_number.
	LongHeaderSize = 8

	// CRCSize is the size of the trailing CRC32 of protected sections.
	CRCSize = 4
)

// Section is one self-contained binary envelope: the atomic unit of
// on-wire transmission. A logical table may span several sections sharing
// the same table id, extension and version, numbered 0..LastNumber.
//
// Long-syntax sections carry the extension/version/numbering header and
// are always CRC protected. Short-syntax sections normally are not, but a
// family may protect them anyway (SCTE-35 does); CRCProtected records
// that independently of the syntax.
type Section struct {
	TableID          uint8
	LongSyntax       bool // section_syntax_indicator
	PrivateIndicator bool // the header bit after the syntax indicator
	PrivateFamily    bool // 4096-byte family instead of 1024
	CRCProtected     bool

	// Long-syntax header fields.
	TableIDExt uint16
	Version    uint8 // 5 bits
	Current    bool
	Number     uint8
	LastNumber uint8

	Payload []byte
}

// MaxSize returns the family's maximum total section size.
func (s *Section) MaxSize() int {
	if s.PrivateFamily {
		return MaxPrivateSectionSize
	}
	return MaxStandardSectionSize
}

// HeaderSize returns the encoded header size for this section's syntax.
func (s *Section) HeaderSize() int {
	if s.LongSyntax {
		return LongHeaderSize
	}
	return ShortHeaderSize
}

// hasCRC reports whether the encoded form carries a trailing CRC32.
// Long syntax always does; CRCProtected extends that to short-syntax
// families like SCTE-35.
func (s *Section) hasCRC() bool {
	return s.LongSyntax || s.CRCProtected
}

// Size returns the total encoded size of the section.
func (s *Section) Size() int {
	n := s.HeaderSize() + len(s.Payload)
	if s.hasCRC() {
		n += CRCSize
	}
	return n
}

// Encode serializes the section, computing section_length and, for
// protected sections, the trailing CRC32.
func (s *Section) Encode() ([]byte, error) {
	size := s.Size()
	if size > s.MaxSize() {
		return nil, fmt.Errorf("si: section 0x%02X size %d exceeds maximum %d: %w",
			s.TableID, size, s.MaxSize(), ErrStructure)
	}
	b := NewBuffer(size)
	b.PutBits(uint64(s.TableID), 8)
	b.PutBool(s.LongSyntax)
	b.PutBool(s.PrivateIndicator)
	b.PutReserved(2)
	// section_length is written up front rather than backpatched: the CRC
	// covers it, so it must be final before the checksum is computed.
	b.PutBits(uint64(size-ShortHeaderSize), 12)
	if s.LongSyntax {
		b.PutBits(uint64(s.TableIDExt), 16)
		b.PutReserved(2)
		b.PutBits(uint64(s.Version), 5)
		b.PutBool(s.Current)
		b.PutBits(uint64(s.Number), 8)
		b.PutBits(uint64(s.LastNumber), 8)
	}
	b.PutBytes(s.Payload)
	if s.hasCRC() {
		b.PutBits(uint64(CRC32(b.Bytes())), 32)
	}
	if b.Error() {
		return nil, fmt.Errorf("si: section 0x%02X encode overran its buffer: %w",
			s.TableID, ErrStructure)
	}
	return b.Bytes(), nil
}

// SectionOption adjusts decoding for families whose conventions cannot be
// inferred from the section header alone.
type SectionOption func(*Section)

// SectionWithCRC marks the section CRC protected even when it uses the
// short syntax, as SCTE-35 splice sections do.
func SectionWithCRC() SectionOption {
	return func(s *Section) { s.CRCProtected = true }
}

// SectionPrivateFamily places the section in the 4096-byte family.
func SectionPrivateFamily() SectionOption {
	return func(s *Section) { s.PrivateFamily = true }
}

// DecodeSection parses one section from data, verifying section_length
// against the available bytes and the CRC32 for protected sections. Extra
// bytes after the section (stuffing in a transport payload) are ignored.
func DecodeSection(data []byte, opts ...SectionOption) (*Section, error) {
	if len(data) < ShortHeaderSize {
		return nil, fmt.Errorf("si: section shorter than header: %w", ErrStructure)
	}
	s := &Section{}
	for _, opt := range opts {
		opt(s)
	}
	s.TableID = data[0]
	s.LongSyntax = data[1]&0x80 != 0
	s.PrivateIndicator = data[1]&0x40 != 0
	sectionLength := int(data[1]&0x0F)<<8 | int(data[2])
	total := ShortHeaderSize + sectionLength
	if total > len(data) {
		return nil, fmt.Errorf("si: section 0x%02X length %d exceeds %d available bytes: %w",
			s.TableID, sectionLength, len(data)-ShortHeaderSize, ErrStructure)
	}
	if total > s.MaxSize() {
		return nil, fmt.Errorf("si: section 0x%02X size %d exceeds maximum %d: %w",
			s.TableID, total, s.MaxSize(), ErrStructure)
	}
	raw := data[:total]
	if s.LongSyntax {
		s.CRCProtected = true
	}
	if s.CRCProtected {
		if err := verifyCRC32(raw); err != nil {
			return nil, err
		}
	}
	payloadStart := s.HeaderSize()
	payloadEnd := total
	if s.CRCProtected {
		payloadEnd -= CRCSize
	}
	if payloadEnd < payloadStart {
		return nil, fmt.Errorf("si: section 0x%02X too short for its syntax: %w",
			s.TableID, ErrStructure)
	}
	if s.LongSyntax {
		s.TableIDExt = uint16(raw[3])<<8 | uint16(raw[4])
		s.Version = raw[5] >> 1 & 0x1F
		s.Current = raw[5]&0x01 != 0
		s.Number = raw[6]
		s.LastNumber = raw[7]
	}
	s.Payload = make([]byte, payloadEnd-payloadStart)
	copy(s.Payload, raw[payloadStart:payloadEnd])
	return s, nil
}
