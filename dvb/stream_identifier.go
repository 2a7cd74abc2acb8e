package dvb

import "github.com/zsiec/psikit/si"

// StreamIdentifierDescriptor tags a component so other tables can refer
// to it by component_tag.
type StreamIdentifierDescriptor struct {
	si.Validity
	ComponentTag uint8
}

func (d *StreamIdentifierDescriptor) Tag() uint8      { return TagStreamIdentifier }
func (d *StreamIdentifierDescriptor) XMLName() string { return "stream_identifier_descriptor" }

func (d *StreamIdentifierDescriptor) Reset() { *d = StreamIdentifierDescriptor{} }

func (d *StreamIdentifierDescriptor) EncodePayload(b *si.Buffer) {
	b.PutBits(uint64(d.ComponentTag), 8)
}

func (d *StreamIdentifierDescriptor) DecodePayload(b *si.Buffer) {
	d.ComponentTag = uint8(b.ReadBits(8))
}

func (d *StreamIdentifierDescriptor) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("component_tag", uint64(d.ComponentTag))
}

func (d *StreamIdentifierDescriptor) FromXML(e *si.XMLElement) error {
	tag, err := e.UIntAttr("component_tag", 0xFF)
	if err != nil {
		return err
	}
	d.ComponentTag = uint8(tag)
	return nil
}
