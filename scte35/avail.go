package scte35

import "github.com/zsiec/psikit/si"

// AvailDescriptorTag is the splice_descriptor_tag for avail_descriptor.
const AvailDescriptorTag uint8 = 0x00

// AvailDescriptor tags a SpliceInsert with a provider-defined avail
// number.
type AvailDescriptor struct {
	si.Validity
	Identifier      uint32 // CUEIdentifier when zero
	ProviderAvailID uint32
}

func (d *AvailDescriptor) Tag() uint8      { return AvailDescriptorTag }
func (d *AvailDescriptor) XMLName() string { return "avail_descriptor" }

func (d *AvailDescriptor) Reset() { *d = AvailDescriptor{} }

func (d *AvailDescriptor) EncodePayload(b *si.Buffer) {
	id := d.Identifier
	if id == 0 {
		id = CUEIdentifier
	}
	b.PutBits(uint64(id), 32)
	b.PutBits(uint64(d.ProviderAvailID), 32)
}

func (d *AvailDescriptor) DecodePayload(b *si.Buffer) {
	d.Identifier = uint32(b.ReadBits(32))
	d.ProviderAvailID = uint32(b.ReadBits(32))
}

func (d *AvailDescriptor) ToXML(e *si.XMLElement) {
	if d.Identifier != 0 && d.Identifier != CUEIdentifier {
		e.SetHexAttr("identifier", uint64(d.Identifier), 8)
	}
	e.SetHexAttr("provider_avail_id", uint64(d.ProviderAvailID), 8)
}

func (d *AvailDescriptor) FromXML(e *si.XMLElement) error {
	d.Reset()
	ident, err := e.OptUIntAttr("identifier", 0, 0xFFFFFFFF)
	if err != nil {
		return err
	}
	d.Identifier = uint32(ident)
	id, err := e.UIntAttr("provider_avail_id", 0xFFFFFFFF)
	if err != nil {
		return err
	}
	d.ProviderAvailID = uint32(id)
	return nil
}
