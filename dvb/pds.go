package dvb

import "github.com/zsiec/psikit/si"

// PrivateDataSpecifierDescriptor switches the private descriptor space
// for the tags that follow it in the same loop.
type PrivateDataSpecifierDescriptor struct {
	si.Validity
	Specifier uint32
}

func (d *PrivateDataSpecifierDescriptor) Tag() uint8 { return TagPrivateDataSpecifier }

func (d *PrivateDataSpecifierDescriptor) XMLName() string {
	return "private_data_specifier_descriptor"
}

func (d *PrivateDataSpecifierDescriptor) Reset() { *d = PrivateDataSpecifierDescriptor{} }

// PrivateDataSpecifier reports the space this descriptor announces; the
// descriptor engine tracks it while walking a loop.
func (d *PrivateDataSpecifierDescriptor) PrivateDataSpecifier() uint32 { return d.Specifier }

func (d *PrivateDataSpecifierDescriptor) EncodePayload(b *si.Buffer) {
	b.PutBits(uint64(d.Specifier), 32)
}

func (d *PrivateDataSpecifierDescriptor) DecodePayload(b *si.Buffer) {
	d.Specifier = uint32(b.ReadBits(32))
}

func (d *PrivateDataSpecifierDescriptor) ToXML(e *si.XMLElement) {
	e.SetHexAttr("private_data_specifier", uint64(d.Specifier), 8)
}

func (d *PrivateDataSpecifierDescriptor) FromXML(e *si.XMLElement) error {
	v, err := e.UIntAttr("private_data_specifier", 0xFFFFFFFF)
	if err != nil {
		return err
	}
	d.Specifier = uint32(v)
	return nil
}
