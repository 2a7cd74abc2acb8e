package dvb

import "github.com/zsiec/psikit/si"

// MaximumBitrateDescriptor carries the stream's peak rate in units of
// 50 bytes per second.
type MaximumBitrateDescriptor struct {
	si.Validity
	Bitrate uint32 // 22 bits
}

func (d *MaximumBitrateDescriptor) Tag() uint8      { return TagMaximumBitrate }
func (d *MaximumBitrateDescriptor) XMLName() string { return "maximum_bitrate_descriptor" }

func (d *MaximumBitrateDescriptor) Reset() { *d = MaximumBitrateDescriptor{} }

func (d *MaximumBitrateDescriptor) EncodePayload(b *si.Buffer) {
	b.PutReserved(2)
	b.PutBits(uint64(d.Bitrate), 22)
}

func (d *MaximumBitrateDescriptor) DecodePayload(b *si.Buffer) {
	b.SkipReserved(2)
	d.Bitrate = uint32(b.ReadBits(22))
}

func (d *MaximumBitrateDescriptor) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("maximum_bitrate", uint64(d.Bitrate))
}

func (d *MaximumBitrateDescriptor) FromXML(e *si.XMLElement) error {
	rate, err := e.UIntAttr("maximum_bitrate", 1<<22-1)
	if err != nil {
		return err
	}
	d.Bitrate = uint32(rate)
	return nil
}
