package dvb

import "github.com/zsiec/psikit/si"

// LogicalChannelNumberDescriptor is the EACEM channel ordering
// descriptor. Its tag collides with other private spaces, so it only
// resolves after a private_data_specifier_descriptor announcing
// PDSEACEM.
type LogicalChannelNumberDescriptor struct {
	si.Validity
	Channels []LogicalChannel
}

// LogicalChannel assigns a channel number to one service.
type LogicalChannel struct {
	ServiceID uint16
	Visible   bool
	Number    uint16 // 10 bits
}

func (d *LogicalChannelNumberDescriptor) Tag() uint8 { return TagLogicalChannelNumber }

func (d *LogicalChannelNumberDescriptor) XMLName() string {
	return "logical_channel_number_descriptor"
}

func (d *LogicalChannelNumberDescriptor) Reset() { *d = LogicalChannelNumberDescriptor{} }

// EncodePayload emits four-byte entries while they fit, dropping
// trailing channels when the region is short.
func (d *LogicalChannelNumberDescriptor) EncodePayload(b *si.Buffer) {
	n := b.RemainingWriteBytes() / 4
	if si.MaxDescriptorPayload/4 < n {
		n = si.MaxDescriptorPayload / 4
	}
	if len(d.Channels) < n {
		n = len(d.Channels)
	}
	for _, c := range d.Channels[:n] {
		b.PutBits(uint64(c.ServiceID), 16)
		b.PutBool(c.Visible)
		b.PutReserved(5)
		b.PutBits(uint64(c.Number), 10)
	}
}

func (d *LogicalChannelNumberDescriptor) DecodePayload(b *si.Buffer) {
	for b.CanReadBits(32) {
		var c LogicalChannel
		c.ServiceID = uint16(b.ReadBits(16))
		c.Visible = b.ReadBool()
		b.SkipReserved(5)
		c.Number = uint16(b.ReadBits(10))
		d.Channels = append(d.Channels, c)
	}
}

func (d *LogicalChannelNumberDescriptor) ToXML(e *si.XMLElement) {
	for _, c := range d.Channels {
		lc := si.NewElement("logical_channel")
		lc.SetHexAttr("service_id", uint64(c.ServiceID), 4)
		lc.SetBoolAttr("visible", c.Visible)
		lc.SetUIntAttr("channel_number", uint64(c.Number))
		e.AppendChild(lc)
	}
}

func (d *LogicalChannelNumberDescriptor) FromXML(e *si.XMLElement) error {
	for _, lc := range e.ChildrenNamed("logical_channel") {
		var c LogicalChannel
		sid, err := lc.UIntAttr("service_id", 0xFFFF)
		if err != nil {
			return err
		}
		visible, err := lc.BoolAttr("visible", true)
		if err != nil {
			return err
		}
		num, err := lc.UIntAttr("channel_number", 1<<10-1)
		if err != nil {
			return err
		}
		c.ServiceID = uint16(sid)
		c.Visible = visible
		c.Number = uint16(num)
		d.Channels = append(d.Channels, c)
	}
	return nil
}
