package dvb

import "github.com/zsiec/psikit/si"

// NetworkNameDescriptor carries the human-readable network name in the
// NIT's first descriptor loop.
type NetworkNameDescriptor struct {
	si.Validity
	Name string
}

func (d *NetworkNameDescriptor) Tag() uint8      { return TagNetworkName }
func (d *NetworkNameDescriptor) XMLName() string { return "network_name_descriptor" }

func (d *NetworkNameDescriptor) Reset() { *d = NetworkNameDescriptor{} }

// EncodePayload truncates the name at a byte boundary when the region
// cannot hold all of it.
func (d *NetworkNameDescriptor) EncodePayload(b *si.Buffer) {
	n := len(d.Name)
	if b.RemainingWriteBytes() < n {
		n = b.RemainingWriteBytes()
	}
	if si.MaxDescriptorPayload < n {
		n = si.MaxDescriptorPayload
	}
	b.PutBytes([]byte(d.Name[:n]))
}

func (d *NetworkNameDescriptor) DecodePayload(b *si.Buffer) {
	d.Name = string(b.ReadBytes(b.RemainingReadBytes()))
}

func (d *NetworkNameDescriptor) ToXML(e *si.XMLElement) {
	e.SetAttr("network_name", d.Name)
}

func (d *NetworkNameDescriptor) FromXML(e *si.XMLElement) error {
	name, err := e.RequireAttr("network_name")
	if err != nil {
		return err
	}
	d.Name = name
	return nil
}
