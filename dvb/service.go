package dvb

import "github.com/zsiec/psikit/si"

// Common service types.
const (
	ServiceTypeDigitalTV    = 0x01
	ServiceTypeDigitalRadio = 0x02
	ServiceTypeHDTV         = 0x19
	ServiceTypeUHDTV        = 0x1F
)

// ServiceDescriptor names a service and its provider in the SDT.
type ServiceDescriptor struct {
	si.Validity
	Type     uint8
	Provider string
	Name     string
}

func (d *ServiceDescriptor) Tag() uint8      { return TagService }
func (d *ServiceDescriptor) XMLName() string { return "service_descriptor" }

func (d *ServiceDescriptor) Reset() { *d = ServiceDescriptor{} }

// EncodePayload trims the provider first, then the name, so both length
// prefixes always describe what was actually written.
func (d *ServiceDescriptor) EncodePayload(b *si.Buffer) {
	room := b.RemainingWriteBytes() - 3
	if si.MaxDescriptorPayload-3 < room {
		room = si.MaxDescriptorPayload - 3
	}
	if room < 0 {
		room = 0
	}
	provider := d.Provider
	if room < len(provider) {
		provider = provider[:room]
	}
	room -= len(provider)
	name := d.Name
	if room < len(name) {
		name = name[:room]
	}
	b.PutBits(uint64(d.Type), 8)
	b.PutBits(uint64(len(provider)), 8)
	b.PutBytes([]byte(provider))
	b.PutBits(uint64(len(name)), 8)
	b.PutBytes([]byte(name))
}

func (d *ServiceDescriptor) DecodePayload(b *si.Buffer) {
	d.Type = uint8(b.ReadBits(8))
	d.Provider = string(b.ReadBytes(int(b.ReadBits(8))))
	d.Name = string(b.ReadBytes(int(b.ReadBits(8))))
}

func (d *ServiceDescriptor) ToXML(e *si.XMLElement) {
	e.SetHexAttr("service_type", uint64(d.Type), 2)
	e.SetAttr("service_provider_name", d.Provider)
	e.SetAttr("service_name", d.Name)
}

func (d *ServiceDescriptor) FromXML(e *si.XMLElement) error {
	st, err := e.UIntAttr("service_type", 0xFF)
	if err != nil {
		return err
	}
	provider, _ := e.Attr("service_provider_name")
	name, err := e.RequireAttr("service_name")
	if err != nil {
		return err
	}
	d.Type = uint8(st)
	d.Provider = provider
	d.Name = name
	return nil
}
