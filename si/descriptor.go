package si

import "fmt"

// MaxDescriptorPayload is the largest payload one descriptor can carry:
// the 8-bit descriptor_length bounds it to 255 bytes.
const MaxDescriptorPayload = 255

// Validity tracks whether a decoded structure passed its structural
// checks. The zero value is valid. Concrete descriptor and table types
// embed it to satisfy the Valid/SetValid half of their contract.
type Validity struct {
	invalid bool
}

// Valid reports whether the structure's content can be trusted and
// re-encoded.
func (v *Validity) Valid() bool { return !v.invalid }

// SetValid marks the structure valid or invalid.
func (v *Validity) SetValid(ok bool) { v.invalid = !ok }

// Descriptor is the codec contract every concrete descriptor type
// implements. Instances hold no state beyond their decoded field values.
//
// EncodePayload writes the type's defined layout after the tag and
// length framing, which the engine supplies; DecodePayload is its exact
// inverse, reading from a buffer capped to the descriptor's declared
// length. Neither assumes anything about the enclosing section. On
// structural inconsistency a decode marks the instance invalid and stops
// consuming rather than guessing.
type Descriptor interface {
	Tag() uint8
	XMLName() string
	Reset()
	Valid() bool
	SetValid(bool)
	EncodePayload(b *Buffer)
	DecodePayload(b *Buffer)
	ToXML(e *XMLElement)
	FromXML(e *XMLElement) error
}

// ExtensionDescriptor is implemented by descriptor types living in the
// extension namespace: their wire tag is the extension sentinel and the
// first payload byte is the secondary tag, both handled by the engine.
type ExtensionDescriptor interface {
	Descriptor
	ExtensionTag() uint8
}

// privateDataSpecifier is implemented by the descriptor type that
// switches the private data space for the remainder of its list.
type privateDataSpecifier interface {
	PrivateDataSpecifier() uint32
}

// DecodeContext carries the read-side surroundings a descriptor list
// needs for tag resolution: the registry, the owning table id, and the
// private data space currently in effect.
type DecodeContext struct {
	Registry *Registry
	TableID  uint8
	PDS      uint32
}

// RawDescriptor is the fallback representation for tags no registered
// type claims: the payload is kept verbatim for display or passthrough,
// and re-encodes byte-identically.
type RawDescriptor struct {
	Validity
	RawTag uint8
	Data   []byte
}

func (d *RawDescriptor) Tag() uint8      { return d.RawTag }
func (d *RawDescriptor) XMLName() string { return "raw_descriptor" }

func (d *RawDescriptor) Reset() {
	d.RawTag = 0
	d.Data = nil
	d.SetValid(true)
}

func (d *RawDescriptor) EncodePayload(b *Buffer) {
	b.PutBytes(d.Data)
}

func (d *RawDescriptor) DecodePayload(b *Buffer) {
	d.Data = b.ReadBytes(b.RemainingReadBytes())
}

func (d *RawDescriptor) ToXML(e *XMLElement) {
	e.SetHexAttr("tag", uint64(d.RawTag), 2)
	e.SetHexText(d.Data)
}

func (d *RawDescriptor) FromXML(e *XMLElement) error {
	tag, err := e.UIntAttr("tag", 0xFF)
	if err != nil {
		return err
	}
	data, err := e.HexText()
	if err != nil {
		return err
	}
	d.RawTag = uint8(tag)
	d.Data = data
	return nil
}

// EncodeDescriptor writes one descriptor with its tag and length framing,
// inserting the secondary tag byte for extension-namespace types.
func EncodeDescriptor(b *Buffer, d Descriptor) {
	b.PutBits(uint64(d.Tag()), 8)
	b.PushWriteLength(8)
	if xd, ok := d.(ExtensionDescriptor); ok {
		b.PutBits(uint64(xd.ExtensionTag()), 8)
	}
	d.EncodePayload(b)
	b.PopLength()
}

// DecodeDescriptor reads one descriptor at the read cursor, resolving its
// tag against the context. Unresolved tags yield a RawDescriptor; decode
// of the enclosing structure never fails just because one descriptor is
// type-unknown.
func DecodeDescriptor(ctx *DecodeContext, b *Buffer) Descriptor {
	tag := uint8(b.ReadBits(8))
	b.PushReadLength(8)
	defer b.PopLength()

	var extTag uint8
	if tag == DescriptorTagExtension && b.CanReadBits(8) {
		extTag = uint8(b.PeekBits(8))
	}
	var d Descriptor
	if reg, ok := ctx.Registry.ResolveDescriptor(ctx.TableID, ctx.PDS, tag, extTag); ok {
		d = reg.New()
		if reg.ID.Kind == ScopeExtension {
			b.SkipBits(8) // secondary tag, already resolved
		}
		d.DecodePayload(b)
	} else {
		raw := &RawDescriptor{RawTag: tag}
		raw.DecodePayload(b)
		d = raw
	}
	if b.Error() {
		d.SetValid(false)
	}
	return d
}

// DescriptorSize returns the encoded size of d in bytes, including its
// tag and length framing.
func DescriptorSize(d Descriptor) int {
	b := NewBuffer(MaxDescriptorPayload + 2)
	EncodeDescriptor(b, d)
	return b.BytesWritten()
}

// DescriptorList is an ordered descriptor loop. The engine tracks the
// private data space while decoding so that private tags following a
// private_data_specifier_descriptor resolve in the announced space.
type DescriptorList []Descriptor

// Encode writes every descriptor in the list with its framing. The list's
// outer length field, where the format has one, is the caller's region.
func (dl DescriptorList) Encode(b *Buffer) {
	for _, d := range dl {
		EncodeDescriptor(b, d)
	}
}

// EncodeTruncated writes descriptors while they fit the buffer's
// remaining capacity and returns how many were written. Trailing
// descriptors that do not fit are dropped, never emitted malformed.
func (dl DescriptorList) EncodeTruncated(b *Buffer) int {
	for i, d := range dl {
		if DescriptorSize(d) > b.RemainingWriteBytes() {
			return i
		}
		EncodeDescriptor(b, d)
	}
	return len(dl)
}

// BinarySize returns the encoded size of the whole list in bytes.
func (dl DescriptorList) BinarySize() int {
	n := 0
	for _, d := range dl {
		n += DescriptorSize(d)
	}
	return n
}

// Decode reads descriptors until the current read region is exhausted,
// updating the context's private data space as specifier descriptors go
// by.
func (dl *DescriptorList) Decode(ctx *DecodeContext, b *Buffer) {
	for b.CanReadBits(16) {
		d := DecodeDescriptor(ctx, b)
		if pd, ok := d.(privateDataSpecifier); ok {
			ctx.PDS = pd.PrivateDataSpecifier()
		}
		*dl = append(*dl, d)
	}
}

// ToXML appends one child element per descriptor.
func (dl DescriptorList) ToXML(e *XMLElement) {
	for _, d := range dl {
		child := NewElement(d.XMLName())
		d.ToXML(child)
		e.AppendChild(child)
	}
}

// DescriptorFromXML converts one element to a descriptor if its name is
// a registered descriptor type (or raw_descriptor). The second return
// value is false when the element is not a descriptor at all, so table
// converters can skip their own entry elements.
func DescriptorFromXML(reg *Registry, e *XMLElement) (Descriptor, bool, error) {
	var d Descriptor
	if r, ok := reg.DescriptorByName(e.Name); ok {
		d = r.New()
	} else if e.Name == "raw_descriptor" {
		d = &RawDescriptor{}
	} else {
		return nil, false, nil
	}
	if err := d.FromXML(e); err != nil {
		return nil, true, fmt.Errorf("si: converting <%s>: %w", e.Name, err)
	}
	return d, true, nil
}
