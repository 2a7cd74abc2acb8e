// Package scte35 implements SCTE-35 splice information sections on the
// si section engine. The splice_info_section is a short-syntax table in
// the 4096-byte family with a trailing CRC; its descriptors live in the
// table-scoped namespace under the CUEI identifier.
package scte35

import "github.com/zsiec/psikit/si"

// TableID is the splice_info_section table id.
const TableID = 0xFC

// Splice command types.
const (
	CommandSpliceNull   uint8 = 0x00
	CommandSpliceInsert uint8 = 0x05
	CommandTimeSignal   uint8 = 0x06
)

// CUEIdentifier is the ASCII "CUEI" registration that SCTE-35
// descriptors carry at the start of their payload.
const CUEIdentifier uint32 = 0x43554549

// legacyCommandLength marks a splice_command_length that predates the
// field being filled in; the command is then self-delimiting.
const legacyCommandLength = 0xFFF

// Command is one splice command. Commands are self-delimiting on the
// wire, which is what makes the legacy all-ones command length workable.
type Command interface {
	Type() uint8
	xmlName() string
	encode(b *si.Buffer)
	decode(b *si.Buffer)
	toXML(e *si.XMLElement)
	fromXML(e *si.XMLElement) error
}

// SpliceTime is an optional 33-bit PTS carried by several commands.
type SpliceTime struct {
	PTS *uint64
}

func encodeSpliceTime(b *si.Buffer, st SpliceTime) {
	b.PutBool(st.PTS != nil)
	if st.PTS != nil {
		b.PutReserved(6)
		b.PutBits(*st.PTS, 33)
	} else {
		b.PutReserved(7)
	}
}

func decodeSpliceTime(b *si.Buffer) SpliceTime {
	var st SpliceTime
	if b.ReadBool() {
		b.SkipReserved(6)
		pts := b.ReadBits(33)
		st.PTS = &pts
	} else {
		b.SkipReserved(7)
	}
	return st
}

// SpliceInfo is the splice_info_section. The zero value with a nil
// Command encodes as a SpliceNull heartbeat.
type SpliceInfo struct {
	si.Validity
	PTSAdjustment uint64 // 33 bits
	Tier          uint16 // 12 bits
	Command       Command
	Descriptors   si.DescriptorList
}

func (t *SpliceInfo) Identity() si.TableIdentity {
	return si.TableIdentity{TableID: TableID}
}

func (t *SpliceInfo) Packing() si.TablePacking {
	return si.TablePacking{
		PrivateFamily:    true,
		CRCProtected:     true,
		EntryRegionWidth: 16,
	}
}

func (t *SpliceInfo) XMLName() string { return "splice_information_table" }

func (t *SpliceInfo) Reset() {
	*t = SpliceInfo{Tier: 0xFFF}
	t.SetValid(true)
}

func (t *SpliceInfo) command() Command {
	if t.Command == nil {
		return &SpliceNull{}
	}
	return t.Command
}

func (t *SpliceInfo) EncodeCommon(b *si.Buffer) {
	b.PutBits(0, 8) // protocol_version
	b.PutBool(false)
	b.PutBits(0, 6) // encryption_algorithm
	b.PutBits(t.PTSAdjustment, 33)
	b.PutBits(0, 8) // cw_index
	b.PutBits(uint64(t.Tier), 12)

	// splice_command_length counts the command body only, not the type
	// byte between the two, so the region machinery does not apply.
	cmd := t.command()
	scratch := si.NewBuffer(si.MaxPrivateSectionSize)
	cmd.encode(scratch)
	if scratch.Error() {
		b.SetError()
		return
	}
	body := scratch.Bytes()
	b.PutBits(uint64(len(body)), 12)
	b.PutBits(uint64(cmd.Type()), 8)
	b.PutBytes(body)
}

func (t *SpliceInfo) EntryCount() int { return len(t.Descriptors) }

func (t *SpliceInfo) EncodeEntry(b *si.Buffer, i int) {
	si.EncodeDescriptor(b, t.Descriptors[i])
}

func (t *SpliceInfo) DecodeCommon(ctx *si.DecodeContext, b *si.Buffer, id si.TableIdentity, first bool) {
	b.SkipBits(8) // protocol_version
	encrypted := b.ReadBool()
	b.SkipBits(6) // encryption_algorithm
	t.PTSAdjustment = b.ReadBits(33)
	b.SkipBits(8) // cw_index
	t.Tier = uint16(b.ReadBits(12))
	if encrypted {
		// Encrypted payloads cannot be parsed without the key.
		t.SetValid(false)
		return
	}

	length := int(b.ReadBits(12))
	cmdType := uint8(b.ReadBits(8))
	cmd := newCommand(cmdType)
	if length == legacyCommandLength {
		cmd.decode(b)
	} else {
		body := b.ReadBytes(length)
		cb := si.NewReadBuffer(body)
		cmd.decode(cb)
		if cb.Error() {
			t.SetValid(false)
			return
		}
	}
	t.Command = cmd
}

func (t *SpliceInfo) DecodeEntry(ctx *si.DecodeContext, b *si.Buffer) {
	d := si.DecodeDescriptor(ctx, b)
	if b.Error() || !d.Valid() {
		t.SetValid(false)
		return
	}
	t.Descriptors = append(t.Descriptors, d)
}

func newCommand(cmdType uint8) Command {
	switch cmdType {
	case CommandSpliceInsert:
		return &SpliceInsert{}
	case CommandTimeSignal:
		return &TimeSignal{}
	default:
		// Unknown commands decode as a null heartbeat rather than
		// failing the section.
		return &SpliceNull{}
	}
}

func commandFromXML(e *si.XMLElement) (Command, bool) {
	var cmd Command
	switch e.Name {
	case "splice_null":
		cmd = &SpliceNull{}
	case "splice_insert":
		cmd = &SpliceInsert{}
	case "time_signal":
		cmd = &TimeSignal{}
	default:
		return nil, false
	}
	return cmd, true
}

func (t *SpliceInfo) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("pts_adjustment", t.PTSAdjustment)
	e.SetHexAttr("tier", uint64(t.Tier), 3)
	cmd := t.command()
	c := si.NewElement(cmd.xmlName())
	cmd.toXML(c)
	e.AppendChild(c)
	t.Descriptors.ToXML(e)
}

func (t *SpliceInfo) FromXML(reg *si.Registry, e *si.XMLElement) error {
	t.Reset()
	adj, err := e.OptUIntAttr("pts_adjustment", 0, 1<<33-1)
	if err != nil {
		return err
	}
	tier, err := e.OptUIntAttr("tier", 0xFFF, 0xFFF)
	if err != nil {
		return err
	}
	t.PTSAdjustment = adj
	t.Tier = uint16(tier)
	for _, c := range e.Children {
		if cmd, ok := commandFromXML(c); ok {
			if err := cmd.fromXML(c); err != nil {
				return err
			}
			t.Command = cmd
			continue
		}
		d, isDesc, err := si.DescriptorFromXML(reg, c)
		if err != nil {
			return err
		}
		if isDesc {
			t.Descriptors = append(t.Descriptors, d)
		}
	}
	return nil
}

// Descriptors returns the package's descriptor registrations, all scoped
// to the splice_info_section table id.
func Descriptors() []si.DescriptorRegistration {
	return []si.DescriptorRegistration{
		{ID: si.TableEDID(TableID, AvailDescriptorTag), New: func() si.Descriptor { return new(AvailDescriptor) }},
		{ID: si.TableEDID(TableID, SegmentationDescriptorTag), New: func() si.Descriptor { return new(SegmentationDescriptor) }},
	}
}

// Tables returns the package's table registrations.
func Tables() []si.TableRegistration {
	return []si.TableRegistration{
		{IDs: []uint8{TableID}, New: func() si.Table { return new(SpliceInfo) }},
	}
}

// NewRegistry builds a registry with just this package's types.
func NewRegistry() *si.Registry {
	return si.NewRegistry(
		si.WithDescriptors(Descriptors()...),
		si.WithTables(Tables()...),
	)
}
