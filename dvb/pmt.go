package dvb

import "github.com/zsiec/psikit/si"

// PMT is the program map table: the PCR PID, program-level descriptors,
// and the elementary streams of one program.
type PMT struct {
	si.Validity
	ServiceID   uint16
	Version     uint8
	Current     bool
	PCRPID      uint16
	ProgramInfo si.DescriptorList
	Streams     []PMTStream
}

// PMTStream is one elementary stream entry with its descriptor loop.
type PMTStream struct {
	Type uint8
	PID  uint16
	Info si.DescriptorList
}

func (t *PMT) Identity() si.TableIdentity {
	return si.TableIdentity{
		TableID:    TableIDPMT,
		TableIDExt: t.ServiceID,
		Version:    t.Version,
		Current:    t.Current,
	}
}

func (t *PMT) Packing() si.TablePacking {
	return si.TablePacking{LongSyntax: true, PerSection: true}
}

func (t *PMT) XMLName() string { return "PMT" }

func (t *PMT) Reset() {
	*t = PMT{Current: true, PCRPID: 0x1FFF}
	t.SetValid(true)
}

func (t *PMT) EncodeCommon(b *si.Buffer) {
	b.PutReserved(3)
	b.PutBits(uint64(t.PCRPID), 13)
	b.PutReserved(4)
	b.PushWriteLength(12)
	t.ProgramInfo.Encode(b)
	b.PopLength()
}

func (t *PMT) EntryCount() int { return len(t.Streams) }

func (t *PMT) EncodeEntry(b *si.Buffer, i int) {
	s := t.Streams[i]
	b.PutBits(uint64(s.Type), 8)
	b.PutReserved(3)
	b.PutBits(uint64(s.PID), 13)
	b.PutReserved(4)
	b.PushWriteLength(12)
	s.Info.Encode(b)
	b.PopLength()
}

func (t *PMT) DecodeCommon(ctx *si.DecodeContext, b *si.Buffer, id si.TableIdentity, first bool) {
	t.ServiceID = id.TableIDExt
	t.Version = id.Version
	t.Current = id.Current
	b.SkipReserved(3)
	t.PCRPID = uint16(b.ReadBits(13))
	b.SkipReserved(4)
	b.PushReadLength(12)
	lctx := *ctx
	t.ProgramInfo.Decode(&lctx, b)
	b.PopLength()
}

func (t *PMT) DecodeEntry(ctx *si.DecodeContext, b *si.Buffer) {
	var s PMTStream
	s.Type = uint8(b.ReadBits(8))
	b.SkipReserved(3)
	s.PID = uint16(b.ReadBits(13))
	b.SkipReserved(4)
	b.PushReadLength(12)
	lctx := *ctx
	s.Info.Decode(&lctx, b)
	b.PopLength()
	if b.Error() {
		t.SetValid(false)
		return
	}
	t.Streams = append(t.Streams, s)
}

func (t *PMT) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("version", uint64(t.Version))
	e.SetBoolAttr("current", t.Current)
	e.SetHexAttr("service_id", uint64(t.ServiceID), 4)
	e.SetHexAttr("PCR_PID", uint64(t.PCRPID), 4)
	t.ProgramInfo.ToXML(e)
	for _, s := range t.Streams {
		c := si.NewElement("component")
		c.SetHexAttr("stream_type", uint64(s.Type), 2)
		c.SetHexAttr("elementary_PID", uint64(s.PID), 4)
		s.Info.ToXML(c)
		e.AppendChild(c)
	}
}

func (t *PMT) FromXML(reg *si.Registry, e *si.XMLElement) error {
	t.Reset()
	version, err := e.OptUIntAttr("version", 0, 31)
	if err != nil {
		return err
	}
	current, err := e.BoolAttr("current", true)
	if err != nil {
		return err
	}
	sid, err := e.UIntAttr("service_id", 0xFFFF)
	if err != nil {
		return err
	}
	pcr, err := e.OptUIntAttr("PCR_PID", 0x1FFF, 0x1FFF)
	if err != nil {
		return err
	}
	t.Version = uint8(version)
	t.Current = current
	t.ServiceID = uint16(sid)
	t.PCRPID = uint16(pcr)
	for _, c := range e.Children {
		if c.Name == "component" {
			var s PMTStream
			st, err := c.UIntAttr("stream_type", 0xFF)
			if err != nil {
				return err
			}
			pid, err := c.UIntAttr("elementary_PID", 0x1FFF)
			if err != nil {
				return err
			}
			s.Type = uint8(st)
			s.PID = uint16(pid)
			for _, dc := range c.Children {
				d, isDesc, err := si.DescriptorFromXML(reg, dc)
				if err != nil {
					return err
				}
				if isDesc {
					s.Info = append(s.Info, d)
				}
			}
			t.Streams = append(t.Streams, s)
			continue
		}
		d, isDesc, err := si.DescriptorFromXML(reg, c)
		if err != nil {
			return err
		}
		if isDesc {
			t.ProgramInfo = append(t.ProgramInfo, d)
		}
	}
	return nil
}
