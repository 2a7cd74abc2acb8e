package dvb

import "github.com/zsiec/psikit/si"

// PAT is the program association table: the map from program numbers to
// PMT PIDs for one transport stream, plus the optional network PID
// carried as program number zero.
type PAT struct {
	si.Validity
	TransportStreamID uint16
	Version           uint8
	Current           bool
	NITPID            *uint16
	Programs          []PATProgram
}

// PATProgram maps one program number to the PID of its PMT.
type PATProgram struct {
	ProgramNumber uint16
	PMTPID        uint16
}

func (t *PAT) Identity() si.TableIdentity {
	return si.TableIdentity{
		TableID:    TableIDPAT,
		TableIDExt: t.TransportStreamID,
		Version:    t.Version,
		Current:    t.Current,
	}
}

func (t *PAT) Packing() si.TablePacking {
	return si.TablePacking{LongSyntax: true}
}

func (t *PAT) XMLName() string { return "PAT" }

func (t *PAT) Reset() {
	*t = PAT{Current: true}
	t.SetValid(true)
}

func (t *PAT) EncodeCommon(b *si.Buffer) {}

func (t *PAT) EntryCount() int {
	n := len(t.Programs)
	if t.NITPID != nil {
		n++
	}
	return n
}

func (t *PAT) entry(i int) (number, pid uint16) {
	if t.NITPID != nil {
		if i == 0 {
			return 0, *t.NITPID
		}
		i--
	}
	return t.Programs[i].ProgramNumber, t.Programs[i].PMTPID
}

func (t *PAT) EncodeEntry(b *si.Buffer, i int) {
	number, pid := t.entry(i)
	b.PutBits(uint64(number), 16)
	b.PutReserved(3)
	b.PutBits(uint64(pid), 13)
}

func (t *PAT) DecodeCommon(ctx *si.DecodeContext, b *si.Buffer, id si.TableIdentity, first bool) {
	t.TransportStreamID = id.TableIDExt
	t.Version = id.Version
	t.Current = id.Current
}

func (t *PAT) DecodeEntry(ctx *si.DecodeContext, b *si.Buffer) {
	number := uint16(b.ReadBits(16))
	b.SkipReserved(3)
	pid := uint16(b.ReadBits(13))
	if b.Error() {
		t.SetValid(false)
		return
	}
	if number == 0 {
		t.NITPID = &pid
		return
	}
	t.Programs = append(t.Programs, PATProgram{ProgramNumber: number, PMTPID: pid})
}

func (t *PAT) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("version", uint64(t.Version))
	e.SetBoolAttr("current", t.Current)
	e.SetHexAttr("transport_stream_id", uint64(t.TransportStreamID), 4)
	if t.NITPID != nil {
		e.SetHexAttr("network_PID", uint64(*t.NITPID), 4)
	}
	for _, p := range t.Programs {
		c := si.NewElement("service")
		c.SetHexAttr("service_id", uint64(p.ProgramNumber), 4)
		c.SetHexAttr("program_map_PID", uint64(p.PMTPID), 4)
		e.AppendChild(c)
	}
}

func (t *PAT) FromXML(reg *si.Registry, e *si.XMLElement) error {
	t.Reset()
	version, err := e.OptUIntAttr("version", 0, 31)
	if err != nil {
		return err
	}
	current, err := e.BoolAttr("current", true)
	if err != nil {
		return err
	}
	tsid, err := e.UIntAttr("transport_stream_id", 0xFFFF)
	if err != nil {
		return err
	}
	t.Version = uint8(version)
	t.Current = current
	t.TransportStreamID = uint16(tsid)
	if _, ok := e.Attr("network_PID"); ok {
		pid, err := e.UIntAttr("network_PID", 0x1FFF)
		if err != nil {
			return err
		}
		nit := uint16(pid)
		t.NITPID = &nit
	}
	for _, c := range e.ChildrenNamed("service") {
		sid, err := c.UIntAttr("service_id", 0xFFFF)
		if err != nil {
			return err
		}
		pid, err := c.UIntAttr("program_map_PID", 0x1FFF)
		if err != nil {
			return err
		}
		t.Programs = append(t.Programs, PATProgram{
			ProgramNumber: uint16(sid),
			PMTPID:        uint16(pid),
		})
	}
	return nil
}
