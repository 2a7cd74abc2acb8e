package dvb

import "github.com/zsiec/psikit/si"

// Running status values carried by SDT service entries.
const (
	RunningStatusUndefined = iota
	RunningStatusNotRunning
	RunningStatusStartsSoon
	RunningStatusPausing
	RunningStatusRunning
	RunningStatusOffAir
)

// SDT is the service description table, listing the services of one
// transport stream. Other selects table id 0x46 (another stream) over
// 0x42 (the actual stream).
type SDT struct {
	si.Validity
	Other             bool
	TransportStreamID uint16
	OriginalNetworkID uint16
	Version           uint8
	Current           bool
	Services          []SDTService
}

// SDTService is one service entry with its descriptor loop.
type SDTService struct {
	ServiceID     uint16
	EITSchedule   bool
	EITPresent    bool
	RunningStatus uint8
	FreeCAMode    bool
	Descriptors   si.DescriptorList
}

func (t *SDT) Identity() si.TableIdentity {
	id := si.TableIdentity{
		TableID:    TableIDSDT,
		TableIDExt: t.TransportStreamID,
		Version:    t.Version,
		Current:    t.Current,
	}
	if t.Other {
		id.TableID = TableIDSDTOther
	}
	return id
}

func (t *SDT) Packing() si.TablePacking {
	return si.TablePacking{LongSyntax: true, PrivateIndicator: true, PerSection: true}
}

func (t *SDT) XMLName() string { return "SDT" }

func (t *SDT) Reset() {
	*t = SDT{Current: true}
	t.SetValid(true)
}

func (t *SDT) EncodeCommon(b *si.Buffer) {
	b.PutBits(uint64(t.OriginalNetworkID), 16)
	b.PutReserved(8)
}

func (t *SDT) EntryCount() int { return len(t.Services) }

func (t *SDT) EncodeEntry(b *si.Buffer, i int) {
	s := t.Services[i]
	b.PutBits(uint64(s.ServiceID), 16)
	b.PutReserved(6)
	b.PutBool(s.EITSchedule)
	b.PutBool(s.EITPresent)
	b.PutBits(uint64(s.RunningStatus), 3)
	b.PutBool(s.FreeCAMode)
	b.PushWriteLength(12)
	s.Descriptors.Encode(b)
	b.PopLength()
}

func (t *SDT) DecodeCommon(ctx *si.DecodeContext, b *si.Buffer, id si.TableIdentity, first bool) {
	t.Other = id.TableID == TableIDSDTOther
	t.TransportStreamID = id.TableIDExt
	t.Version = id.Version
	t.Current = id.Current
	t.OriginalNetworkID = uint16(b.ReadBits(16))
	b.SkipReserved(8)
}

func (t *SDT) DecodeEntry(ctx *si.DecodeContext, b *si.Buffer) {
	var s SDTService
	s.ServiceID = uint16(b.ReadBits(16))
	b.SkipReserved(6)
	s.EITSchedule = b.ReadBool()
	s.EITPresent = b.ReadBool()
	s.RunningStatus = uint8(b.ReadBits(3))
	s.FreeCAMode = b.ReadBool()
	b.PushReadLength(12)
	lctx := *ctx
	s.Descriptors.Decode(&lctx, b)
	b.PopLength()
	if b.Error() {
		t.SetValid(false)
		return
	}
	t.Services = append(t.Services, s)
}

func (t *SDT) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("version", uint64(t.Version))
	e.SetBoolAttr("current", t.Current)
	e.SetHexAttr("transport_stream_id", uint64(t.TransportStreamID), 4)
	e.SetHexAttr("original_network_id", uint64(t.OriginalNetworkID), 4)
	if t.Other {
		e.SetBoolAttr("other", true)
	}
	for _, s := range t.Services {
		c := si.NewElement("service")
		c.SetHexAttr("service_id", uint64(s.ServiceID), 4)
		c.SetBoolAttr("EIT_schedule_flag", s.EITSchedule)
		c.SetBoolAttr("EIT_present_following_flag", s.EITPresent)
		c.SetUIntAttr("running_status", uint64(s.RunningStatus))
		c.SetBoolAttr("free_CA_mode", s.FreeCAMode)
		s.Descriptors.ToXML(c)
		e.AppendChild(c)
	}
}

func (t *SDT) FromXML(reg *si.Registry, e *si.XMLElement) error {
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
	onid, err := e.UIntAttr("original_network_id", 0xFFFF)
	if err != nil {
		return err
	}
	other, err := e.BoolAttr("other", false)
	if err != nil {
		return err
	}
	t.Version = uint8(version)
	t.Current = current
	t.TransportStreamID = uint16(tsid)
	t.OriginalNetworkID = uint16(onid)
	t.Other = other
	for _, c := range e.ChildrenNamed("service") {
		var s SDTService
		sid, err := c.UIntAttr("service_id", 0xFFFF)
		if err != nil {
			return err
		}
		sched, err := c.BoolAttr("EIT_schedule_flag", false)
		if err != nil {
			return err
		}
		pf, err := c.BoolAttr("EIT_present_following_flag", false)
		if err != nil {
			return err
		}
		rs, err := c.OptUIntAttr("running_status", RunningStatusUndefined, 7)
		if err != nil {
			return err
		}
		ca, err := c.BoolAttr("free_CA_mode", false)
		if err != nil {
			return err
		}
		s.ServiceID = uint16(sid)
		s.EITSchedule = sched
		s.EITPresent = pf
		s.RunningStatus = uint8(rs)
		s.FreeCAMode = ca
		for _, dc := range c.Children {
			d, isDesc, err := si.DescriptorFromXML(reg, dc)
			if err != nil {
				return err
			}
			if isDesc {
				s.Descriptors = append(s.Descriptors, d)
			}
		}
		t.Services = append(t.Services, s)
	}
	return nil
}
