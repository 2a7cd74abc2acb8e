package dvb

import "github.com/zsiec/psikit/si"

// NIT is the network information table: network-level descriptors plus
// one entry per transport stream. Other selects table id 0x41 over 0x40.
type NIT struct {
	si.Validity
	Other              bool
	NetworkID          uint16
	Version            uint8
	Current            bool
	NetworkDescriptors si.DescriptorList
	Streams            []NITStream
}

// NITStream describes one transport stream on the network.
type NITStream struct {
	TransportStreamID uint16
	OriginalNetworkID uint16
	Descriptors       si.DescriptorList
}

func (t *NIT) Identity() si.TableIdentity {
	id := si.TableIdentity{
		TableID:    TableIDNIT,
		TableIDExt: t.NetworkID,
		Version:    t.Version,
		Current:    t.Current,
	}
	if t.Other {
		id.TableID = TableIDNITOther
	}
	return id
}

func (t *NIT) Packing() si.TablePacking {
	return si.TablePacking{
		LongSyntax:       true,
		PrivateIndicator: true,
		PerSection:       true,
		EntryRegionWidth: 12,
	}
}

func (t *NIT) XMLName() string { return "NIT" }

func (t *NIT) Reset() {
	*t = NIT{Current: true}
	t.SetValid(true)
}

func (t *NIT) EncodeCommon(b *si.Buffer) {
	b.PutReserved(4)
	b.PushWriteLength(12)
	t.NetworkDescriptors.Encode(b)
	b.PopLength()
	b.PutReserved(4)
}

func (t *NIT) EntryCount() int { return len(t.Streams) }

func (t *NIT) EncodeEntry(b *si.Buffer, i int) {
	s := t.Streams[i]
	b.PutBits(uint64(s.TransportStreamID), 16)
	b.PutBits(uint64(s.OriginalNetworkID), 16)
	b.PutReserved(4)
	b.PushWriteLength(12)
	s.Descriptors.Encode(b)
	b.PopLength()
}

func (t *NIT) DecodeCommon(ctx *si.DecodeContext, b *si.Buffer, id si.TableIdentity, first bool) {
	t.Other = id.TableID == TableIDNITOther
	t.NetworkID = id.TableIDExt
	t.Version = id.Version
	t.Current = id.Current
	b.SkipReserved(4)
	b.PushReadLength(12)
	lctx := *ctx
	t.NetworkDescriptors.Decode(&lctx, b)
	b.PopLength()
	b.SkipReserved(4)
}

func (t *NIT) DecodeEntry(ctx *si.DecodeContext, b *si.Buffer) {
	var s NITStream
	s.TransportStreamID = uint16(b.ReadBits(16))
	s.OriginalNetworkID = uint16(b.ReadBits(16))
	b.SkipReserved(4)
	b.PushReadLength(12)
	lctx := *ctx
	s.Descriptors.Decode(&lctx, b)
	b.PopLength()
	if b.Error() {
		t.SetValid(false)
		return
	}
	t.Streams = append(t.Streams, s)
}

func (t *NIT) ToXML(e *si.XMLElement) {
	e.SetUIntAttr("version", uint64(t.Version))
	e.SetBoolAttr("current", t.Current)
	e.SetHexAttr("network_id", uint64(t.NetworkID), 4)
	if t.Other {
		e.SetBoolAttr("other", true)
	}
	t.NetworkDescriptors.ToXML(e)
	for _, s := range t.Streams {
		c := si.NewElement("transport_stream")
		c.SetHexAttr("transport_stream_id", uint64(s.TransportStreamID), 4)
		c.SetHexAttr("original_network_id", uint64(s.OriginalNetworkID), 4)
		s.Descriptors.ToXML(c)
		e.AppendChild(c)
	}
}

func (t *NIT) FromXML(reg *si.Registry, e *si.XMLElement) error {
	t.Reset()
	version, err := e.OptUIntAttr("version", 0, 31)
	if err != nil {
		return err
	}
	current, err := e.BoolAttr("current", true)
	if err != nil {
		return err
	}
	nid, err := e.UIntAttr("network_id", 0xFFFF)
	if err != nil {
		return err
	}
	other, err := e.BoolAttr("other", false)
	if err != nil {
		return err
	}
	t.Version = uint8(version)
	t.Current = current
	t.NetworkID = uint16(nid)
	t.Other = other
	for _, c := range e.Children {
		if c.Name == "transport_stream" {
			var s NITStream
			tsid, err := c.UIntAttr("transport_stream_id", 0xFFFF)
			if err != nil {
				return err
			}
			onid, err := c.UIntAttr("original_network_id", 0xFFFF)
			if err != nil {
				return err
			}
			s.TransportStreamID = uint16(tsid)
			s.OriginalNetworkID = uint16(onid)
			for _, dc := range c.Children {
				d, isDesc, err := si.DescriptorFromXML(reg, dc)
				if err != nil {
					return err
				}
				if isDesc {
					s.Descriptors = append(s.Descriptors, d)
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
			t.NetworkDescriptors = append(t.NetworkDescriptors, d)
		}
	}
	return nil
}
