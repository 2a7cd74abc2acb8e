package dvb

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/zsiec/psikit/si"
)

func packOne(t *testing.T, tbl si.Table) *si.Section {
	t.Helper()
	sections, err := si.PackTable(tbl)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("packed into %d sections, want 1", len(sections))
	}
	return sections[0]
}

func reassemble(t *testing.T, sections []*si.Section) si.Table {
	t.Helper()
	out, err := si.DecodeTable(NewRegistry(), sections)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestPATRoundTrip(t *testing.T) {
	t.Parallel()

	nit := uint16(0x0010)
	in := &PAT{
		TransportStreamID: 0x0042,
		Version:           5,
		Current:           true,
		NITPID:            &nit,
		Programs: []PATProgram{
			{ProgramNumber: 1, PMTPID: 0x0100},
			{ProgramNumber: 2, PMTPID: 0x0200},
		},
	}
	sec := packOne(t, in)
	if sec.TableID != TableIDPAT || sec.TableIDExt != 0x0042 || sec.Version != 5 {
		t.Fatalf("header %+v", sec)
	}
	out := reassemble(t, []*si.Section{sec}).(*PAT)
	if out.NITPID == nil || *out.NITPID != nit {
		t.Fatal("network PID lost")
	}
	if len(out.Programs) != 2 || out.Programs[1].PMTPID != 0x0200 {
		t.Fatalf("programs %+v", out.Programs)
	}
}

func TestPMTRoundTrip(t *testing.T) {
	t.Parallel()

	in := &PMT{
		ServiceID: 0x0001,
		Version:   3,
		Current:   true,
		PCRPID:    0x0100,
		ProgramInfo: si.DescriptorList{
			&CADescriptor{SystemID: 0x0B00, PID: 0x0131},
		},
		Streams: []PMTStream{
			{Type: 0x1B, PID: 0x0100, Info: si.DescriptorList{
				&MaximumBitrateDescriptor{Bitrate: 120000},
			}},
			{Type: 0x0F, PID: 0x0101, Info: si.DescriptorList{
				&ISO639LanguageDescriptor{Languages: []ISO639LanguageEntry{{Code: "eng"}}},
				&StreamIdentifierDescriptor{ComponentTag: 2},
			}},
		},
	}
	out := reassemble(t, []*si.Section{packOne(t, in)}).(*PMT)
	if out.PCRPID != 0x0100 || len(out.ProgramInfo) != 1 || len(out.Streams) != 2 {
		t.Fatalf("round trip: %+v", out)
	}
	ca, ok := out.ProgramInfo[0].(*CADescriptor)
	if !ok || ca.PID != 0x0131 {
		t.Fatalf("program info %T", out.ProgramInfo[0])
	}
	if len(out.Streams[1].Info) != 2 {
		t.Fatalf("stream info %+v", out.Streams[1].Info)
	}
	if _, ok := out.Streams[1].Info[0].(*ISO639LanguageDescriptor); !ok {
		t.Fatalf("stream descriptor %T", out.Streams[1].Info[0])
	}
}

func TestSDTMultiSection(t *testing.T) {
	t.Parallel()

	in := &SDT{
		TransportStreamID: 0x0001,
		OriginalNetworkID: 0x2222,
		Current:           true,
	}
	longName := string(bytes.Repeat([]byte{'x'}, 200))
	for i := 0; i < 8; i++ {
		in.Services = append(in.Services, SDTService{
			ServiceID:     uint16(0x1000 + i),
			EITPresent:    true,
			RunningStatus: RunningStatusRunning,
			Descriptors: si.DescriptorList{
				&ServiceDescriptor{Type: ServiceTypeDigitalTV, Provider: fmt.Sprintf("prov%d", i), Name: longName},
			},
		})
	}
	sections, err := si.PackTable(in)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(sections) < 2 {
		t.Fatalf("expected a split, got %d sections", len(sections))
	}
	for i, s := range sections {
		if int(s.Number) != i || int(s.LastNumber) != len(sections)-1 {
			t.Fatalf("section %d numbered %d/%d", i, s.Number, s.LastNumber)
		}
		if !s.PrivateIndicator {
			t.Fatal("private indicator not set")
		}
		// Every section repeats original_network_id and the reserved byte
		// ahead of its service loop.
		if len(s.Payload) < 3 || s.Payload[0] != 0x22 || s.Payload[1] != 0x22 || s.Payload[2] != 0xFF {
			t.Fatalf("section %d payload starts % X, want 22 22 FF", i, s.Payload[:3])
		}
	}
	out := reassemble(t, sections).(*SDT)
	if out.OriginalNetworkID != 0x2222 {
		t.Fatalf("original network id 0x%04X", out.OriginalNetworkID)
	}
	if len(out.Services) != 8 {
		t.Fatalf("reassembled %d services", len(out.Services))
	}
	for i, s := range out.Services {
		if s.ServiceID != uint16(0x1000+i) {
			t.Fatalf("service %d out of order: 0x%04X", i, s.ServiceID)
		}
		if s.RunningStatus != RunningStatusRunning || !s.EITPresent {
			t.Fatalf("service flags lost: %+v", s)
		}
	}
}

func TestNITRoundTrip(t *testing.T) {
	t.Parallel()

	in := &NIT{
		NetworkID: 0x3085,
		Version:   1,
		Current:   true,
		NetworkDescriptors: si.DescriptorList{
			&NetworkNameDescriptor{Name: "Test Network"},
		},
		Streams: []NITStream{
			{TransportStreamID: 0x0001, OriginalNetworkID: 0x2222, Descriptors: si.DescriptorList{
				&PrivateDataSpecifierDescriptor{Specifier: PDSEACEM},
				&LogicalChannelNumberDescriptor{Channels: []LogicalChannel{
					{ServiceID: 0x1000, Visible: true, Number: 1},
					{ServiceID: 0x1001, Visible: false, Number: 12},
				}},
			}},
		},
	}
	out := reassemble(t, []*si.Section{packOne(t, in)}).(*NIT)
	if out.NetworkID != 0x3085 {
		t.Fatalf("network id 0x%04X", out.NetworkID)
	}
	name, ok := out.NetworkDescriptors[0].(*NetworkNameDescriptor)
	if !ok || name.Name != "Test Network" {
		t.Fatalf("network descriptors %+v", out.NetworkDescriptors)
	}
	lcn, ok := out.Streams[0].Descriptors[1].(*LogicalChannelNumberDescriptor)
	if !ok {
		t.Fatalf("private tag did not resolve in stream loop: %T", out.Streams[0].Descriptors[1])
	}
	if len(lcn.Channels) != 2 || lcn.Channels[1].Number != 12 || lcn.Channels[1].Visible {
		t.Fatalf("channels %+v", lcn.Channels)
	}
}

func TestPrivateSpaceDoesNotLeakAcrossEntries(t *testing.T) {
	t.Parallel()

	// First stream announces EACEM; the second does not, so the same
	// tag must come back raw there.
	in := &NIT{
		NetworkID: 1,
		Current:   true,
		Streams: []NITStream{
			{TransportStreamID: 1, OriginalNetworkID: 1, Descriptors: si.DescriptorList{
				&PrivateDataSpecifierDescriptor{Specifier: PDSEACEM},
				&LogicalChannelNumberDescriptor{Channels: []LogicalChannel{{ServiceID: 1, Visible: true, Number: 1}}},
			}},
			{TransportStreamID: 2, OriginalNetworkID: 1, Descriptors: si.DescriptorList{
				&si.RawDescriptor{RawTag: TagLogicalChannelNumber, Data: []byte{0x00, 0x01, 0xFC, 0x05}},
			}},
		},
	}
	out := reassemble(t, []*si.Section{packOne(t, in)}).(*NIT)
	if _, ok := out.Streams[0].Descriptors[1].(*LogicalChannelNumberDescriptor); !ok {
		t.Fatalf("first loop: %T", out.Streams[0].Descriptors[1])
	}
	if _, ok := out.Streams[1].Descriptors[0].(*si.RawDescriptor); !ok {
		t.Fatalf("second loop leaked the private space: %T", out.Streams[1].Descriptors[0])
	}
}

func TestTableXMLRoundTrip(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	nit := uint16(0x0010)
	for _, tbl := range []si.Table{
		&PAT{TransportStreamID: 1, Current: true, NITPID: &nit, Programs: []PATProgram{{ProgramNumber: 1, PMTPID: 0x0100}}},
		&PMT{ServiceID: 1, Current: true, PCRPID: 0x0100, Streams: []PMTStream{
			{Type: 0x1B, PID: 0x0100, Info: si.DescriptorList{&StreamIdentifierDescriptor{ComponentTag: 1}}},
		}},
		&SDT{TransportStreamID: 1, OriginalNetworkID: 2, Current: true, Services: []SDTService{
			{ServiceID: 0x1000, RunningStatus: RunningStatusRunning, Descriptors: si.DescriptorList{
				&ServiceDescriptor{Type: ServiceTypeDigitalTV, Provider: "P", Name: "N"},
			}},
		}},
		&NIT{NetworkID: 1, Current: true, NetworkDescriptors: si.DescriptorList{
			&NetworkNameDescriptor{Name: "net"},
		}},
	} {
		doc, err := si.TableToXML(tbl).Marshal()
		if err != nil {
			t.Fatalf("%s: marshal: %v", tbl.XMLName(), err)
		}
		parsed, err := si.ParseXML(doc)
		if err != nil {
			t.Fatalf("%s: parse: %v", tbl.XMLName(), err)
		}
		out, err := si.TableFromXML(reg, parsed)
		if err != nil {
			t.Fatalf("%s: from xml: %v", tbl.XMLName(), err)
		}
		want, err := si.PackTable(tbl)
		if err != nil {
			t.Fatalf("%s: pack: %v", tbl.XMLName(), err)
		}
		got, err := si.PackTable(out)
		if err != nil {
			t.Fatalf("%s: repack: %v", tbl.XMLName(), err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: section count changed", tbl.XMLName())
		}
		for i := range want {
			a, err := want[i].Encode()
			if err != nil {
				t.Fatal(err)
			}
			b, err := got[i].Encode()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a, b) {
				t.Fatalf("%s: xml round trip changed section %d", tbl.XMLName(), i)
			}
		}
	}
}

func TestTableXMLRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	doc := []byte(`<PAT version="99" transport_stream_id="1"/>`)
	parsed, err := si.ParseXML(doc)
	if err != nil {
		t.Fatal(err)
	}
	_, err = si.TableFromXML(NewRegistry(), parsed)
	var xerr *si.XMLError
	if !errors.As(err, &xerr) {
		t.Fatalf("expected an XML error, got %v", err)
	}
	if xerr.Attr != "version" {
		t.Fatalf("blamed attribute %q", xerr.Attr)
	}
}
