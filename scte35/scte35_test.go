package scte35

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/zsiec/psikit/si"
)

// Golden sections captured from production splice streams.
var goldenVectors = map[string]string{
	"ProviderAdStart":       "fc302700000000000000fff00506fe000dbba00011020f43554549000000017fbf0000300101ee197d02",
	"DistributorAdStart":    "fc302c00000000000000fff00506fe000dbba00016021443554549000000027fff00002932e000003201031233f909",
	"DistributorAdEnd":      "fc302700000000000000fff00506fe000dbba00011020f43554549000000037fbf000033010352b10a71",
	"ProviderAdEnd":         "fc302700000000000000fff00506fe000dbba00011020f43554549000000047fbf0000310101de2663d0",
	"SpliceInsertOut":       "fc303200000000000000fff01005000000057fbf00fe007b98a0000101010011020f43554549000000057fbf00002201017f1add87",
	"SpliceInsertIn":        "fc302d00000000000000fff00b05000000067f1f00000101010011020f43554549000000067fbf0000230101c2262974",
	"ProgramStart":          "fc302700000000000000fff00506fe000dbba00011020f43554549000000077fbf0000100000ded1e682",
	"ContentID":             "fc302700000000000000fff00506fe000dbba00011020f43554549000000087fbf000001000090ab548a",
	"ChapterStart":          "fc302c00000000000000fff00506fe000dbba00016021443554549000000097fff00019bfcc00000200105bb3c1919",
	"ChapterEnd":            "fc302700000000000000fff00506fe000dbba00011020f435545490000000a7fbf0000210105d921d749",
	"NetworkStart":          "fc302700000000000000fff00506fe000dbba00011020f435545490000000b7fbf0000500000163074e3",
	"ProgramEnd":            "fc302700000000000000fff00506fe000dbba00011020f435545490000000c7fbf0000110000e767f265",
	"UnscheduledEventStart": "fc302700000000000000fff00506fe000dbba00011020f435545490000000d7fbf0000400000d6bf6b98",
	"UnscheduledEventEnd":   "fc302700000000000000fff00506fe000dbba00011020f435545490000000e7fbf00004100003b85a241",
	"ProviderPOStart":       "fc302c00000000000000fff00506fe000dbba000160214435545490000000f7fff00005265c0000034010288c9acbd",
	"ProviderPOEnd":         "fc302700000000000000fff00506fe000dbba00011020f43554549000000107fbf000035010213993e41",
}

func decodeGolden(t *testing.T, hexStr string) *SpliceInfo {
	t.Helper()
	data, err := hex.DecodeString(hexStr)
	if err != nil {
		t.Fatal(err)
	}
	sec, err := si.DecodeSection(data, si.SectionWithCRC(), si.SectionPrivateFamily())
	if err != nil {
		t.Fatalf("section decode: %v", err)
	}
	tbl, err := si.DecodeTable(NewRegistry(), []*si.Section{sec})
	if err != nil {
		t.Fatalf("table decode: %v", err)
	}
	return tbl.(*SpliceInfo)
}

func encodeSection(t *testing.T, info *SpliceInfo) []byte {
	t.Helper()
	sections, err := si.PackTable(info)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("packed into %d sections", len(sections))
	}
	data, err := sections[0].Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestDecodeGoldenVectors(t *testing.T) {
	t.Parallel()

	for name, vec := range goldenVectors {
		name, vec := name, vec
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			info := decodeGolden(t, vec)
			if info.Tier != 0xFFF {
				t.Fatalf("tier 0x%03X", info.Tier)
			}
			if len(info.Descriptors) != 1 {
				t.Fatalf("%d descriptors", len(info.Descriptors))
			}
			if _, ok := info.Descriptors[0].(*SegmentationDescriptor); !ok {
				t.Fatalf("descriptor resolved to %T", info.Descriptors[0])
			}
		})
	}
}

func TestDecodeTimeSignal(t *testing.T) {
	t.Parallel()

	info := decodeGolden(t, goldenVectors["ProviderAdStart"])
	ts, ok := info.Command.(*TimeSignal)
	if !ok {
		t.Fatalf("command is %T", info.Command)
	}
	if ts.SpliceTime.PTS == nil || *ts.SpliceTime.PTS != 900000 {
		t.Fatalf("pts %v", ts.SpliceTime.PTS)
	}
	sd := info.Descriptors[0].(*SegmentationDescriptor)
	if sd.Identifier != CUEIdentifier {
		t.Fatalf("identifier 0x%08X", sd.Identifier)
	}
	if sd.EventID != 1 || sd.TypeID != SegmentationTypeProviderAdStart {
		t.Fatalf("event 0x%X type 0x%02X", sd.EventID, sd.TypeID)
	}
	if sd.Name() != "Provider Advertisement Start" {
		t.Fatalf("name %q", sd.Name())
	}
	if sd.SegmentNum != 1 || sd.SegmentsExpected != 1 {
		t.Fatalf("segment %d/%d", sd.SegmentNum, sd.SegmentsExpected)
	}
	if sd.Duration != nil || sd.Restrictions != nil {
		t.Fatal("unexpected optional fields")
	}
}

func TestDecodeSpliceInsert(t *testing.T) {
	t.Parallel()

	info := decodeGolden(t, goldenVectors["SpliceInsertOut"])
	cmd, ok := info.Command.(*SpliceInsert)
	if !ok {
		t.Fatalf("command is %T", info.Command)
	}
	if cmd.EventID != 5 || !cmd.OutOfNetwork || !cmd.Immediate {
		t.Fatalf("fields %+v", cmd)
	}
	if cmd.BreakDuration == nil || cmd.BreakDuration.Duration != 90*90000 || !cmd.BreakDuration.AutoReturn {
		t.Fatalf("break duration %+v", cmd.BreakDuration)
	}
	if cmd.UniqueProgramID != 1 || cmd.AvailNum != 1 || cmd.AvailsExpected != 1 {
		t.Fatalf("avail fields %+v", cmd)
	}

	in := decodeGolden(t, goldenVectors["SpliceInsertIn"]).Command.(*SpliceInsert)
	if in.EventID != 6 || in.OutOfNetwork || in.BreakDuration != nil {
		t.Fatalf("return splice %+v", in)
	}
}

func TestEncodeMatchesGolden(t *testing.T) {
	t.Parallel()

	pts := uint64(900000)
	dur := uint64(30 * 90000)
	chapterDur := uint64(300 * 90000)
	for _, tc := range []struct {
		name string
		info *SpliceInfo
	}{
		{"ProviderAdStart", &SpliceInfo{
			Tier:    0xFFF,
			Command: &TimeSignal{SpliceTime: SpliceTime{PTS: &pts}},
			Descriptors: si.DescriptorList{&SegmentationDescriptor{
				EventID: 1, TypeID: SegmentationTypeProviderAdStart, SegmentNum: 1, SegmentsExpected: 1,
			}},
		}},
		{"DistributorAdStart", &SpliceInfo{
			Tier:    0xFFF,
			Command: &TimeSignal{SpliceTime: SpliceTime{PTS: &pts}},
			Descriptors: si.DescriptorList{&SegmentationDescriptor{
				EventID: 2, TypeID: SegmentationTypeDistributorAdStart, Duration: &dur, SegmentNum: 1, SegmentsExpected: 3,
			}},
		}},
		{"ChapterStart", &SpliceInfo{
			Tier:    0xFFF,
			Command: &TimeSignal{SpliceTime: SpliceTime{PTS: &pts}},
			Descriptors: si.DescriptorList{&SegmentationDescriptor{
				EventID: 9, TypeID: SegmentationTypeChapterStart, Duration: &chapterDur, SegmentNum: 1, SegmentsExpected: 5,
			}},
		}},
		{"ProgramEnd", &SpliceInfo{
			Tier:    0xFFF,
			Command: &TimeSignal{SpliceTime: SpliceTime{PTS: &pts}},
			Descriptors: si.DescriptorList{&SegmentationDescriptor{
				EventID: 12, TypeID: SegmentationTypeProgramEnd,
			}},
		}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			want, _ := hex.DecodeString(goldenVectors[tc.name])
			got := encodeSection(t, tc.info)
			if !bytes.Equal(got, want) {
				t.Fatalf("encoded\n% X\nwant\n% X", got, want)
			}
		})
	}
}

func TestSpliceInsertRoundTrip(t *testing.T) {
	t.Parallel()

	pts := uint64(1234567)
	in := &SpliceInfo{
		PTSAdjustment: 5,
		Tier:          0xFFF,
		Command: &SpliceInsert{
			EventID:         0x4800008F,
			OutOfNetwork:    true,
			SpliceTime:      SpliceTime{PTS: &pts},
			BreakDuration:   &BreakDuration{AutoReturn: true, Duration: 60 * 90000},
			UniqueProgramID: 0x2F98,
			AvailNum:        2,
			AvailsExpected:  2,
		},
		Descriptors: si.DescriptorList{
			&AvailDescriptor{ProviderAvailID: 0x00000135},
		},
	}
	data := encodeSection(t, in)
	sec, err := si.DecodeSection(data, si.SectionWithCRC(), si.SectionPrivateFamily())
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := si.DecodeTable(NewRegistry(), []*si.Section{sec})
	if err != nil {
		t.Fatal(err)
	}
	out := tbl.(*SpliceInfo)
	if out.PTSAdjustment != 5 {
		t.Fatalf("pts adjustment %d", out.PTSAdjustment)
	}
	cmd := out.Command.(*SpliceInsert)
	if cmd.EventID != 0x4800008F || !cmd.OutOfNetwork || cmd.Immediate {
		t.Fatalf("command %+v", cmd)
	}
	if cmd.SpliceTime.PTS == nil || *cmd.SpliceTime.PTS != pts {
		t.Fatalf("splice time %v", cmd.SpliceTime.PTS)
	}
	if cmd.BreakDuration == nil || cmd.BreakDuration.Duration != 60*90000 {
		t.Fatalf("break duration %+v", cmd.BreakDuration)
	}
	avail, ok := out.Descriptors[0].(*AvailDescriptor)
	if !ok || avail.ProviderAvailID != 0x00000135 {
		t.Fatalf("descriptor %+v", out.Descriptors[0])
	}
}

func TestDecodeRejectsCorruptCRC(t *testing.T) {
	t.Parallel()

	data, _ := hex.DecodeString(goldenVectors["ProviderAdStart"])
	data[len(data)-1] ^= 0xFF
	if _, err := si.DecodeSection(data, si.SectionWithCRC(), si.SectionPrivateFamily()); err == nil {
		t.Fatal("corrupt CRC accepted")
	}
}

func TestDecodeRejectsEncrypted(t *testing.T) {
	t.Parallel()

	data, _ := hex.DecodeString(goldenVectors["ProviderAdStart"])
	data[4] |= 0x80 // encrypted_packet
	crc := si.CRC32(data[:len(data)-4])
	data[len(data)-4] = byte(crc >> 24)
	data[len(data)-3] = byte(crc >> 16)
	data[len(data)-2] = byte(crc >> 8)
	data[len(data)-1] = byte(crc)
	sec, err := si.DecodeSection(data, si.SectionWithCRC(), si.SectionPrivateFamily())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := si.DecodeTable(NewRegistry(), []*si.Section{sec}); err == nil {
		t.Fatal("encrypted section decoded")
	}
}

func TestXMLRoundTrip(t *testing.T) {
	t.Parallel()

	pts := uint64(900000)
	dur := uint64(30 * 90000)
	in := &SpliceInfo{
		Tier:    0xFFF,
		Command: &TimeSignal{SpliceTime: SpliceTime{PTS: &pts}},
		Descriptors: si.DescriptorList{&SegmentationDescriptor{
			EventID: 2, TypeID: SegmentationTypeDistributorAdStart, Duration: &dur, SegmentNum: 1, SegmentsExpected: 3,
		}},
	}
	doc, err := si.TableToXML(in).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := si.ParseXML(doc)
	if err != nil {
		t.Fatal(err)
	}
	out, err := si.TableFromXML(NewRegistry(), parsed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encodeSection(t, out.(*SpliceInfo)), encodeSection(t, in)) {
		t.Fatal("xml round trip changed the encoding")
	}
}

func TestXMLPreservesSegmentationDetail(t *testing.T) {
	t.Parallel()

	// Optional fields that only some segmentation events carry must
	// survive the XML form byte for byte: sub-segment numbering, a
	// non-compliant event id and a non-CUEI identifier.
	dur := uint64(300 * 90000)
	sub := uint8(2)
	in := &SpliceInfo{
		Tier:    0xFFF,
		Command: &SpliceNull{},
		Descriptors: si.DescriptorList{
			&SegmentationDescriptor{
				Identifier:          0x41424344,
				EventID:             0x34,
				EventIDNotCompliant: true,
				Duration:            &dur,
				TypeID:              SegmentationTypeProviderPOStart,
				SegmentNum:          1,
				SegmentsExpected:    2,
				SubSegmentNum:       &sub,
				SubSegsExpected:     4,
			},
			&AvailDescriptor{Identifier: 0x41424344, ProviderAvailID: 0x135},
		},
	}
	wire := encodeSection(t, in)

	doc, err := si.TableToXML(in).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := si.ParseXML(doc)
	if err != nil {
		t.Fatal(err)
	}
	out, err := si.TableFromXML(NewRegistry(), parsed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encodeSection(t, out.(*SpliceInfo)), wire) {
		t.Fatal("xml round trip changed the encoding")
	}

	seg, ok := out.(*SpliceInfo).Descriptors[0].(*SegmentationDescriptor)
	if !ok {
		t.Fatalf("descriptor 0 is %T", out.(*SpliceInfo).Descriptors[0])
	}
	if !seg.EventIDNotCompliant {
		t.Error("compliance indicator lost")
	}
	if seg.SubSegmentNum == nil || *seg.SubSegmentNum != 2 || seg.SubSegsExpected != 4 {
		t.Errorf("sub-segment fields lost: %v %d", seg.SubSegmentNum, seg.SubSegsExpected)
	}
	if seg.Identifier != 0x41424344 {
		t.Errorf("identifier: got 0x%08X", seg.Identifier)
	}
}
