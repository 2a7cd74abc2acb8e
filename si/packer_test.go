package si

import (
	"errors"
	"testing"
)

// fixtureTable is a synthetic long table: an 8-byte common header and a
// run of fixed-size entries, each entrySize bytes of the entry's index.
type fixtureTable struct {
	Validity
	version   uint8
	entrySize int
	entries   []byte // decoded entry indexes, one per entry
	toEncode  int    // entry count on the encode side
	packing   TablePacking
}

func newFixtureTable(entries, entrySize int) *fixtureTable {
	return &fixtureTable{
		entrySize: entrySize,
		toEncode:  entries,
		packing:   TablePacking{LongSyntax: true, PerSection: true},
	}
}

func (ft *fixtureTable) Identity() TableIdentity {
	return TableIdentity{TableID: 0xAB, TableIDExt: 0x1234, Version: ft.version, Current: true}
}
func (ft *fixtureTable) Packing() TablePacking { return ft.packing }
func (ft *fixtureTable) XMLName() string       { return "fixture_table" }
func (ft *fixtureTable) Reset()                { ft.entries = nil }
func (ft *fixtureTable) EntryCount() int       { return ft.toEncode }

func (ft *fixtureTable) EncodeCommon(b *Buffer) {
	for i := 0; i < 8; i++ {
		b.PutBits(0xEE, 8)
	}
}

func (ft *fixtureTable) EncodeEntry(b *Buffer, i int) {
	for j := 0; j < ft.entrySize; j++ {
		b.PutBits(uint64(i), 8)
	}
}

func (ft *fixtureTable) DecodeCommon(ctx *DecodeContext, b *Buffer, id TableIdentity, first bool) {
	if got := b.ReadBytes(8); len(got) != 8 {
		ft.SetValid(false)
	}
}

func (ft *fixtureTable) DecodeEntry(ctx *DecodeContext, b *Buffer) {
	entry := b.ReadBytes(ft.entrySize)
	if len(entry) != ft.entrySize {
		ft.SetValid(false)
		return
	}
	ft.entries = append(ft.entries, entry[0])
}

func (ft *fixtureTable) ToXML(e *XMLElement)                        {}
func (ft *fixtureTable) FromXML(reg *Registry, e *XMLElement) error { return nil }

// Forty 30-byte entries with an 8-byte common header must split into two
// sections: 33 entries fit the first, 7 spill into the second, and both
// carry last_section_number 1.
func TestPackTableSplitsAtCapacity(t *testing.T) {
	t.Parallel()
	ft := newFixtureTable(40, 30)
	sections, err := PackTable(ft)
	if err != nil {
		t.Fatalf("PackTable: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("sections: got %d, want 2", len(sections))
	}
	if got := len(sections[0].Payload); got != 8+33*30 {
		t.Errorf("section 0 payload: got %d, want %d", got, 8+33*30)
	}
	if got := len(sections[1].Payload); got != 8+7*30 {
		t.Errorf("section 1 payload: got %d, want %d", got, 8+7*30)
	}
	for i, s := range sections {
		if s.Number != uint8(i) {
			t.Errorf("section %d: number %d", i, s.Number)
		}
		if s.LastNumber != 1 {
			t.Errorf("section %d: last_section_number %d, want 1", i, s.LastNumber)
		}
		if s.Size() > MaxStandardSectionSize {
			t.Errorf("section %d: size %d exceeds maximum", i, s.Size())
		}
	}

	// Reassembly must recover all 40 entries in order across the split.
	decoded := newFixtureTable(0, 30)
	if err := AssembleTable(decoded, NewRegistry(), sections); err != nil {
		t.Fatalf("AssembleTable: %v", err)
	}
	if len(decoded.entries) != 40 {
		t.Fatalf("decoded entries: got %d, want 40", len(decoded.entries))
	}
	for i, v := range decoded.entries {
		if v != byte(i) {
			t.Fatalf("entry %d: got %d", i, v)
		}
	}
}

func TestPackTableEmptyEntryRun(t *testing.T) {
	t.Parallel()
	sections, err := PackTable(newFixtureTable(0, 30))
	if err != nil {
		t.Fatalf("PackTable: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(sections))
	}
	if len(sections[0].Payload) != 8 {
		t.Errorf("payload: got %d bytes, want the 8 common bytes", len(sections[0].Payload))
	}
}

func TestPackTableSingleSectionDropsTail(t *testing.T) {
	t.Parallel()
	ft := newFixtureTable(40, 30)
	ft.packing.SingleSection = true
	sections, err := PackTable(ft)
	if err != nil {
		t.Fatalf("PackTable: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(sections))
	}
	decoded := newFixtureTable(0, 30)
	if err := AssembleTable(decoded, NewRegistry(), sections); err != nil {
		t.Fatalf("AssembleTable: %v", err)
	}
	if len(decoded.entries) != 33 {
		t.Errorf("decoded entries: got %d, want 33 with the tail dropped", len(decoded.entries))
	}
}

func TestPackTableRejectsOversizedEntry(t *testing.T) {
	t.Parallel()
	ft := newFixtureTable(1, MaxStandardSectionSize)
	if _, err := PackTable(ft); !errors.Is(err, ErrStructure) {
		t.Errorf("oversized entry: got %v, want ErrStructure", err)
	}
}

func TestAssembleTableSequenceErrors(t *testing.T) {
	t.Parallel()
	sections, err := PackTable(newFixtureTable(40, 30))
	if err != nil {
		t.Fatalf("PackTable: %v", err)
	}

	cases := []struct {
		name     string
		sections func() []*Section
	}{
		{"missing section", func() []*Section {
			return []*Section{sections[0]}
		}},
		{"duplicate section", func() []*Section {
			return []*Section{sections[0], sections[0]}
		}},
		{"number past last", func() []*Section {
			bad := *sections[1]
			bad.Number = 2
			return []*Section{sections[0], &bad}
		}},
		{"mixed versions", func() []*Section {
			bad := *sections[1]
			bad.Version = 7
			return []*Section{sections[0], &bad}
		}},
		{"mixed extensions", func() []*Section {
			bad := *sections[1]
			bad.TableIDExt = 0x5678
			return []*Section{sections[0], &bad}
		}},
		{"no sections", func() []*Section { return nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoded := newFixtureTable(0, 30)
			err := AssembleTable(decoded, NewRegistry(), tc.sections())
			var seqErr *SequenceError
			if !errors.As(err, &seqErr) {
				t.Errorf("got %v, want SequenceError", err)
			}
			if len(decoded.entries) != 0 {
				t.Errorf("partial result leaked: %d entries", len(decoded.entries))
			}
		})
	}
}

func TestAssembleTableTruncatedPayload(t *testing.T) {
	t.Parallel()
	sections, err := PackTable(newFixtureTable(4, 30))
	if err != nil {
		t.Fatalf("PackTable: %v", err)
	}
	sections[0].Payload = sections[0].Payload[:len(sections[0].Payload)-10]
	decoded := newFixtureTable(0, 30)
	if err := AssembleTable(decoded, NewRegistry(), sections); !errors.Is(err, ErrStructure) {
		t.Errorf("truncated payload: got %v, want ErrStructure", err)
	}
}
