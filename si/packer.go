package si

import "fmt"

// PackTable serializes a logical table into one or more sections using
// greedy bin packing: entries are appended while they fit, and when one
// does not the current section is closed and a fresh one opened, with the
// common fields re-emitted per the type's packing parameters. Splitting
// only ever happens at entry boundaries; an entry too large for an empty
// section must shrink itself (text and list types truncate) or the pack
// fails. Section numbers are stamped in sequence and last_section_number
// is patched onto every section once the total is known.
func PackTable(t Table) ([]*Section, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("si: cannot pack invalid table 0x%02X: %w",
			t.Identity().TableID, ErrStructure)
	}
	p := t.Packing()
	id := t.Identity()

	maxSize := MaxStandardSectionSize
	if p.PrivateFamily {
		maxSize = MaxPrivateSectionSize
	}
	headerSize := ShortHeaderSize
	if p.LongSyntax {
		headerSize = LongHeaderSize
	}
	capBytes := maxSize - headerSize
	if p.LongSyntax || p.CRCProtected {
		capBytes -= CRCSize
	}

	// Size the entry scratch buffer to an empty section's entry space,
	// so entry types that truncate themselves (text fields, descriptor
	// lists) shrink against exactly what one fresh section could hold.
	commonSize := 0
	if p.PerSection {
		cb := NewBuffer(capBytes)
		t.EncodeCommon(cb)
		commonSize = cb.BytesWritten()
	}
	entryCap := capBytes - commonSize
	if p.EntryRegionWidth > 0 {
		entryCap -= (p.EntryRegionWidth + 7) / 8
	}

	var sections []*Section

	newSection := func(first bool) *Buffer {
		b := NewBuffer(capBytes)
		if first || p.PerSection {
			t.EncodeCommon(b)
		}
		if p.EntryRegionWidth > 0 {
			b.PushWriteLength(p.EntryRegionWidth)
		}
		return b
	}
	closeSection := func(b *Buffer) error {
		if p.EntryRegionWidth > 0 {
			b.PopLength()
		}
		if b.Error() {
			return fmt.Errorf("si: table 0x%02X content overran a %d-byte section: %w",
				id.TableID, maxSize, ErrStructure)
		}
		sections = append(sections, &Section{
			TableID:          id.TableID,
			LongSyntax:       p.LongSyntax,
			PrivateIndicator: p.PrivateIndicator,
			PrivateFamily:    p.PrivateFamily,
			CRCProtected:     p.LongSyntax || p.CRCProtected,
			TableIDExt:       id.TableIDExt,
			Version:          id.Version,
			Current:          id.Current,
			Number:           uint8(len(sections)),
			Payload:          b.Bytes(),
		})
		return nil
	}

	cur := newSection(true)
	for i := 0; i < t.EntryCount(); i++ {
		scratch := NewBuffer(entryCap)
		t.EncodeEntry(scratch, i)
		if scratch.Error() {
			return nil, fmt.Errorf("si: table 0x%02X entry %d exceeds section capacity: %w",
				id.TableID, i, ErrStructure)
		}
		entry := scratch.Bytes()

		if len(entry) > cur.RemainingWriteBytes() {
			if p.SingleSection || !p.LongSyntax {
				break // drop trailing entries, the run cannot split
			}
			if err := closeSection(cur); err != nil {
				return nil, err
			}
			cur = newSection(false)
		}
		cur.PutBytes(entry)
	}
	if err := closeSection(cur); err != nil {
		return nil, err
	}

	if len(sections) > 256 {
		return nil, fmt.Errorf("si: table 0x%02X needs %d sections, maximum is 256: %w",
			id.TableID, len(sections), ErrStructure)
	}
	last := uint8(len(sections) - 1)
	for _, s := range sections {
		s.LastNumber = last
	}
	return sections, nil
}

// AssembleTable decodes a logical table from all its sections. The
// sections must share one identity and version and form a contiguous
// 0..last_section_number run with no gaps or duplicates; anything else
// returns a SequenceError and no partial result. Entries are streamed
// out of each section's payload in section-number order, continuing
// seamlessly into the next.
func AssembleTable(t Table, reg *Registry, sections []*Section) error {
	if len(sections) == 0 {
		return &SequenceError{Msg: "no sections"}
	}
	first := sections[0]
	for _, s := range sections[1:] {
		switch {
		case s.TableID != first.TableID:
			return &SequenceError{TableID: first.TableID, Msg: "mixed table ids"}
		case s.TableIDExt != first.TableIDExt:
			return &SequenceError{TableID: first.TableID, Msg: "mixed table id extensions"}
		case s.Version != first.Version:
			return &SequenceError{TableID: first.TableID, Msg: "mixed versions"}
		case s.LastNumber != first.LastNumber:
			return &SequenceError{TableID: first.TableID, Msg: "mixed last section numbers"}
		}
	}
	ordered := make([]*Section, int(first.LastNumber)+1)
	for _, s := range sections {
		if int(s.Number) >= len(ordered) {
			return &SequenceError{TableID: first.TableID,
				Msg: fmt.Sprintf("section number %d past last %d", s.Number, first.LastNumber)}
		}
		if ordered[s.Number] != nil {
			return &SequenceError{TableID: first.TableID,
				Msg: fmt.Sprintf("duplicate section %d", s.Number)}
		}
		ordered[s.Number] = s
	}
	for i, s := range ordered {
		if s == nil {
			return &SequenceError{TableID: first.TableID,
				Msg: fmt.Sprintf("missing section %d", i)}
		}
	}

	p := t.Packing()
	t.Reset()
	t.SetValid(true)
	for i, s := range ordered {
		b := NewReadBuffer(s.Payload)
		ctx := &DecodeContext{Registry: reg, TableID: s.TableID}
		id := TableIdentity{
			TableID:    s.TableID,
			TableIDExt: s.TableIDExt,
			Version:    s.Version,
			Current:    s.Current,
		}
		if i == 0 || p.PerSection {
			t.DecodeCommon(ctx, b, id, i == 0)
		}
		if p.EntryRegionWidth > 0 {
			b.PushReadLength(p.EntryRegionWidth)
		}
		for t.Valid() && b.CanReadBits(8) {
			t.DecodeEntry(ctx, b)
		}
		if p.EntryRegionWidth > 0 {
			b.PopLength()
		}
		if b.Error() {
			t.SetValid(false)
		}
		if !t.Valid() {
			return fmt.Errorf("si: table 0x%02X section %d payload: %w",
				s.TableID, s.Number, ErrStructure)
		}
	}
	return nil
}

// DecodeTable resolves the table type for a section sequence and
// assembles it. Unregistered table ids are an error at this level;
// callers that want passthrough keep the raw sections instead.
func DecodeTable(reg *Registry, sections []*Section) (Table, error) {
	if len(sections) == 0 {
		return nil, &SequenceError{Msg: "no sections"}
	}
	r, ok := reg.TableByID(sections[0].TableID)
	if !ok {
		return nil, fmt.Errorf("si: no table type registered for id 0x%02X", sections[0].TableID)
	}
	t := r.New()
	if err := AssembleTable(t, reg, sections); err != nil {
		return nil, err
	}
	return t, nil
}
