package si

// TableIdentity carries the long-header fields stamped into every section
// of a logical table.
type TableIdentity struct {
	TableID    uint8
	TableIDExt uint16
	Version    uint8 // 5 bits
	Current    bool
}

// TablePacking parameterizes how a table type maps onto sections. These
// are per-type constants, not per-instance state.
type TablePacking struct {
	// LongSyntax selects the long section header with extension,
	// version and numbering fields. Short-syntax tables are always
	// single section.
	LongSyntax bool

	// PrivateIndicator is the value of the header bit after the syntax
	// indicator (reserved_future_use in DVB tables, which set it).
	PrivateIndicator bool

	// PrivateFamily places sections in the 4096-byte family.
	PrivateFamily bool

	// CRCProtected adds the trailing CRC32. Implied by LongSyntax.
	CRCProtected bool

	// PerSection re-emits the table's common fields in every section.
	// When false they appear in the first section only.
	PerSection bool

	// EntryRegionWidth, when non-zero, wraps each section's entry run
	// in a length field this many bits wide (descriptor_loop_length,
	// transport_stream_loop_length and similar). The common fields
	// write any reserved bits preceding the length field themselves.
	EntryRegionWidth int

	// SingleSection forbids splitting; entries that do not fit the one
	// section are dropped from the tail.
	SingleSection bool
}

// Table is the codec contract every concrete table type implements. A
// table is a set of common fields plus an ordered run of entries; the
// packing engine slices the entry run across as many sections as the
// content needs, so Encode/DecodeEntry must not assume anything about
// section boundaries.
//
// DecodeCommon receives the identity recovered from the section header
// (the extension field carries the transport stream id, service id or
// network id depending on the type) and whether this is the sequence's
// first section. DecodeEntry is called repeatedly until the section's
// entry region is exhausted; on structural inconsistency it marks the
// instance invalid, which stops the run.
type Table interface {
	Identity() TableIdentity
	Packing() TablePacking
	XMLName() string
	Reset()
	Valid() bool
	SetValid(bool)

	EncodeCommon(b *Buffer)
	EntryCount() int
	EncodeEntry(b *Buffer, i int)
	DecodeCommon(ctx *DecodeContext, b *Buffer, id TableIdentity, first bool)
	DecodeEntry(ctx *DecodeContext, b *Buffer)

	ToXML(e *XMLElement)
	FromXML(reg *Registry, e *XMLElement) error
}

// TableToXML renders a table as its registered root element.
func TableToXML(t Table) *XMLElement {
	e := NewElement(t.XMLName())
	t.ToXML(e)
	return e
}

// TableFromXML builds a table from its root element, dispatching on the
// element name.
func TableFromXML(reg *Registry, e *XMLElement) (Table, error) {
	r, ok := reg.TableByName(e.Name)
	if !ok {
		return nil, &XMLError{Element: e.Name, Offset: e.off, Msg: "unknown table element"}
	}
	t := r.New()
	if err := t.FromXML(reg, e); err != nil {
		return nil, err
	}
	return t, nil
}
