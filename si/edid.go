package si

import "fmt"

// Well-known descriptor tags the engine itself must recognize.
const (
	// DescriptorTagPrivateDataSpecifier switches the private data space
	// in effect for the rest of a descriptor list.
	DescriptorTagPrivateDataSpecifier = 0x5F

	// DescriptorTagExtension is the sentinel tag whose payload begins
	// with a secondary tag selecting the actual descriptor type.
	DescriptorTagExtension = 0x7F
)

// ScopeKind narrows the namespace a raw descriptor tag is interpreted in.
type ScopeKind uint8

const (
	// ScopeStandard covers tags defined by the base standards.
	ScopeStandard ScopeKind = iota

	// ScopePrivate covers tags valid only under a registered private
	// data specifier.
	ScopePrivate

	// ScopeExtension covers secondary tags carried behind the extension
	// sentinel tag.
	ScopeExtension

	// ScopeTable covers tags valid only inside a specific table type.
	ScopeTable
)

// EDID is the extended descriptor identity: the composite key that
// disambiguates a raw tag byte into a concrete structure type given its
// surrounding context. Within one scope at most one concrete type may
// claim a given identity; across scopes, resolution precedence is
// ScopeTable > ScopeExtension > ScopePrivate > ScopeStandard.
type EDID struct {
	Kind  ScopeKind
	Tag   uint8  // raw tag, or the secondary tag for ScopeExtension
	PDS   uint32 // private data specifier, ScopePrivate only
	Table uint8  // owning table id, ScopeTable only
}

// StandardEDID identifies a descriptor tag in the base standards.
func StandardEDID(tag uint8) EDID { return EDID{Kind: ScopeStandard, Tag: tag} }

// PrivateEDID identifies a descriptor tag within a private data space.
func PrivateEDID(pds uint32, tag uint8) EDID {
	return EDID{Kind: ScopePrivate, Tag: tag, PDS: pds}
}

// ExtensionEDID identifies a secondary tag behind the extension sentinel.
func ExtensionEDID(extTag uint8) EDID { return EDID{Kind: ScopeExtension, Tag: extTag} }

// TableEDID identifies a descriptor tag valid only inside one table type.
func TableEDID(tableID, tag uint8) EDID {
	return EDID{Kind: ScopeTable, Tag: tag, Table: tableID}
}

func (id EDID) String() string {
	switch id.Kind {
	case ScopePrivate:
		return fmt.Sprintf("tag 0x%02X in private space 0x%08X", id.Tag, id.PDS)
	case ScopeExtension:
		return fmt.Sprintf("extension tag 0x%02X", id.Tag)
	case ScopeTable:
		return fmt.Sprintf("tag 0x%02X in table 0x%02X", id.Tag, id.Table)
	default:
		return fmt.Sprintf("tag 0x%02X", id.Tag)
	}
}
