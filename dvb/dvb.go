// Package dvb implements concrete MPEG and DVB signaling types on top of
// the si engine: the PAT, PMT, SDT and NIT tables and a roster of
// descriptors covering the standard, private, and extension namespaces.
package dvb

import "github.com/zsiec/psikit/si"

// Table ids.
const (
	TableIDPAT      = 0x00
	TableIDPMT      = 0x02
	TableIDNIT      = 0x40
	TableIDNITOther = 0x41
	TableIDSDT      = 0x42
	TableIDSDTOther = 0x46
)

// Descriptor tags.
const (
	TagCA                   = 0x09
	TagISO639Language       = 0x0A
	TagMaximumBitrate       = 0x0E
	TagNetworkName          = 0x40
	TagService              = 0x48
	TagStreamIdentifier     = 0x52
	TagPrivateDataSpecifier = si.DescriptorTagPrivateDataSpecifier
	TagLogicalChannelNumber = 0x83 // EACEM private space only
)

// Extension descriptor secondary tags.
const (
	ExtTagSupplementaryAudio = 0x06
)

// PDSEACEM is the EACEM/EICTA private data specifier, the space the
// logical channel number descriptor lives in.
const PDSEACEM = 0x00000028

// Descriptors returns the package's descriptor registrations.
func Descriptors() []si.DescriptorRegistration {
	return []si.DescriptorRegistration{
		{ID: si.StandardEDID(TagCA), New: func() si.Descriptor { return new(CADescriptor) }},
		{ID: si.StandardEDID(TagISO639Language), New: func() si.Descriptor { return new(ISO639LanguageDescriptor) }},
		{ID: si.StandardEDID(TagMaximumBitrate), New: func() si.Descriptor { return new(MaximumBitrateDescriptor) }},
		{ID: si.StandardEDID(TagNetworkName), New: func() si.Descriptor { return new(NetworkNameDescriptor) }},
		{ID: si.StandardEDID(TagService), New: func() si.Descriptor { return new(ServiceDescriptor) }},
		{ID: si.StandardEDID(TagStreamIdentifier), New: func() si.Descriptor { return new(StreamIdentifierDescriptor) }},
		{ID: si.StandardEDID(TagPrivateDataSpecifier), New: func() si.Descriptor { return new(PrivateDataSpecifierDescriptor) }},
		{ID: si.PrivateEDID(PDSEACEM, TagLogicalChannelNumber), New: func() si.Descriptor { return new(LogicalChannelNumberDescriptor) }},
		{ID: si.ExtensionEDID(ExtTagSupplementaryAudio), New: func() si.Descriptor { return new(SupplementaryAudioDescriptor) }},
	}
}

// Tables returns the package's table registrations.
func Tables() []si.TableRegistration {
	return []si.TableRegistration{
		{IDs: []uint8{TableIDPAT}, New: func() si.Table { return new(PAT) }},
		{IDs: []uint8{TableIDPMT}, New: func() si.Table { return new(PMT) }},
		{IDs: []uint8{TableIDSDT, TableIDSDTOther}, New: func() si.Table { return new(SDT) }},
		{IDs: []uint8{TableIDNIT, TableIDNITOther}, New: func() si.Table { return new(NIT) }},
	}
}

// NewRegistry builds a registry with just this package's types. Programs
// mixing families combine the registration slices themselves.
func NewRegistry() *si.Registry {
	return si.NewRegistry(
		si.WithDescriptors(Descriptors()...),
		si.WithTables(Tables()...),
	)
}

// putLanguageCode writes an ISO 639-2 code as exactly three bytes,
// space padded.
func putLanguageCode(b *si.Buffer, code string) {
	for i := 0; i < 3; i++ {
		c := byte(' ')
		if i < len(code) {
			c = code[i]
		}
		b.PutBits(uint64(c), 8)
	}
}

// readLanguageCode reads a three-byte ISO 639-2 code, trimming padding.
func readLanguageCode(b *si.Buffer) string {
	raw := b.ReadBytes(3)
	end := len(raw)
	for end > 0 && raw[end-1] == ' ' {
		end--
	}
	return string(raw[:end])
}
