package dvb

import "github.com/zsiec/psikit/si"

// Audio type values for ISO639LanguageEntry.
const (
	AudioTypeUndefined = iota
	AudioTypeCleanEffects
	AudioTypeHearingImpaired
	AudioTypeVisualImpairedCommentary
)

// ISO639LanguageDescriptor labels an audio stream with one or more
// language codes.
type ISO639LanguageDescriptor struct {
	si.Validity
	Languages []ISO639LanguageEntry
}

// ISO639LanguageEntry is one language code with its audio type.
type ISO639LanguageEntry struct {
	Code      string
	AudioType uint8
}

func (d *ISO639LanguageDescriptor) Tag() uint8      { return TagISO639Language }
func (d *ISO639LanguageDescriptor) XMLName() string { return "ISO_639_language_descriptor" }

func (d *ISO639LanguageDescriptor) Reset() { *d = ISO639LanguageDescriptor{} }

// EncodePayload emits entries while they fit. Each entry is four bytes,
// so a short region drops trailing languages rather than splitting one.
func (d *ISO639LanguageDescriptor) EncodePayload(b *si.Buffer) {
	n := b.RemainingWriteBytes() / 4
	if si.MaxDescriptorPayload/4 < n {
		n = si.MaxDescriptorPayload / 4
	}
	if len(d.Languages) < n {
		n = len(d.Languages)
	}
	for _, l := range d.Languages[:n] {
		putLanguageCode(b, l.Code)
		b.PutBits(uint64(l.AudioType), 8)
	}
}

func (d *ISO639LanguageDescriptor) DecodePayload(b *si.Buffer) {
	for b.CanReadBits(32) {
		var l ISO639LanguageEntry
		l.Code = readLanguageCode(b)
		l.AudioType = uint8(b.ReadBits(8))
		d.Languages = append(d.Languages, l)
	}
}

func (d *ISO639LanguageDescriptor) ToXML(e *si.XMLElement) {
	for _, l := range d.Languages {
		c := si.NewElement("language")
		c.SetAttr("code", l.Code)
		c.SetUIntAttr("audio_type", uint64(l.AudioType))
		e.AppendChild(c)
	}
}

func (d *ISO639LanguageDescriptor) FromXML(e *si.XMLElement) error {
	for _, c := range e.ChildrenNamed("language") {
		var l ISO639LanguageEntry
		code, err := c.RequireAttr("code")
		if err != nil {
			return err
		}
		at, err := c.OptUIntAttr("audio_type", AudioTypeUndefined, 0xFF)
		if err != nil {
			return err
		}
		l.Code = code
		l.AudioType = uint8(at)
		d.Languages = append(d.Languages, l)
	}
	return nil
}
