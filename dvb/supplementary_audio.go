package dvb

import "github.com/zsiec/psikit/si"

// SupplementaryAudioDescriptor is an extension descriptor (secondary
// tag 0x06) describing an alternate audio rendition such as audio
// description. Language is optional on the wire.
type SupplementaryAudioDescriptor struct {
	si.Validity
	MixType        bool
	Classification uint8 // 5 bits
	Language       *string
	PrivateData    []byte
}

func (d *SupplementaryAudioDescriptor) Tag() uint8          { return si.DescriptorTagExtension }
func (d *SupplementaryAudioDescriptor) ExtensionTag() uint8 { return ExtTagSupplementaryAudio }

func (d *SupplementaryAudioDescriptor) XMLName() string {
	return "supplementary_audio_descriptor"
}

func (d *SupplementaryAudioDescriptor) Reset() { *d = SupplementaryAudioDescriptor{} }

func (d *SupplementaryAudioDescriptor) EncodePayload(b *si.Buffer) {
	b.PutBool(d.MixType)
	b.PutBits(uint64(d.Classification), 5)
	b.PutReserved(1)
	b.PutBool(d.Language != nil)
	if d.Language != nil {
		putLanguageCode(b, *d.Language)
	}
	b.PutBytes(d.PrivateData)
}

func (d *SupplementaryAudioDescriptor) DecodePayload(b *si.Buffer) {
	d.MixType = b.ReadBool()
	d.Classification = uint8(b.ReadBits(5))
	b.SkipReserved(1)
	if b.ReadBool() {
		code := readLanguageCode(b)
		d.Language = &code
	}
	d.PrivateData = b.ReadBytes(b.RemainingReadBytes())
}

func (d *SupplementaryAudioDescriptor) ToXML(e *si.XMLElement) {
	e.SetBoolAttr("mix_type", d.MixType)
	e.SetUIntAttr("editorial_classification", uint64(d.Classification))
	if d.Language != nil {
		e.SetAttr("ISO_639_language_code", *d.Language)
	}
	if len(d.PrivateData) > 0 {
		e.SetHexText(d.PrivateData)
	}
}

func (d *SupplementaryAudioDescriptor) FromXML(e *si.XMLElement) error {
	mix, err := e.BoolAttr("mix_type", false)
	if err != nil {
		return err
	}
	cls, err := e.OptUIntAttr("editorial_classification", 0, 1<<5-1)
	if err != nil {
		return err
	}
	d.MixType = mix
	d.Classification = uint8(cls)
	if code, ok := e.Attr("ISO_639_language_code"); ok {
		d.Language = &code
	}
	data, err := e.HexText()
	if err != nil {
		return err
	}
	d.PrivateData = data
	return nil
}
