package dvb

import "github.com/zsiec/psikit/si"

// CADescriptor announces a conditional access system and the PID
// carrying its EMM or ECM stream.
type CADescriptor struct {
	si.Validity
	SystemID    uint16
	PID         uint16
	PrivateData []byte
}

func (d *CADescriptor) Tag() uint8      { return TagCA }
func (d *CADescriptor) XMLName() string { return "CA_descriptor" }

func (d *CADescriptor) Reset() { *d = CADescriptor{} }

func (d *CADescriptor) EncodePayload(b *si.Buffer) {
	b.PutBits(uint64(d.SystemID), 16)
	b.PutReserved(3)
	b.PutBits(uint64(d.PID), 13)
	b.PutBytes(d.PrivateData)
}

func (d *CADescriptor) DecodePayload(b *si.Buffer) {
	d.SystemID = uint16(b.ReadBits(16))
	b.SkipReserved(3)
	d.PID = uint16(b.ReadBits(13))
	d.PrivateData = b.ReadBytes(b.RemainingReadBytes())
}

func (d *CADescriptor) ToXML(e *si.XMLElement) {
	e.SetHexAttr("CA_system_id", uint64(d.SystemID), 4)
	e.SetHexAttr("CA_PID", uint64(d.PID), 4)
	if len(d.PrivateData) > 0 {
		e.SetHexText(d.PrivateData)
	}
}

func (d *CADescriptor) FromXML(e *si.XMLElement) error {
	sysid, err := e.UIntAttr("CA_system_id", 0xFFFF)
	if err != nil {
		return err
	}
	pid, err := e.UIntAttr("CA_PID", 0x1FFF)
	if err != nil {
		return err
	}
	data, err := e.HexText()
	if err != nil {
		return err
	}
	d.SystemID = uint16(sysid)
	d.PID = uint16(pid)
	d.PrivateData = data
	return nil
}
