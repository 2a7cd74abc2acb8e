package scte35

import "github.com/zsiec/psikit/si"

// BreakDuration specifies how long a splice lasts and whether the
// splicer returns automatically at its end.
type BreakDuration struct {
	AutoReturn bool
	Duration   uint64 // 33 bits
}

// SpliceInsert signals an in or out splice point. Encoding always uses
// program mode; the deprecated per-component form is understood on
// decode but the component times are not retained.
type SpliceInsert struct {
	EventID         uint32
	Cancel          bool
	OutOfNetwork    bool
	Immediate       bool
	SpliceTime      SpliceTime
	BreakDuration   *BreakDuration
	UniqueProgramID uint16
	AvailNum        uint8
	AvailsExpected  uint8
}

func (cmd *SpliceInsert) Type() uint8     { return CommandSpliceInsert }
func (cmd *SpliceInsert) xmlName() string { return "splice_insert" }

func (cmd *SpliceInsert) encode(b *si.Buffer) {
	b.PutBits(uint64(cmd.EventID), 32)
	b.PutBool(cmd.Cancel)
	b.PutReserved(7)
	if cmd.Cancel {
		return
	}
	b.PutBool(cmd.OutOfNetwork)
	b.PutBool(true) // program_splice_flag
	b.PutBool(cmd.BreakDuration != nil)
	b.PutBool(cmd.Immediate)
	b.PutReserved(4)
	if !cmd.Immediate {
		encodeSpliceTime(b, cmd.SpliceTime)
	}
	if cmd.BreakDuration != nil {
		b.PutBool(cmd.BreakDuration.AutoReturn)
		b.PutReserved(6)
		b.PutBits(cmd.BreakDuration.Duration, 33)
	}
	b.PutBits(uint64(cmd.UniqueProgramID), 16)
	b.PutBits(uint64(cmd.AvailNum), 8)
	b.PutBits(uint64(cmd.AvailsExpected), 8)
}

func (cmd *SpliceInsert) decode(b *si.Buffer) {
	cmd.EventID = uint32(b.ReadBits(32))
	cmd.Cancel = b.ReadBool()
	b.SkipReserved(7)
	if cmd.Cancel {
		return
	}
	cmd.OutOfNetwork = b.ReadBool()
	programSplice := b.ReadBool()
	durationFlag := b.ReadBool()
	cmd.Immediate = b.ReadBool()
	b.SkipReserved(4)
	if programSplice {
		if !cmd.Immediate {
			cmd.SpliceTime = decodeSpliceTime(b)
		}
	} else {
		count := int(b.ReadBits(8))
		for i := 0; i < count; i++ {
			b.SkipBits(8) // component_tag
			if !cmd.Immediate {
				decodeSpliceTime(b)
			}
		}
	}
	if durationFlag {
		var bd BreakDuration
		bd.AutoReturn = b.ReadBool()
		b.SkipReserved(6)
		bd.Duration = b.ReadBits(33)
		cmd.BreakDuration = &bd
	}
	cmd.UniqueProgramID = uint16(b.ReadBits(16))
	cmd.AvailNum = uint8(b.ReadBits(8))
	cmd.AvailsExpected = uint8(b.ReadBits(8))
}

func (cmd *SpliceInsert) toXML(e *si.XMLElement) {
	e.SetHexAttr("splice_event_id", uint64(cmd.EventID), 8)
	if cmd.Cancel {
		e.SetBoolAttr("cancel", true)
		return
	}
	e.SetBoolAttr("out_of_network", cmd.OutOfNetwork)
	e.SetBoolAttr("splice_immediate", cmd.Immediate)
	if cmd.SpliceTime.PTS != nil {
		e.SetUIntAttr("pts_time", *cmd.SpliceTime.PTS)
	}
	if cmd.BreakDuration != nil {
		e.SetUIntAttr("break_duration", cmd.BreakDuration.Duration)
		e.SetBoolAttr("auto_return", cmd.BreakDuration.AutoReturn)
	}
	e.SetUIntAttr("unique_program_id", uint64(cmd.UniqueProgramID))
	e.SetUIntAttr("avail_num", uint64(cmd.AvailNum))
	e.SetUIntAttr("avails_expected", uint64(cmd.AvailsExpected))
}

func (cmd *SpliceInsert) fromXML(e *si.XMLElement) error {
	eventID, err := e.UIntAttr("splice_event_id", 0xFFFFFFFF)
	if err != nil {
		return err
	}
	cmd.EventID = uint32(eventID)
	cancel, err := e.BoolAttr("cancel", false)
	if err != nil {
		return err
	}
	if cmd.Cancel = cancel; cancel {
		return nil
	}
	oon, err := e.BoolAttr("out_of_network", false)
	if err != nil {
		return err
	}
	immediate, err := e.BoolAttr("splice_immediate", false)
	if err != nil {
		return err
	}
	cmd.OutOfNetwork = oon
	cmd.Immediate = immediate
	if _, ok := e.Attr("pts_time"); ok {
		pts, err := e.UIntAttr("pts_time", 1<<33-1)
		if err != nil {
			return err
		}
		cmd.SpliceTime.PTS = &pts
	}
	if _, ok := e.Attr("break_duration"); ok {
		dur, err := e.UIntAttr("break_duration", 1<<33-1)
		if err != nil {
			return err
		}
		auto, err := e.BoolAttr("auto_return", false)
		if err != nil {
			return err
		}
		cmd.BreakDuration = &BreakDuration{AutoReturn: auto, Duration: dur}
	}
	upid, err := e.OptUIntAttr("unique_program_id", 0, 0xFFFF)
	if err != nil {
		return err
	}
	availNum, err := e.OptUIntAttr("avail_num", 0, 0xFF)
	if err != nil {
		return err
	}
	availsExpected, err := e.OptUIntAttr("avails_expected", 0, 0xFF)
	if err != nil {
		return err
	}
	cmd.UniqueProgramID = uint16(upid)
	cmd.AvailNum = uint8(availNum)
	cmd.AvailsExpected = uint8(availsExpected)
	return nil
}
