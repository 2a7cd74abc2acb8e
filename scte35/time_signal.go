package scte35

import "github.com/zsiec/psikit/si"

// TimeSignal marks a point in the stream, usually qualified by
// segmentation descriptors.
type TimeSignal struct {
	SpliceTime SpliceTime
}

func (cmd *TimeSignal) Type() uint8     { return CommandTimeSignal }
func (cmd *TimeSignal) xmlName() string { return "time_signal" }

func (cmd *TimeSignal) encode(b *si.Buffer) {
	encodeSpliceTime(b, cmd.SpliceTime)
}

func (cmd *TimeSignal) decode(b *si.Buffer) {
	cmd.SpliceTime = decodeSpliceTime(b)
}

func (cmd *TimeSignal) toXML(e *si.XMLElement) {
	if cmd.SpliceTime.PTS != nil {
		e.SetUIntAttr("pts_time", *cmd.SpliceTime.PTS)
	}
}

func (cmd *TimeSignal) fromXML(e *si.XMLElement) error {
	if _, ok := e.Attr("pts_time"); ok {
		pts, err := e.UIntAttr("pts_time", 1<<33-1)
		if err != nil {
			return err
		}
		cmd.SpliceTime.PTS = &pts
	}
	return nil
}
