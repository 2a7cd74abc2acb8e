package scte35

import "github.com/zsiec/psikit/si"

// SpliceNull is a no-op command used as a heartbeat.
type SpliceNull struct{}

func (cmd *SpliceNull) Type() uint8     { return CommandSpliceNull }
func (cmd *SpliceNull) xmlName() string { return "splice_null" }

func (cmd *SpliceNull) encode(_ *si.Buffer) {}
func (cmd *SpliceNull) decode(_ *si.Buffer) {}

func (cmd *SpliceNull) toXML(_ *si.XMLElement) {}

func (cmd *SpliceNull) fromXML(_ *si.XMLElement) error { return nil }
