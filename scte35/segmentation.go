package scte35

import "github.com/zsiec/psikit/si"

// SegmentationDescriptorTag is the splice_descriptor_tag for
// segmentation_descriptor.
const SegmentationDescriptorTag uint8 = 0x02

// Segmentation type ids per SCTE-35 Table 23.
const (
	SegmentationTypeNotIndicated              uint8 = 0x00
	SegmentationTypeContentIdentification     uint8 = 0x01
	SegmentationTypeProgramStart              uint8 = 0x10
	SegmentationTypeProgramEnd                uint8 = 0x11
	SegmentationTypeProgramEarlyTermination   uint8 = 0x12
	SegmentationTypeProgramBreakaway          uint8 = 0x13
	SegmentationTypeProgramResumption         uint8 = 0x14
	SegmentationTypeProgramRunoverPlanned     uint8 = 0x15
	SegmentationTypeProgramRunoverUnplanned   uint8 = 0x16
	SegmentationTypeProgramOverlapStart       uint8 = 0x17
	SegmentationTypeProgramBlackoutOverride   uint8 = 0x18
	SegmentationTypeProgramStartInProgress    uint8 = 0x19
	SegmentationTypeChapterStart              uint8 = 0x20
	SegmentationTypeChapterEnd                uint8 = 0x21
	SegmentationTypeBreakStart                uint8 = 0x22
	SegmentationTypeBreakEnd                  uint8 = 0x23
	SegmentationTypeOpeningCreditStart        uint8 = 0x24
	SegmentationTypeOpeningCreditEnd          uint8 = 0x25
	SegmentationTypeClosingCreditStart        uint8 = 0x26
	SegmentationTypeClosingCreditEnd          uint8 = 0x27
	SegmentationTypeProviderAdStart           uint8 = 0x30
	SegmentationTypeProviderAdEnd             uint8 = 0x31
	SegmentationTypeDistributorAdStart        uint8 = 0x32
	SegmentationTypeDistributorAdEnd          uint8 = 0x33
	SegmentationTypeProviderPOStart           uint8 = 0x34
	SegmentationTypeProviderPOEnd             uint8 = 0x35
	SegmentationTypeDistributorPOStart        uint8 = 0x36
	SegmentationTypeDistributorPOEnd          uint8 = 0x37
	SegmentationTypeProviderOverlayPOStart    uint8 = 0x38
	SegmentationTypeProviderOverlayPOEnd      uint8 = 0x39
	SegmentationTypeDistributorOverlayPOStart uint8 = 0x3A
	SegmentationTypeDistributorOverlayPOEnd   uint8 = 0x3B
	SegmentationTypeProviderPromoStart        uint8 = 0x3C
	SegmentationTypeProviderPromoEnd          uint8 = 0x3D
	SegmentationTypeDistributorPromoStart     uint8 = 0x3E
	SegmentationTypeDistributorPromoEnd       uint8 = 0x3F
	SegmentationTypeUnscheduledEventStart     uint8 = 0x40
	SegmentationTypeUnscheduledEventEnd       uint8 = 0x41
	SegmentationTypeAltConOppStart            uint8 = 0x42
	SegmentationTypeAltConOppEnd              uint8 = 0x43
	SegmentationTypeProviderAdBlockStart      uint8 = 0x44
	SegmentationTypeProviderAdBlockEnd        uint8 = 0x45
	SegmentationTypeDistributorAdBlockStart   uint8 = 0x46
	SegmentationTypeDistributorAdBlockEnd     uint8 = 0x47
	SegmentationTypeNetworkStart              uint8 = 0x50
	SegmentationTypeNetworkEnd                uint8 = 0x51
)

// DeliveryRestrictions carries the five restriction bits present when
// delivery_not_restricted_flag is zero.
type DeliveryRestrictions struct {
	WebDeliveryAllowed bool
	NoRegionalBlackout bool
	ArchiveAllowed     bool
	DeviceRestrictions uint8 // 2 bits
}

// SegmentationDescriptor carries segmentation signaling per SCTE-35
// 10.3.3. Per-component segmentation is understood on decode but the
// component list is not retained; encoding always uses program mode.
type SegmentationDescriptor struct {
	si.Validity
	Identifier uint32 // CUEIdentifier when zero

	EventID uint32
	Cancel  bool

	// EventIDNotCompliant is the inverted
	// segmentation_event_id_compliance_indicator, so the zero value
	// describes a compliant event id.
	EventIDNotCompliant bool

	Restrictions     *DeliveryRestrictions
	Duration         *uint64 // 40 bits
	UPIDType         uint8
	UPID             []byte
	TypeID           uint8
	SegmentNum       uint8
	SegmentsExpected uint8
	SubSegmentNum    *uint8
	SubSegsExpected  uint8
}

func (d *SegmentationDescriptor) Tag() uint8      { return SegmentationDescriptorTag }
func (d *SegmentationDescriptor) XMLName() string { return "segmentation_descriptor" }

func (d *SegmentationDescriptor) Reset() {
	*d = SegmentationDescriptor{}
}

func (d *SegmentationDescriptor) EncodePayload(b *si.Buffer) {
	id := d.Identifier
	if id == 0 {
		id = CUEIdentifier
	}
	b.PutBits(uint64(id), 32)
	b.PutBits(uint64(d.EventID), 32)
	b.PutBool(d.Cancel)
	b.PutBool(!d.EventIDNotCompliant)
	b.PutReserved(6)
	if d.Cancel {
		return
	}
	b.PutBool(true) // program_segmentation_flag
	b.PutBool(d.Duration != nil)
	b.PutBool(d.Restrictions == nil)
	if r := d.Restrictions; r != nil {
		b.PutBool(r.WebDeliveryAllowed)
		b.PutBool(r.NoRegionalBlackout)
		b.PutBool(r.ArchiveAllowed)
		b.PutBits(uint64(r.DeviceRestrictions), 2)
	} else {
		b.PutReserved(5)
	}
	if d.Duration != nil {
		b.PutBits(*d.Duration, 40)
	}
	b.PutBits(uint64(d.UPIDType), 8)
	b.PutBits(uint64(len(d.UPID)), 8)
	b.PutBytes(d.UPID)
	b.PutBits(uint64(d.TypeID), 8)
	b.PutBits(uint64(d.SegmentNum), 8)
	b.PutBits(uint64(d.SegmentsExpected), 8)
	if d.SubSegmentNum != nil {
		b.PutBits(uint64(*d.SubSegmentNum), 8)
		b.PutBits(uint64(d.SubSegsExpected), 8)
	}
}

func (d *SegmentationDescriptor) DecodePayload(b *si.Buffer) {
	d.Identifier = uint32(b.ReadBits(32))
	d.EventID = uint32(b.ReadBits(32))
	d.Cancel = b.ReadBool()
	d.EventIDNotCompliant = !b.ReadBool()
	b.SkipReserved(6)
	if d.Cancel {
		return
	}
	programSegmentation := b.ReadBool()
	durationFlag := b.ReadBool()
	notRestricted := b.ReadBool()
	if notRestricted {
		b.SkipReserved(5)
	} else {
		var r DeliveryRestrictions
		r.WebDeliveryAllowed = b.ReadBool()
		r.NoRegionalBlackout = b.ReadBool()
		r.ArchiveAllowed = b.ReadBool()
		r.DeviceRestrictions = uint8(b.ReadBits(2))
		d.Restrictions = &r
	}
	if !programSegmentation {
		count := int(b.ReadBits(8))
		for i := 0; i < count; i++ {
			b.SkipBits(8) // component_tag
			b.SkipBits(7)
			b.SkipBits(33) // pts_offset
		}
	}
	if durationFlag {
		dur := b.ReadBits(40)
		d.Duration = &dur
	}
	d.UPIDType = uint8(b.ReadBits(8))
	d.UPID = b.ReadBytes(int(b.ReadBits(8)))
	d.TypeID = uint8(b.ReadBits(8))
	d.SegmentNum = uint8(b.ReadBits(8))
	d.SegmentsExpected = uint8(b.ReadBits(8))
	if b.CanReadBits(16) {
		sub := uint8(b.ReadBits(8))
		d.SubSegmentNum = &sub
		d.SubSegsExpected = uint8(b.ReadBits(8))
	}
}

func (d *SegmentationDescriptor) ToXML(e *si.XMLElement) {
	if d.Identifier != 0 && d.Identifier != CUEIdentifier {
		e.SetHexAttr("identifier", uint64(d.Identifier), 8)
	}
	e.SetHexAttr("segmentation_event_id", uint64(d.EventID), 8)
	if d.EventIDNotCompliant {
		e.SetBoolAttr("segmentation_event_id_compliance_indicator", false)
	}
	if d.Cancel {
		e.SetBoolAttr("cancel", true)
		return
	}
	e.SetHexAttr("segmentation_type_id", uint64(d.TypeID), 2)
	e.SetUIntAttr("segment_num", uint64(d.SegmentNum))
	e.SetUIntAttr("segments_expected", uint64(d.SegmentsExpected))
	if d.SubSegmentNum != nil {
		e.SetUIntAttr("sub_segment_num", uint64(*d.SubSegmentNum))
		e.SetUIntAttr("sub_segments_expected", uint64(d.SubSegsExpected))
	}
	if d.Duration != nil {
		e.SetUIntAttr("segmentation_duration", *d.Duration)
	}
	if d.UPIDType != 0 || len(d.UPID) > 0 {
		e.SetUIntAttr("segmentation_upid_type", uint64(d.UPIDType))
		e.SetHexText(d.UPID)
	}
	if r := d.Restrictions; r != nil {
		e.SetBoolAttr("web_delivery_allowed", r.WebDeliveryAllowed)
		e.SetBoolAttr("no_regional_blackout", r.NoRegionalBlackout)
		e.SetBoolAttr("archive_allowed", r.ArchiveAllowed)
		e.SetUIntAttr("device_restrictions", uint64(r.DeviceRestrictions))
	}
}

func (d *SegmentationDescriptor) FromXML(e *si.XMLElement) error {
	d.Reset()
	ident, err := e.OptUIntAttr("identifier", 0, 0xFFFFFFFF)
	if err != nil {
		return err
	}
	d.Identifier = uint32(ident)
	eventID, err := e.UIntAttr("segmentation_event_id", 0xFFFFFFFF)
	if err != nil {
		return err
	}
	d.EventID = uint32(eventID)
	compliant, err := e.BoolAttr("segmentation_event_id_compliance_indicator", true)
	if err != nil {
		return err
	}
	d.EventIDNotCompliant = !compliant
	cancel, err := e.BoolAttr("cancel", false)
	if err != nil {
		return err
	}
	if d.Cancel = cancel; cancel {
		return nil
	}
	typeID, err := e.UIntAttr("segmentation_type_id", 0xFF)
	if err != nil {
		return err
	}
	segNum, err := e.OptUIntAttr("segment_num", 0, 0xFF)
	if err != nil {
		return err
	}
	segExpected, err := e.OptUIntAttr("segments_expected", 0, 0xFF)
	if err != nil {
		return err
	}
	d.TypeID = uint8(typeID)
	d.SegmentNum = uint8(segNum)
	d.SegmentsExpected = uint8(segExpected)
	if _, ok := e.Attr("sub_segment_num"); ok {
		subNum, err := e.UIntAttr("sub_segment_num", 0xFF)
		if err != nil {
			return err
		}
		subExpected, err := e.OptUIntAttr("sub_segments_expected", 0, 0xFF)
		if err != nil {
			return err
		}
		sub := uint8(subNum)
		d.SubSegmentNum = &sub
		d.SubSegsExpected = uint8(subExpected)
	}
	if _, ok := e.Attr("segmentation_duration"); ok {
		dur, err := e.UIntAttr("segmentation_duration", 1<<40-1)
		if err != nil {
			return err
		}
		d.Duration = &dur
	}
	upidType, err := e.OptUIntAttr("segmentation_upid_type", 0, 0xFF)
	if err != nil {
		return err
	}
	d.UPIDType = uint8(upidType)
	upid, err := e.HexText()
	if err != nil {
		return err
	}
	d.UPID = upid
	if _, ok := e.Attr("web_delivery_allowed"); ok {
		var r DeliveryRestrictions
		if r.WebDeliveryAllowed, err = e.BoolAttr("web_delivery_allowed", false); err != nil {
			return err
		}
		if r.NoRegionalBlackout, err = e.BoolAttr("no_regional_blackout", false); err != nil {
			return err
		}
		if r.ArchiveAllowed, err = e.BoolAttr("archive_allowed", false); err != nil {
			return err
		}
		device, err := e.OptUIntAttr("device_restrictions", 3, 3)
		if err != nil {
			return err
		}
		r.DeviceRestrictions = uint8(device)
		d.Restrictions = &r
	}
	return nil
}

// Name returns a human-readable name for the segmentation type.
func (d *SegmentationDescriptor) Name() string {
	switch d.TypeID {
	case SegmentationTypeNotIndicated:
		return "Not Indicated"
	case SegmentationTypeContentIdentification:
		return "Content Identification"
	case SegmentationTypeProgramStart:
		return "Program Start"
	case SegmentationTypeProgramEnd:
		return "Program End"
	case SegmentationTypeProgramEarlyTermination:
		return "Program Early Termination"
	case SegmentationTypeProgramBreakaway:
		return "Program Breakaway"
	case SegmentationTypeProgramResumption:
		return "Program Resumption"
	case SegmentationTypeProgramRunoverPlanned:
		return "Program Runover Planned"
	case SegmentationTypeProgramRunoverUnplanned:
		return "Program Runover Unplanned"
	case SegmentationTypeProgramOverlapStart:
		return "Program Overlap Start"
	case SegmentationTypeProgramBlackoutOverride:
		return "Program Blackout Override"
	case SegmentationTypeProgramStartInProgress:
		return "Program Start - In Progress"
	case SegmentationTypeChapterStart:
		return "Chapter Start"
	case SegmentationTypeChapterEnd:
		return "Chapter End"
	case SegmentationTypeBreakStart:
		return "Break Start"
	case SegmentationTypeBreakEnd:
		return "Break End"
	case SegmentationTypeOpeningCreditStart:
		return "Opening Credit Start"
	case SegmentationTypeOpeningCreditEnd:
		return "Opening Credit End"
	case SegmentationTypeClosingCreditStart:
		return "Closing Credit Start"
	case SegmentationTypeClosingCreditEnd:
		return "Closing Credit End"
	case SegmentationTypeProviderAdStart:
		return "Provider Advertisement Start"
	case SegmentationTypeProviderAdEnd:
		return "Provider Advertisement End"
	case SegmentationTypeDistributorAdStart:
		return "Distributor Advertisement Start"
	case SegmentationTypeDistributorAdEnd:
		return "Distributor Advertisement End"
	case SegmentationTypeProviderPOStart:
		return "Provider Placement Opportunity Start"
	case SegmentationTypeProviderPOEnd:
		return "Provider Placement Opportunity End"
	case SegmentationTypeDistributorPOStart:
		return "Distributor Placement Opportunity Start"
	case SegmentationTypeDistributorPOEnd:
		return "Distributor Placement Opportunity End"
	case SegmentationTypeProviderOverlayPOStart:
		return "Provider Overlay Placement Opportunity Start"
	case SegmentationTypeProviderOverlayPOEnd:
		return "Provider Overlay Placement Opportunity End"
	case SegmentationTypeDistributorOverlayPOStart:
		return "Distributor Overlay Placement Opportunity Start"
	case SegmentationTypeDistributorOverlayPOEnd:
		return "Distributor Overlay Placement Opportunity End"
	case SegmentationTypeProviderPromoStart:
		return "Provider Promo Start"
	case SegmentationTypeProviderPromoEnd:
		return "Provider Promo End"
	case SegmentationTypeDistributorPromoStart:
		return "Distributor Promo Start"
	case SegmentationTypeDistributorPromoEnd:
		return "Distributor Promo End"
	case SegmentationTypeUnscheduledEventStart:
		return "Unscheduled Event Start"
	case SegmentationTypeUnscheduledEventEnd:
		return "Unscheduled Event End"
	case SegmentationTypeAltConOppStart:
		return "Alternate Content Opportunity Start"
	case SegmentationTypeAltConOppEnd:
		return "Alternate Content Opportunity End"
	case SegmentationTypeProviderAdBlockStart:
		return "Provider Ad Block Start"
	case SegmentationTypeProviderAdBlockEnd:
		return "Provider Ad Block End"
	case SegmentationTypeDistributorAdBlockStart:
		return "Distributor Ad Block Start"
	case SegmentationTypeDistributorAdBlockEnd:
		return "Distributor Ad Block End"
	case SegmentationTypeNetworkStart:
		return "Network Start"
	case SegmentationTypeNetworkEnd:
		return "Network End"
	default:
		return "Unknown"
	}
}
