package si

import (
	"errors"
	"fmt"
)

// ErrStructure marks a structural inconsistency in binary input: a count
// or length field implying more data than is available, a section larger
// than its family allows, or content that cannot be packed. Errors
// wrapping it are recoverable; already-decoded fields keep their partial
// values but must not be trusted.
var ErrStructure = errors.New("structural inconsistency")

// SequenceError reports an incomplete or inconsistent multi-section
// sequence: a missing section number, a duplicate, or mismatched header
// fields across sections claiming the same identity. No partial table is
// produced when it is returned.
type SequenceError struct {
	TableID uint8
	Msg     string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("si: table 0x%02X: %s", e.TableID, e.Msg)
}

// XMLError reports a validation failure while converting an XML element
// tree to a structure: an out-of-range value, a missing required
// attribute, or a malformed field. Offset is the approximate byte offset
// of the element in the source document, when known.
type XMLError struct {
	Element string
	Attr    string
	Offset  int64
	Msg     string
}

func (e *XMLError) Error() string {
	where := "<" + e.Element + ">"
	if e.Attr != "" {
		where = "attribute " + e.Attr + " of " + where
	}
	if e.Offset > 0 {
		return fmt.Sprintf("si: %s (near offset %d): %s", where, e.Offset, e.Msg)
	}
	return fmt.Sprintf("si: %s: %s", where, e.Msg)
}
