package si

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XMLElement is one node of the interchange tree: scalar fields as
// attributes, repeated sub-entries as child elements, binary blobs as
// hex-encoded text. The engine only converts between structures and this
// tree; loading documents from files or URLs is the caller's business.
type XMLElement struct {
	Name     string
	Attrs    []XMLAttr
	Children []*XMLElement
	Text     string

	off int64 // byte offset in the source document, for error messages
}

// XMLAttr is one attribute. Order is preserved for stable output but is
// irrelevant to comparison and decoding.
type XMLAttr struct {
	Name  string
	Value string
}

// NewElement returns an element with the given name.
func NewElement(name string) *XMLElement {
	return &XMLElement{Name: name}
}

// AppendChild appends a child element.
func (e *XMLElement) AppendChild(c *XMLElement) {
	e.Children = append(e.Children, c)
}

// Child returns the first child with the given name.
func (e *XMLElement) Child(name string) (*XMLElement, bool) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ChildrenNamed returns all children with the given name, in order.
func (e *XMLElement) ChildrenNamed(name string) []*XMLElement {
	var out []*XMLElement
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// SetAttr sets an attribute, replacing an existing one of the same name.
func (e *XMLElement) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, XMLAttr{Name: name, Value: value})
}

// SetUIntAttr sets an attribute in decimal.
func (e *XMLElement) SetUIntAttr(name string, v uint64) {
	e.SetAttr(name, strconv.FormatUint(v, 10))
}

// SetHexAttr sets an identifier attribute in hexadecimal, zero padded to
// digits and followed by a parenthesized decimal rendering, per the
// display convention for ids.
func (e *XMLElement) SetHexAttr(name string, v uint64, digits int) {
	e.SetAttr(name, fmt.Sprintf("0x%0*X (%d)", digits, v, v))
}

// SetBoolAttr sets a boolean attribute as "true" or "false".
func (e *XMLElement) SetBoolAttr(name string, v bool) {
	e.SetAttr(name, strconv.FormatBool(v))
}

// Attr returns the raw value of an attribute.
func (e *XMLElement) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// RequireAttr returns the raw value of a required attribute.
func (e *XMLElement) RequireAttr(name string) (string, error) {
	v, ok := e.Attr(name)
	if !ok {
		return "", &XMLError{Element: e.Name, Attr: name, Offset: e.off, Msg: "required attribute missing"}
	}
	return v, nil
}

// parseUint accepts decimal, 0x-prefixed hexadecimal, and either form
// followed by a parenthesized decimal rendering ("0x2A (42)").
func parseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// UIntAttr reads a required unsigned attribute and validates it against
// max, the largest value the target bit field can carry.
func (e *XMLElement) UIntAttr(name string, max uint64) (uint64, error) {
	raw, err := e.RequireAttr(name)
	if err != nil {
		return 0, err
	}
	v, perr := parseUint(raw)
	if perr != nil {
		return 0, &XMLError{Element: e.Name, Attr: name, Offset: e.off,
			Msg: fmt.Sprintf("invalid unsigned value %q", raw)}
	}
	if v > max {
		return 0, &XMLError{Element: e.Name, Attr: name, Offset: e.off,
			Msg: fmt.Sprintf("value %d out of range 0..%d", v, max)}
	}
	return v, nil
}

// OptUIntAttr reads an optional unsigned attribute, returning def when it
// is absent.
func (e *XMLElement) OptUIntAttr(name string, def, max uint64) (uint64, error) {
	if _, ok := e.Attr(name); !ok {
		return def, nil
	}
	return e.UIntAttr(name, max)
}

// BoolAttr reads an optional boolean attribute.
func (e *XMLElement) BoolAttr(name string, def bool) (bool, error) {
	raw, ok := e.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &XMLError{Element: e.Name, Attr: name, Offset: e.off,
			Msg: fmt.Sprintf("invalid boolean value %q", raw)}
	}
	return v, nil
}

// SetHexText stores binary content as hex-encoded element text.
func (e *XMLElement) SetHexText(data []byte) {
	e.Text = hex.EncodeToString(data)
}

// HexText decodes the element's text as hex-encoded binary content.
func (e *XMLElement) HexText() ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, e.Text)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, &XMLError{Element: e.Name, Offset: e.off, Msg: "invalid hex content"}
	}
	return data, nil
}

// Marshal renders the element tree as an indented XML document.
func (e *XMLElement) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := e.encodeTo(enc); err != nil {
		return nil, fmt.Errorf("si: marshaling <%s>: %w", e.Name, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("si: marshaling <%s>: %w", e.Name, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (e *XMLElement) encodeTo(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.encodeTo(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// ParseXML parses an XML document into an element tree, recording
// approximate byte offsets for error reporting. Comments and processing
// instructions are dropped.
func ParseXML(data []byte) (*XMLElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *XMLElement
	var stack []*XMLElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("si: parsing XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &XMLElement{Name: t.Name.Local, off: dec.InputOffset()}
			for _, a := range t.Attr {
				e.Attrs = append(e.Attrs, XMLAttr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("si: parsing XML: multiple root elements")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.AppendChild(e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if s := strings.TrimSpace(string(t)); s != "" {
					stack[len(stack)-1].Text += s
				}
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("si: parsing XML: empty document")
	}
	return root, nil
}
