package si

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestXMLMarshalParseRoundTrip(t *testing.T) {
	t.Parallel()
	e := NewElement("service_descriptor")
	e.SetHexAttr("service_type", 0x01, 2)
	e.SetUIntAttr("priority", 42)
	e.SetBoolAttr("visible", true)
	child := NewElement("payload")
	child.SetHexText([]byte{0xDE, 0xAD})
	e.AppendChild(child)

	doc, err := e.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := ParseXML(doc)
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if got.Name != "service_descriptor" {
		t.Errorf("root name: got %q", got.Name)
	}
	if v, err := got.UIntAttr("service_type", 0xFF); err != nil || v != 1 {
		t.Errorf("service_type: got %d, %v", v, err)
	}
	if v, err := got.UIntAttr("priority", 0xFF); err != nil || v != 42 {
		t.Errorf("priority: got %d, %v", v, err)
	}
	if v, err := got.BoolAttr("visible", false); err != nil || !v {
		t.Errorf("visible: got %v, %v", v, err)
	}
	c, ok := got.Child("payload")
	if !ok {
		t.Fatal("missing <payload> child")
	}
	data, err := c.HexText()
	if err != nil || !bytes.Equal(data, []byte{0xDE, 0xAD}) {
		t.Errorf("hex text: got % X, %v", data, err)
	}
}

func TestXMLUIntFormats(t *testing.T) {
	t.Parallel()
	e := NewElement("x")
	cases := []struct {
		raw  string
		want uint64
	}{
		{"42", 42},
		{"0x2A", 42},
		{"0X2a", 42},
		{"0x2A (42)", 42},
		{" 42 ", 42},
	}
	for _, tc := range cases {
		e.SetAttr("v", tc.raw)
		got, err := e.UIntAttr("v", 0xFFFF)
		if err != nil || got != tc.want {
			t.Errorf("parse %q: got %d, %v", tc.raw, got, err)
		}
	}
}

func TestXMLValidationErrors(t *testing.T) {
	t.Parallel()
	e := NewElement("service")
	e.SetUIntAttr("running_status", 9)

	// Out of range for a 3-bit field.
	_, err := e.UIntAttr("running_status", 7)
	var xerr *XMLError
	if !errors.As(err, &xerr) {
		t.Fatalf("got %v, want XMLError", err)
	}
	if xerr.Attr != "running_status" || xerr.Element != "service" {
		t.Errorf("error location: %+v", xerr)
	}
	if !strings.Contains(err.Error(), "running_status") {
		t.Errorf("message must name the attribute: %q", err.Error())
	}

	// Required attribute missing.
	if _, err := e.UIntAttr("service_id", 0xFFFF); !errors.As(err, &xerr) {
		t.Errorf("missing attribute: got %v, want XMLError", err)
	}

	// Malformed number.
	e.SetAttr("service_id", "twelve")
	if _, err := e.UIntAttr("service_id", 0xFFFF); !errors.As(err, &xerr) {
		t.Errorf("malformed value: got %v, want XMLError", err)
	}
}

func TestXMLParseOffsets(t *testing.T) {
	t.Parallel()
	doc := []byte("<root>\n  <child a=\"bad\"/>\n</root>\n")
	root, err := ParseXML(doc)
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	c, ok := root.Child("child")
	if !ok {
		t.Fatal("missing child")
	}
	_, err = c.UIntAttr("a", 7)
	var xerr *XMLError
	if !errors.As(err, &xerr) {
		t.Fatalf("got %v, want XMLError", err)
	}
	if xerr.Offset == 0 {
		t.Error("expected a source offset in the error")
	}
}

func TestXMLAttrOrderIrrelevant(t *testing.T) {
	t.Parallel()
	a, err := ParseXML([]byte(`<d x="1" y="2"/>`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseXML([]byte(`<d y="2" x="1"/>`))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"x", "y"} {
		av, _ := a.Attr(name)
		bv, _ := b.Attr(name)
		if av != bv {
			t.Errorf("attribute %s differs: %q vs %q", name, av, bv)
		}
	}
}
