package si

import "testing"

func FuzzDecodeSection(f *testing.F) {
	seed := &Section{
		TableID:    0x42,
		LongSyntax: true,
		TableIDExt: 0x1234,
		Version:    3,
		Current:    true,
		Payload:    []byte{0x01, 0x02, 0x03, 0x04},
	}
	if data, err := seed.Encode(); err == nil {
		f.Add(data)
	}
	f.Add([]byte{0x00, 0xB0, 0x0D})
	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := DecodeSection(data)
		if err != nil {
			return
		}
		// Anything that decodes cleanly must re-encode cleanly and
		// stay within its family's size cap.
		out, err := s.Encode()
		if err != nil {
			t.Fatalf("re-encode of decoded section failed: %v", err)
		}
		if len(out) > s.MaxSize() {
			t.Fatalf("re-encoded section exceeds maximum size: %d", len(out))
		}
	})
}
