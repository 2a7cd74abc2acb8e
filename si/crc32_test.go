package si

import (
	"encoding/hex"
	"testing"
)

func TestCRC32KnownVector(t *testing.T) {
	t.Parallel()
	// "123456789" is a standard test vector for CRC algorithms.
	data := []byte("123456789")
	got := CRC32(data)
	want := uint32(0x0376E6E7)
	if got != want {
		t.Errorf("CRC32(%q) = 0x%08X, want 0x%08X", data, got, want)
	}
}

func TestVerifyCRC32GoldenSection(t *testing.T) {
	t.Parallel()
	// A complete SCTE-35 splice section captured off the wire.
	data, _ := hex.DecodeString("fc302700000000000000fff00506fe000dbba00011020f43554549000000017fbf0000300101ee197d02")
	if err := verifyCRC32(data); err != nil {
		t.Errorf("verifyCRC32 failed on golden vector: %v", err)
	}
	data[10] ^= 0xFF
	if err := verifyCRC32(data); err == nil {
		t.Error("expected CRC error on corrupted data")
	}
}

func TestVerifyCRC32TooShort(t *testing.T) {
	t.Parallel()
	if err := verifyCRC32([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error on short data")
	}
}
