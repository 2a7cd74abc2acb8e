// Package si implements the shared engine behind MPEG/DVB/SCTE signaling
// structures: a bit-granular codec buffer, the section envelope with its
// MPEG-2 CRC32, a registry resolving raw descriptor tags to concrete types,
// the descriptor/table codec contracts, the multi-section packing engine,
// and an XML bridge for displaying and compiling decoded structures.
package si

// Buffer is a byte buffer with independent bit-granular read and write
// cursors. Bits are packed MSB-first within each byte, matching the wire
// convention of MPEG/DVB signaling.
//
// Nested length-prefixed sub-regions (descriptor loops, ES info loops,
// command bodies) are handled with PushWriteLength/PushReadLength and
// PopLength, which backpatch the reserved length field on the write side
// and cap further reads on the read side.
//
// Overruns never panic. A read past the current capacity returns a zero
// value and sets a sticky error flag; once the flag is set all further
// reads return zero values and all further writes are dropped, so a codec
// can finish a full pass and check Error once at the end. Region stack
// misuse (popping with nothing pushed, closing a byte-misaligned length
// region) is a programming error and panics.
type Buffer struct {
	data     []byte
	readPos  int // bit offset of the read cursor
	writePos int // bit offset of the write cursor
	readCap  int // read limit in bits, clamped by the innermost read region
	err      bool
	regions  []region
}

type region struct {
	write    bool
	lenPos   int // write: bit offset of the reserved length field
	lenWidth int // write: width of the reserved length field
	start    int // write: bit offset just past the length field
	end      int // read: bit offset of the end of the sub-region
	savedCap int // read: readCap before the region was entered
}

// NewBuffer returns an empty Buffer with a fixed capacity of size bytes,
// ready for writing.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size), readCap: size * 8}
}

// NewReadBuffer returns a Buffer wrapping data for reading. The buffer
// aliases data rather than copying it.
func NewReadBuffer(data []byte) *Buffer {
	return &Buffer{data: data, writePos: len(data) * 8, readCap: len(data) * 8}
}

// Error reports whether a read or write has overrun the buffer. The flag
// is sticky: once set, reads return zero values and writes are dropped.
func (b *Buffer) Error() bool { return b.err }

// SetError forces the sticky error flag, poisoning further reads and writes.
func (b *Buffer) SetError() { b.err = true }

func (b *Buffer) readLimit() int {
	if b.writePos < b.readCap {
		return b.writePos
	}
	return b.readCap
}

// CanReadBits reports whether n more bits can be read without overrun.
func (b *Buffer) CanReadBits(n int) bool {
	return !b.err && b.readPos+n <= b.readLimit()
}

// RemainingReadBits returns the number of bits left before the current
// read capacity, or 0 once the error flag is set.
func (b *Buffer) RemainingReadBits() int {
	if b.err || b.readPos > b.readLimit() {
		return 0
	}
	return b.readLimit() - b.readPos
}

// RemainingReadBytes returns the number of whole bytes left to read.
func (b *Buffer) RemainingReadBytes() int { return b.RemainingReadBits() / 8 }

// RemainingWriteBits returns the number of bits of capacity left to write.
func (b *Buffer) RemainingWriteBits() int {
	if b.err {
		return 0
	}
	return len(b.data)*8 - b.writePos
}

// RemainingWriteBytes returns the number of whole bytes of capacity left.
func (b *Buffer) RemainingWriteBytes() int { return b.RemainingWriteBits() / 8 }

// BytesWritten returns the number of bytes produced so far, counting a
// trailing partial byte as one.
func (b *Buffer) BytesWritten() int { return (b.writePos + 7) / 8 }

// Bytes returns the written content. The slice aliases the buffer store.
func (b *Buffer) Bytes() []byte { return b.data[:b.BytesWritten()] }

// ReadBits reads the next n bits (n <= 64) MSB-first and returns them as
// an unsigned integer. On overrun it returns 0 and sets the error flag.
func (b *Buffer) ReadBits(n int) uint64 {
	if n < 0 || n > 64 {
		panic("si: ReadBits width out of range")
	}
	if b.err || b.readPos+n > b.readLimit() {
		b.err = true
		return 0
	}
	var v uint64
	pos := b.readPos
	// Fast path for byte-aligned whole bytes.
	if pos%8 == 0 && n%8 == 0 {
		for i := 0; i < n/8; i++ {
			v = v<<8 | uint64(b.data[pos/8+i])
		}
		b.readPos += n
		return v
	}
	for i := 0; i < n; i++ {
		byteIdx := pos / 8
		bitIdx := 7 - (pos % 8)
		v <<= 1
		if (b.data[byteIdx]>>uint(bitIdx))&1 == 1 {
			v |= 1
		}
		pos++
	}
	b.readPos = pos
	return v
}

// PeekBits returns the next n bits without moving the read cursor. Unlike
// ReadBits it does not set the error flag; callers gate it on CanReadBits.
func (b *Buffer) PeekBits(n int) uint64 {
	if !b.CanReadBits(n) {
		return 0
	}
	saved := b.readPos
	v := b.ReadBits(n)
	b.readPos = saved
	return v
}

// ReadBool reads a single bit.
func (b *Buffer) ReadBool() bool { return b.ReadBits(1) == 1 }

// ReadBytes reads the next n whole bytes. The read cursor must be byte
// aligned for the fast path; misaligned reads are assembled bit by bit.
// On overrun it returns nil and sets the error flag.
func (b *Buffer) ReadBytes(n int) []byte {
	if n < 0 || b.err || b.readPos+n*8 > b.readLimit() {
		if n != 0 {
			b.err = true
		}
		return nil
	}
	out := make([]byte, n)
	if b.readPos%8 == 0 {
		copy(out, b.data[b.readPos/8:])
		b.readPos += n * 8
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = byte(b.ReadBits(8))
	}
	return out
}

// SkipBits advances the read cursor by n bits, flagging an overrun.
func (b *Buffer) SkipBits(n int) {
	if b.err {
		return
	}
	if b.readPos+n > b.readLimit() {
		b.readPos = b.readLimit()
		b.err = true
		return
	}
	b.readPos += n
}

// SkipReserved advances the read cursor past n reserved bits.
func (b *Buffer) SkipReserved(n int) { b.SkipBits(n) }

// PutBits writes the low n bits of v (n <= 64) MSB-first. Writes are
// dropped once the error flag is set; a write past capacity sets it.
func (b *Buffer) PutBits(v uint64, n int) {
	if n < 0 || n > 64 {
		panic("si: PutBits width out of range")
	}
	if b.err {
		return
	}
	if b.writePos+n > len(b.data)*8 {
		b.err = true
		return
	}
	pos := b.writePos
	if pos%8 == 0 && n%8 == 0 {
		for i := n/8 - 1; i >= 0; i-- {
			b.data[pos/8] = byte(v >> uint(i*8))
			pos += 8
		}
		b.writePos = pos
		return
	}
	for i := n - 1; i >= 0; i-- {
		byteIdx := pos / 8
		bitIdx := 7 - (pos % 8)
		if (v>>uint(i))&1 == 1 {
			b.data[byteIdx] |= 1 << uint(bitIdx)
		} else {
			b.data[byteIdx] &^= 1 << uint(bitIdx)
		}
		pos++
	}
	b.writePos = pos
}

// PutBool writes a single bit.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.PutBits(1, 1)
	} else {
		b.PutBits(0, 1)
	}
}

// PutBytes writes p at the write cursor.
func (b *Buffer) PutBytes(p []byte) {
	if b.err {
		return
	}
	if b.writePos+len(p)*8 > len(b.data)*8 {
		b.err = true
		return
	}
	if b.writePos%8 == 0 {
		copy(b.data[b.writePos/8:], p)
		b.writePos += len(p) * 8
		return
	}
	for _, v := range p {
		b.PutBits(uint64(v), 8)
	}
}

// PutReserved writes n reserved bits, all ones per DVB convention.
func (b *Buffer) PutReserved(n int) {
	for n > 32 {
		b.PutBits(0xFFFFFFFF, 32)
		n -= 32
	}
	if n > 0 {
		b.PutBits(uint64(1)<<uint(n)-1, n)
	}
}

// PushWriteLength reserves a width-bit length field at the write cursor
// and opens a sub-region. The matching PopLength backpatches the field
// with the number of bytes written inside the region.
func (b *Buffer) PushWriteLength(width int) {
	if width < 1 || width > 32 {
		panic("si: length field width out of range")
	}
	lenPos := b.writePos
	b.PutBits(0, width)
	b.regions = append(b.regions, region{
		write:    true,
		lenPos:   lenPos,
		lenWidth: width,
		start:    b.writePos,
	})
}

// PushReadLength reads a width-bit byte count at the read cursor and
// opens a sub-region capping further reads to that many bytes. If the
// declared length runs past the current capacity the error flag is set
// and the region is clamped. The matching PopLength skips any unread
// remainder of the region and restores the outer capacity.
func (b *Buffer) PushReadLength(width int) {
	if width < 1 || width > 32 {
		panic("si: length field width out of range")
	}
	length := int(b.ReadBits(width))
	savedCap := b.readCap
	end := b.readPos + length*8
	if end > b.readLimit() {
		b.err = true
		end = b.readLimit()
	}
	b.readCap = end
	b.regions = append(b.regions, region{
		end:      end,
		savedCap: savedCap,
	})
}

// PopLength closes the innermost sub-region. Regions are a strict LIFO;
// popping with an empty stack is a contract violation and panics.
func (b *Buffer) PopLength() {
	if len(b.regions) == 0 {
		panic("si: region stack underflow")
	}
	f := b.regions[len(b.regions)-1]
	b.regions = b.regions[:len(b.regions)-1]
	if f.write {
		if b.err {
			return
		}
		diff := b.writePos - f.start
		if diff%8 != 0 {
			panic("si: length-prefixed region not byte aligned")
		}
		val := uint64(diff / 8)
		if f.lenWidth < 64 && val >= 1<<uint(f.lenWidth) {
			// Region content too large for its length field.
			b.err = true
			return
		}
		b.patchBits(f.lenPos, f.lenWidth, val)
		return
	}
	if b.readPos < f.end {
		b.readPos = f.end
	}
	b.readCap = f.savedCap
}

// patchBits overwrites n bits at bit offset pos without moving a cursor.
func (b *Buffer) patchBits(pos, n int, v uint64) {
	for i := n - 1; i >= 0; i-- {
		byteIdx := pos / 8
		bitIdx := 7 - (pos % 8)
		if (v>>uint(i))&1 == 1 {
			b.data[byteIdx] |= 1 << uint(bitIdx)
		} else {
			b.data[byteIdx] &^= 1 << uint(bitIdx)
		}
		pos++
	}
}
