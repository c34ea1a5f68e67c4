package wirebuf

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Version is the last tagged version of the package
const Version = "1.0.0"

// the wire format is little-endian everywhere, on every arch
var byteOrder = binary.LittleEndian

// ByteBuffer is a growable byte sequence with a single read/write cursor.
// Writes extend the storage as needed and never fail; reads fail with
// ErrBufferUnderflow once the cursor would cross the end of the payload.
type ByteBuffer struct {
	pos    int
	buffer []byte
}

// New creates an empty ByteBuffer with the cursor at 0.
func New() *ByteBuffer {
	return &ByteBuffer{}
}

// NewFromBytes creates a ByteBuffer over an existing payload, with the cursor
// at 0. The buffer takes ownership of the slice; the caller must not keep
// writing to it.
func NewFromBytes(data []byte) *ByteBuffer {
	return &ByteBuffer{
		pos:    0,
		buffer: data,
	}
}

// Pos returns the current cursor offset.
func (b *ByteBuffer) Pos() int { return b.pos }

// Len returns the current size of the payload.
func (b *ByteBuffer) Len() int { return len(b.buffer) }

// Remaining returns the number of bytes between the cursor and the end of
// the payload.
func (b *ByteBuffer) Remaining() int { return len(b.buffer) - b.pos }

// SetPos moves the cursor to the given offset. Any position from 0 through
// Len() inclusive is valid; Len() parks the cursor at end-of-payload.
func (b *ByteBuffer) SetPos(position int) error {
	if position < 0 || position > len(b.buffer) {
		return errors.Wrapf(ErrOutOfRange, "position %d, payload %d bytes", position, len(b.buffer))
	}

	b.pos = position
	return nil
}

// MustSetPos moves the cursor and panics if the offset is out of range.
func (b *ByteBuffer) MustSetPos(position int) {
	if err := b.SetPos(position); err != nil {
		panic(err)
	}
}

// Rewind moves the cursor back to 0, typically to decode a payload that was
// just encoded.
func (b *ByteBuffer) Rewind() *ByteBuffer {
	b.pos = 0
	return b
}

// Bytes returns the full payload from offset 0, regardless of the cursor.
// The slice is the buffer's backing storage, not a copy; the caller must not
// modify it.
func (b *ByteBuffer) Bytes() []byte { return b.buffer }

// Hex returns the payload as a lowercase hex string, two digits per byte,
// no separators.
func (b *ByteBuffer) Hex() string { return hex.EncodeToString(b.buffer) }

// ensureCapacity grows the payload so that n bytes fit at the cursor. New
// bytes read as zero, including when the backing slice came from a caller
// and has stale capacity beyond its length.
func (b *ByteBuffer) ensureCapacity(n int) {
	need := b.pos + n
	if need <= len(b.buffer) {
		return
	}

	if need > cap(b.buffer) {
		c := 2 * need
		if c < 64 {
			c = 64
		}
		grown := make([]byte, len(b.buffer), c)
		copy(grown, b.buffer)
		b.buffer = grown
	}

	tail := b.buffer[len(b.buffer):need]
	for i := range tail {
		tail[i] = 0
	}
	b.buffer = b.buffer[:need]
}

// Write appends raw bytes at the cursor, growing the payload as needed. It
// implements io.Writer and never returns an error.
func (b *ByteBuffer) Write(data []byte) (int, error) {
	b.ensureCapacity(len(data))
	copy(b.buffer[b.pos:], data)
	b.pos += len(data)
	return len(data), nil
}

// WriteInt32 writes an int32 as 4 little-endian bytes.
func (b *ByteBuffer) WriteInt32(val int32) *ByteBuffer {
	return b.WriteUint32(uint32(val))
}

// WriteUint32 writes a uint32 as 4 little-endian bytes.
func (b *ByteBuffer) WriteUint32(val uint32) *ByteBuffer {
	b.ensureCapacity(4)
	byteOrder.PutUint32(b.buffer[b.pos:], val)
	b.pos += 4
	return b
}

// WriteFloat32 writes a float32 as its IEEE-754 bits, little-endian.
func (b *ByteBuffer) WriteFloat32(val float32) *ByteBuffer {
	return b.WriteUint32(math.Float32bits(val))
}

// WriteByte writes a single byte.
func (b *ByteBuffer) WriteByte(val byte) *ByteBuffer {
	b.ensureCapacity(1)
	b.buffer[b.pos] = val
	b.pos++
	return b
}

// WriteBool writes a bool as one byte, 0x01 for true and 0x00 for false.
func (b *ByteBuffer) WriteBool(val bool) *ByteBuffer {
	if val {
		return b.WriteByte(1)
	}
	return b.WriteByte(0)
}

// WriteString writes the string's UTF-8 byte length as an int32 prefix,
// followed by the raw bytes.
func (b *ByteBuffer) WriteString(val string) *ByteBuffer {
	b.WriteInt32(int32(len(val)))
	b.ensureCapacity(len(val))
	copy(b.buffer[b.pos:], val)
	b.pos += len(val)
	return b
}

// ReadInt32 reads 4 little-endian bytes as an int32.
func (b *ByteBuffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads 4 little-endian bytes as a uint32.
func (b *ByteBuffer) ReadUint32() (uint32, error) {
	if b.pos+4 > len(b.buffer) {
		return 0, errors.Wrapf(ErrBufferUnderflow, "4 bytes at offset %d, payload %d bytes", b.pos, len(b.buffer))
	}

	val := byteOrder.Uint32(b.buffer[b.pos:])
	b.pos += 4
	return val, nil
}

// ReadFloat32 reads 4 little-endian bytes as an IEEE-754 float32.
func (b *ByteBuffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadByte reads a single byte.
func (b *ByteBuffer) ReadByte() (byte, error) {
	if b.pos >= len(b.buffer) {
		return 0, errors.Wrapf(ErrBufferUnderflow, "1 byte at offset %d, payload %d bytes", b.pos, len(b.buffer))
	}

	val := b.buffer[b.pos]
	b.pos++
	return val, nil
}

// ReadBool reads one byte and maps any nonzero value to true.
func (b *ByteBuffer) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	return v != 0, err
}

// ReadBytes reads n raw bytes into a fresh slice.
func (b *ByteBuffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || b.pos+n > len(b.buffer) {
		return nil, errors.Wrapf(ErrBufferUnderflow, "%d bytes at offset %d, payload %d bytes", n, b.pos, len(b.buffer))
	}

	val := make([]byte, n)
	copy(val, b.buffer[b.pos:])
	b.pos += n
	return val, nil
}

// ReadString reads an int32 length prefix and that many bytes of UTF-8. A
// negative length, a body that overruns the payload, or invalid UTF-8 fails
// the whole read, with the cursor back before the prefix.
func (b *ByteBuffer) ReadString() (string, error) {
	start := b.pos

	length, err := b.ReadInt32()
	if err != nil {
		return "", errors.Wrap(err, "string length prefix")
	}

	if length < 0 || int(length) > len(b.buffer)-b.pos {
		b.pos = start
		return "", errors.Wrapf(ErrBufferUnderflow, "string body of %d bytes at offset %d, payload %d bytes", length, start, len(b.buffer))
	}

	body := b.buffer[b.pos : b.pos+int(length)]
	if !utf8.Valid(body) {
		b.pos = start
		return "", errors.Wrapf(ErrInvalidString, "string body at offset %d", start)
	}

	b.pos += int(length)
	return string(body), nil
}
