package wirebuf

import (
	"encoding/hex"
	"math"
	"os"
	"path"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MappedBuffer is a fixed-capacity buffer whose storage is a memory-mapped
// file, so every write lands in the file without an explicit save step. A
// mapping cannot grow in place, which makes this the one buffer whose writes
// can fail: anything that would cross the mapped capacity returns
// ErrBufferOverflow with the cursor unmoved.
type MappedBuffer struct {
	pos  int
	data mmap.MMap
	loc  string // location of the memory mapped file
	size int    // size in bytes
}

// NewMappedBuffer creates a file of the given size at loc, replacing any
// existing file, and maps it read-write.
func NewMappedBuffer(loc string, size int) (*MappedBuffer, error) {
	if _, err := os.Stat(loc); err == nil {
		if err = os.Remove(loc); err != nil {
			return nil, errors.Wrap(err, "removing stale mapped file")
		}
	}

	if err := os.MkdirAll(path.Dir(loc), 0700); err != nil {
		return nil, errors.Wrap(err, "creating mapped file directory")
	}

	f, err := os.OpenFile(loc, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "creating mapped file")
	}
	defer f.Close()

	if err = f.Truncate(int64(size)); err != nil {
		return nil, errors.Wrapf(err, "sizing mapped file to %d bytes", size)
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mapping file")
	}

	if logging {
		logger.Info("created mapped buffer",
			zap.String("location", loc),
			zap.Int("size", size),
		)
	}

	return &MappedBuffer{
		pos:  0,
		data: data,
		loc:  loc,
		size: size,
	}, nil
}

// Location returns the path of the mapped file.
func (m *MappedBuffer) Location() string { return m.loc }

// Pos returns the current cursor offset.
func (m *MappedBuffer) Pos() int { return m.pos }

// Len returns the mapped capacity in bytes.
func (m *MappedBuffer) Len() int { return len(m.data) }

// Remaining returns the number of bytes between the cursor and the end of
// the mapping.
func (m *MappedBuffer) Remaining() int { return len(m.data) - m.pos }

// SetPos moves the cursor to the given offset, 0 through Len() inclusive.
func (m *MappedBuffer) SetPos(position int) error {
	if position < 0 || position > len(m.data) {
		return errors.Wrapf(ErrOutOfRange, "position %d, mapping %d bytes", position, len(m.data))
	}

	m.pos = position
	return nil
}

// Rewind moves the cursor back to 0.
func (m *MappedBuffer) Rewind() *MappedBuffer {
	m.pos = 0
	return m
}

// Bytes returns the mapped region from offset 0. The slice is the mapping
// itself, not a copy.
func (m *MappedBuffer) Bytes() []byte { return m.data }

// Hex returns the mapped region as a lowercase hex string.
func (m *MappedBuffer) Hex() string { return hex.EncodeToString(m.data) }

// Flush synchronously commits the mapped region to the backing file.
func (m *MappedBuffer) Flush() error {
	if err := m.data.Flush(); err != nil {
		return errors.Wrapf(err, "flushing mapped buffer at %v", m.loc)
	}

	if logging {
		logger.Info("flushed mapped buffer", zap.String("location", m.loc))
	}
	return nil
}

// Unmap deletes the memory mapping, optionally removing the backing file.
// The buffer must not be used afterwards.
func (m *MappedBuffer) Unmap(removefile bool) error {
	if err := m.data.Unmap(); err != nil {
		return errors.Wrapf(err, "unmapping buffer at %v", m.loc)
	}

	if removefile {
		if err := os.Remove(m.loc); err != nil {
			return errors.Wrap(err, "removing mapped file")
		}
	}

	if logging {
		logger.Info("unmapped buffer",
			zap.String("location", m.loc),
			zap.Bool("removed", removefile),
		)
	}
	return nil
}

// ensure fails if n bytes at the cursor would cross the mapped capacity.
func (m *MappedBuffer) ensure(n int) error {
	if m.pos+n > len(m.data) {
		return errors.Wrapf(ErrBufferOverflow, "%d bytes at offset %d, mapping %d bytes", n, m.pos, len(m.data))
	}
	return nil
}

// Write copies raw bytes at the cursor. It implements io.Writer and fails
// without writing anything if the data does not fit.
func (m *MappedBuffer) Write(data []byte) (int, error) {
	if err := m.ensure(len(data)); err != nil {
		return 0, err
	}

	copy(m.data[m.pos:], data)
	m.pos += len(data)
	return len(data), nil
}

// WriteInt32 writes an int32 as 4 little-endian bytes.
func (m *MappedBuffer) WriteInt32(val int32) error {
	return m.WriteUint32(uint32(val))
}

// WriteUint32 writes a uint32 as 4 little-endian bytes.
func (m *MappedBuffer) WriteUint32(val uint32) error {
	if err := m.ensure(4); err != nil {
		return err
	}

	byteOrder.PutUint32(m.data[m.pos:], val)
	m.pos += 4
	return nil
}

// WriteFloat32 writes a float32 as its IEEE-754 bits, little-endian.
func (m *MappedBuffer) WriteFloat32(val float32) error {
	return m.WriteUint32(math.Float32bits(val))
}

// WriteByte writes a single byte.
func (m *MappedBuffer) WriteByte(val byte) error {
	if err := m.ensure(1); err != nil {
		return err
	}

	m.data[m.pos] = val
	m.pos++
	return nil
}

// WriteBool writes a bool as one byte, 0x01 for true and 0x00 for false.
func (m *MappedBuffer) WriteBool(val bool) error {
	if val {
		return m.WriteByte(1)
	}
	return m.WriteByte(0)
}

// WriteString writes an int32 length prefix followed by the raw UTF-8 bytes.
// The prefix and body either both fit or nothing is written.
func (m *MappedBuffer) WriteString(val string) error {
	if err := m.ensure(4 + len(val)); err != nil {
		return err
	}

	byteOrder.PutUint32(m.data[m.pos:], uint32(int32(len(val))))
	copy(m.data[m.pos+4:], val)
	m.pos += 4 + len(val)
	return nil
}

// WriteVector writes a Vector as three float32 values in X, Y, Z order.
func (m *MappedBuffer) WriteVector(val Vector) error {
	return m.writeFloat3(val.X, val.Y, val.Z)
}

// WriteRotator writes a Rotator as three float32 values in X, Y, Z order.
func (m *MappedBuffer) WriteRotator(val Rotator) error {
	return m.writeFloat3(val.X, val.Y, val.Z)
}

func (m *MappedBuffer) writeFloat3(x, y, z float32) error {
	if err := m.ensure(12); err != nil {
		return err
	}

	byteOrder.PutUint32(m.data[m.pos:], math.Float32bits(x))
	byteOrder.PutUint32(m.data[m.pos+4:], math.Float32bits(y))
	byteOrder.PutUint32(m.data[m.pos+8:], math.Float32bits(z))
	m.pos += 12
	return nil
}

// reads mirror the in-memory buffer: the cursor stays put on failure
func (m *MappedBuffer) under(n int) error {
	if m.pos+n > len(m.data) {
		return errors.Wrapf(ErrBufferUnderflow, "%d bytes at offset %d, mapping %d bytes", n, m.pos, len(m.data))
	}
	return nil
}

// ReadInt32 reads 4 little-endian bytes as an int32.
func (m *MappedBuffer) ReadInt32() (int32, error) {
	v, err := m.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads 4 little-endian bytes as a uint32.
func (m *MappedBuffer) ReadUint32() (uint32, error) {
	if err := m.under(4); err != nil {
		return 0, err
	}

	val := byteOrder.Uint32(m.data[m.pos:])
	m.pos += 4
	return val, nil
}

// ReadFloat32 reads 4 little-endian bytes as an IEEE-754 float32.
func (m *MappedBuffer) ReadFloat32() (float32, error) {
	v, err := m.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadByte reads a single byte.
func (m *MappedBuffer) ReadByte() (byte, error) {
	if err := m.under(1); err != nil {
		return 0, err
	}

	val := m.data[m.pos]
	m.pos++
	return val, nil
}

// ReadBool reads one byte and maps any nonzero value to true.
func (m *MappedBuffer) ReadBool() (bool, error) {
	v, err := m.ReadByte()
	return v != 0, err
}

// ReadString reads an int32 length prefix and that many bytes of UTF-8,
// with the same failure contract as ByteBuffer.ReadString.
func (m *MappedBuffer) ReadString() (string, error) {
	start := m.pos

	length, err := m.ReadInt32()
	if err != nil {
		return "", errors.Wrap(err, "string length prefix")
	}

	if length < 0 || int(length) > len(m.data)-m.pos {
		m.pos = start
		return "", errors.Wrapf(ErrBufferUnderflow, "string body of %d bytes at offset %d, mapping %d bytes", length, start, len(m.data))
	}

	body := m.data[m.pos : m.pos+int(length)]
	if !utf8.Valid(body) {
		m.pos = start
		return "", errors.Wrapf(ErrInvalidString, "string body at offset %d", start)
	}

	m.pos += int(length)
	return string(body), nil
}

// ReadVector reads three float32 values into a Vector.
func (m *MappedBuffer) ReadVector() (Vector, error) {
	x, y, z, err := m.readFloat3()
	return Vector{x, y, z}, err
}

// ReadRotator reads three float32 values into a Rotator.
func (m *MappedBuffer) ReadRotator() (Rotator, error) {
	x, y, z, err := m.readFloat3()
	return Rotator{x, y, z}, err
}

func (m *MappedBuffer) readFloat3() (x, y, z float32, err error) {
	if err = m.under(12); err != nil {
		return
	}

	x = math.Float32frombits(byteOrder.Uint32(m.data[m.pos:]))
	y = math.Float32frombits(byteOrder.Uint32(m.data[m.pos+4:]))
	z = math.Float32frombits(byteOrder.Uint32(m.data[m.pos+8:]))
	m.pos += 12
	return
}
