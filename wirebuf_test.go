package wirebuf

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteInt32(t *testing.T) {
	cases := []int32{0, 10, 100, 200, 1000, 10000, 10000000, 1000000000,
		2147483647, -1, -1000, -2147483648}

	for _, val := range cases {
		b := New()
		b.WriteInt32(val)

		if b.Pos() != 4 {
			t.Error("Not Writing 4 bytes for int32")
			return
		}
		if b.Len() != 4 {
			t.Error("Storage not growing to exactly 4 bytes for int32")
			return
		}

		e := []byte{
			byte(val & 0xFF),
			byte((val >> 8) & 0xFF),
			byte((val >> 16) & 0xFF),
			byte(val >> 24),
		}

		for i := 0; i < 4; i++ {
			if b.buffer[i] != e[i] {
				t.Errorf("pos: %v, expected: %v, got %v", i, e[i], b.buffer[i])
			}
		}
	}
}

func TestWriteUint32(t *testing.T) {
	cases := []uint32{0, 10, 1000, 98765, 2147483648, 4294967295}

	for _, val := range cases {
		b := New()
		b.WriteUint32(val)

		if b.Pos() != 4 {
			t.Error("Not Writing 4 bytes for uint32")
			return
		}

		e := []byte{
			byte(val & 0xFF),
			byte((val >> 8) & 0xFF),
			byte((val >> 16) & 0xFF),
			byte(val >> 24),
		}

		for i := 0; i < 4; i++ {
			if b.buffer[i] != e[i] {
				t.Errorf("pos: %v, expected: %v, got %v", i, e[i], b.buffer[i])
			}
		}
	}
}

func TestWriteFloat32(t *testing.T) {
	cases := []float32{0, 1.0, -1.0, 3.14159, float32(math.Inf(1)), float32(math.Inf(-1))}

	for _, val := range cases {
		b := New()
		b.WriteFloat32(val)

		if b.Pos() != 4 {
			t.Error("Not Writing 4 bytes for float32")
			return
		}

		bits := math.Float32bits(val)
		e := []byte{
			byte(bits & 0xFF),
			byte((bits >> 8) & 0xFF),
			byte((bits >> 16) & 0xFF),
			byte(bits >> 24),
		}

		for i := 0; i < 4; i++ {
			if b.buffer[i] != e[i] {
				t.Errorf("pos: %v, expected: %v, got %v", i, e[i], b.buffer[i])
			}
		}
	}
}

func TestWriteByteAndBool(t *testing.T) {
	b := New()
	b.WriteByte(0xAB).WriteBool(true).WriteBool(false)

	if b.Pos() != 3 || b.Len() != 3 {
		t.Errorf("expected 3 bytes written, pos %v len %v", b.Pos(), b.Len())
		return
	}

	e := []byte{0xAB, 0x01, 0x00}
	for i := 0; i < 3; i++ {
		if b.buffer[i] != e[i] {
			t.Errorf("pos: %v, expected: %v, got %v", i, e[i], b.buffer[i])
		}
	}
}

func TestWriteString(t *testing.T) {
	cases := []string{"", "x", "Hello, World!", "héllo wörld", "日本語"}

	for _, val := range cases {
		b := New()
		b.WriteString(val)

		if b.Pos() != 4+len(val) {
			t.Errorf("Expected to write %v bytes, writing %v bytes", 4+len(val), b.Pos())
			return
		}

		n := int32(len(val))
		e := []byte{
			byte(n & 0xFF),
			byte((n >> 8) & 0xFF),
			byte((n >> 16) & 0xFF),
			byte(n >> 24),
		}
		e = append(e, []byte(val)...)

		for i := 0; i < len(e); i++ {
			if b.buffer[i] != e[i] {
				t.Errorf("pos: %v, expected: %v, got %v", i, e[i], b.buffer[i])
			}
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	b := New()
	b.WriteInt32(-123456).
		WriteUint32(98765).
		WriteFloat32(3.25).
		WriteByte(42).
		WriteBool(true).
		WriteBool(false)

	b.Rewind()

	if v, err := b.ReadInt32(); err != nil || v != -123456 {
		t.Errorf("int32 round trip: got %v, %v", v, err)
	}
	if v, err := b.ReadUint32(); err != nil || v != 98765 {
		t.Errorf("uint32 round trip: got %v, %v", v, err)
	}
	if v, err := b.ReadFloat32(); err != nil || v != 3.25 {
		t.Errorf("float32 round trip: got %v, %v", v, err)
	}
	if v, err := b.ReadByte(); err != nil || v != 42 {
		t.Errorf("byte round trip: got %v, %v", v, err)
	}
	if v, err := b.ReadBool(); err != nil || v != true {
		t.Errorf("bool round trip: got %v, %v", v, err)
	}
	if v, err := b.ReadBool(); err != nil || v != false {
		t.Errorf("bool round trip: got %v, %v", v, err)
	}

	if b.Remaining() != 0 {
		t.Errorf("expected fully drained payload, %v bytes remain", b.Remaining())
	}
}

func TestFloatRoundTripBitExact(t *testing.T) {
	cases := []uint32{
		0x00000000, // +0
		0x80000000, // -0
		0x7FC00001, // NaN with payload
		0xFF800000, // -Inf
		0x00000001, // smallest denormal
	}

	for _, bits := range cases {
		b := New()
		b.WriteFloat32(math.Float32frombits(bits))
		b.Rewind()

		v, err := b.ReadFloat32()
		if err != nil {
			t.Error(err)
			return
		}
		if math.Float32bits(v) != bits {
			t.Errorf("expected bits %08x, got %08x", bits, math.Float32bits(v))
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "Hello, World!", "héllo wörld", "日本語のテキスト"}

	for _, val := range cases {
		b := New()
		b.WriteString(val)
		b.Rewind()

		v, err := b.ReadString()
		if err != nil {
			t.Error(err)
			return
		}
		if v != val {
			t.Errorf("expected %q, got %q", val, v)
		}
		if b.Pos() != 4+len(val) {
			t.Errorf("cursor at %v after reading %q", b.Pos(), val)
		}
	}
}

func TestChainedWritesAreContiguous(t *testing.T) {
	b := New()
	b.WriteInt32(7).WriteBool(true).WriteString("hi").WriteFloat32(1.5)

	expected := 4 + 1 + (4 + 2) + 4
	if b.Len() != expected {
		t.Errorf("expected %v contiguous bytes, got %v", expected, b.Len())
		return
	}
	if b.Pos() != expected {
		t.Errorf("cursor at %v, expected %v", b.Pos(), expected)
		return
	}

	b.Rewind()
	if v, _ := b.ReadInt32(); v != 7 {
		t.Error("int32 not at offset 0")
	}
	if v, _ := b.ReadBool(); v != true {
		t.Error("bool not directly after int32")
	}
	if v, _ := b.ReadString(); v != "hi" {
		t.Error("string not directly after bool")
	}
	if v, _ := b.ReadFloat32(); v != 1.5 {
		t.Error("float32 not directly after string")
	}
}

func TestHex(t *testing.T) {
	b := New()
	b.WriteInt32(12345)

	if h := b.Hex(); h != "39300000" {
		t.Errorf("expected \"39300000\", got %q", h)
	}

	if h := New().Hex(); h != "" {
		t.Errorf("expected empty hex for empty buffer, got %q", h)
	}
}

func TestUnderflowLeavesCursor(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		read func(b *ByteBuffer) error
	}{
		{"int32", []byte{1, 2, 3}, func(b *ByteBuffer) error { _, err := b.ReadInt32(); return err }},
		{"uint32", []byte{1, 2, 3}, func(b *ByteBuffer) error { _, err := b.ReadUint32(); return err }},
		{"float32", []byte{1, 2, 3}, func(b *ByteBuffer) error { _, err := b.ReadFloat32(); return err }},
		{"byte", nil, func(b *ByteBuffer) error { _, err := b.ReadByte(); return err }},
		{"bool", nil, func(b *ByteBuffer) error { _, err := b.ReadBool(); return err }},
		{"string", []byte{1, 2}, func(b *ByteBuffer) error { _, err := b.ReadString(); return err }},
		{"vector", []byte{1, 2, 3, 4, 5, 6, 7, 8}, func(b *ByteBuffer) error { _, err := b.ReadVector(); return err }},
		{"rotator", []byte{1, 2, 3, 4}, func(b *ByteBuffer) error { _, err := b.ReadRotator(); return err }},
	}

	for _, c := range cases {
		b := NewFromBytes(c.data)

		err := c.read(b)
		if err == nil {
			t.Errorf("%v: expected underflow on %v byte payload", c.name, len(c.data))
			continue
		}
		if errors.Cause(err) != ErrBufferUnderflow {
			t.Errorf("%v: expected ErrBufferUnderflow, got %v", c.name, err)
		}
		if b.Pos() != 0 {
			t.Errorf("%v: cursor moved to %v on failed read", c.name, b.Pos())
		}
	}
}

func TestReadStringTruncatedBody(t *testing.T) {
	// length prefix says 10, only 3 bytes follow
	b := New()
	b.WriteInt32(10)
	b.Write([]byte("abc"))
	b.Rewind()

	_, err := b.ReadString()
	if errors.Cause(err) != ErrBufferUnderflow {
		t.Errorf("expected ErrBufferUnderflow, got %v", err)
	}
	if b.Pos() != 0 {
		t.Errorf("cursor moved to %v, should be back before the length prefix", b.Pos())
	}
}

func TestReadStringNegativeLength(t *testing.T) {
	b := New()
	b.WriteInt32(-1)
	b.Rewind()

	_, err := b.ReadString()
	if errors.Cause(err) != ErrBufferUnderflow {
		t.Errorf("expected ErrBufferUnderflow for negative length, got %v", err)
	}
	if b.Pos() != 0 {
		t.Errorf("cursor moved to %v on negative length", b.Pos())
	}
}

func TestReadStringInvalidUTF8(t *testing.T) {
	b := New()
	b.WriteInt32(2)
	b.Write([]byte{0xFF, 0xFE})
	b.Rewind()

	_, err := b.ReadString()
	if errors.Cause(err) != ErrInvalidString {
		t.Errorf("expected ErrInvalidString, got %v", err)
	}
	if b.Pos() != 0 {
		t.Errorf("cursor moved to %v on invalid UTF-8", b.Pos())
	}

	// the buffer stays usable, the raw bytes can still be inspected
	if v, err := b.ReadInt32(); err != nil || v != 2 {
		t.Errorf("buffer unusable after failed string read: %v, %v", v, err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	b := New()
	b.WriteVector(Vector{1.0, 2.0, 3.0})

	if b.Len() != 12 {
		t.Errorf("expected 12 bytes for a vector, got %v", b.Len())
		return
	}

	b.Rewind()
	v, err := b.ReadVector()
	if err != nil {
		t.Error(err)
		return
	}
	if v != (Vector{1.0, 2.0, 3.0}) {
		t.Errorf("expected (1, 2, 3), got %v", v)
	}
}

func TestRotatorRoundTrip(t *testing.T) {
	b := New()
	b.WriteRotator(Rotator{45.0, 90.0, 180.0})
	b.Rewind()

	r, err := b.ReadRotator()
	if err != nil {
		t.Error(err)
		return
	}
	if r != (Rotator{45.0, 90.0, 180.0}) {
		t.Errorf("expected (45, 90, 180), got %v", r)
	}
}

func TestVectorRotatorShareWireLayout(t *testing.T) {
	v := New().WriteVector(Vector{1.5, -2.5, 3.5})
	r := New().WriteRotator(Rotator{1.5, -2.5, 3.5})

	if v.Hex() != r.Hex() {
		t.Errorf("vector %v and rotator %v encodings differ", v.Hex(), r.Hex())
	}
}

func TestSetPos(t *testing.T) {
	b := New()
	b.WriteInt32(1).WriteInt32(2)

	if err := b.SetPos(9); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("expected ErrOutOfRange past the payload, got %v", err)
	}
	if err := b.SetPos(-1); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("expected ErrOutOfRange for a negative position, got %v", err)
	}

	// parking at end-of-payload is legal
	if err := b.SetPos(8); err != nil {
		t.Error(err)
	}
	if b.Remaining() != 0 {
		t.Errorf("expected nothing remaining at end-of-payload, got %v", b.Remaining())
	}

	if err := b.SetPos(4); err != nil {
		t.Error(err)
	}
	if v, err := b.ReadInt32(); err != nil || v != 2 {
		t.Errorf("expected second int32 after SetPos(4), got %v, %v", v, err)
	}
}

func TestOverwriteKeepsLength(t *testing.T) {
	b := New()
	b.WriteInt32(1).WriteInt32(2).WriteInt32(3)

	b.MustSetPos(4)
	b.WriteInt32(99)

	if b.Len() != 12 {
		t.Errorf("overwrite changed payload length to %v", b.Len())
	}

	b.Rewind()
	vals := make([]int32, 3)
	for i := range vals {
		vals[i], _ = b.ReadInt32()
	}
	if vals[0] != 1 || vals[1] != 99 || vals[2] != 3 {
		t.Errorf("expected [1 99 3], got %v", vals)
	}
}

func TestNewFromBytes(t *testing.T) {
	b := NewFromBytes([]byte{0x39, 0x30, 0x00, 0x00})

	if b.Pos() != 0 {
		t.Error("cursor must start at 0 for a pre-loaded buffer")
	}

	v, err := b.ReadInt32()
	if err != nil {
		t.Error(err)
		return
	}
	if v != 12345 {
		t.Errorf("expected 12345, got %v", v)
	}
}

func TestReadBytes(t *testing.T) {
	b := NewFromBytes([]byte{1, 2, 3, 4, 5})

	v, err := b.ReadBytes(3)
	if err != nil {
		t.Error(err)
		return
	}
	if len(v) != 3 || v[0] != 1 || v[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", v)
	}

	// the returned slice is a copy, not a window into the payload
	v[0] = 0xFF
	if b.Bytes()[0] != 1 {
		t.Error("ReadBytes leaked the backing storage")
	}

	if _, err = b.ReadBytes(3); errors.Cause(err) != ErrBufferUnderflow {
		t.Errorf("expected ErrBufferUnderflow, got %v", err)
	}
	if b.Pos() != 3 {
		t.Errorf("cursor moved to %v on failed ReadBytes", b.Pos())
	}
}

func TestByteBufferIsABuffer(t *testing.T) {
	var _ Buffer = New()
	var _ Buffer = &MappedBuffer{}
}
