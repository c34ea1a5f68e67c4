// Package wirebuf implements a position-tracked byte buffer for encoding and
// decoding binary wire payloads.
//
// bytes.Buffer was the obvious starting point but it only ever appends and
// drains, there is no way to park the cursor somewhere and re-read what was
// just written. Carrying an explicit offset through every encode call was the
// other option, and calls like
//
//	pos = writeInt32(buffer, pos, count)
//
// got unreadable fast. So this package keeps a single cursor inside the
// buffer itself: writes grow the storage as needed and advance the cursor,
// reads advance the same cursor and fail cleanly when the payload runs out.
//
// All multi-byte values are little-endian. Strings are an int32 byte-length
// prefix followed by raw UTF-8. Vectors and rotators are three float32 values
// in X, Y, Z order; the two share a wire layout but stay separate types
// because a position and an orientation are not interchangeable just because
// they serialize the same way.
//
// A ByteBuffer is single-owner and not safe for concurrent use.
package wirebuf

// Buffer is the decode surface shared by ByteBuffer and MappedBuffer, for
// callers that only consume a payload and do not care where it lives.
type Buffer interface {
	Bytes() []byte
	Hex() string
	Len() int
	Pos() int
	SetPos(int) error
	Remaining() int
	ReadInt32() (int32, error)
	ReadUint32() (uint32, error)
	ReadFloat32() (float32, error)
	ReadByte() (byte, error)
	ReadBool() (bool, error)
	ReadString() (string, error)
	ReadVector() (Vector, error)
	ReadRotator() (Rotator, error)
}
