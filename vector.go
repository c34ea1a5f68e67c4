package wirebuf

// Vector is a position in simulation space. Rotator is an orientation. Both
// encode as three little-endian float32 values in X, Y, Z order; they stay
// separate types because mixing a position into an orientation field is
// exactly the kind of bug the type system should catch.

// Vector is a 3-component spatial position.
type Vector struct {
	X, Y, Z float32
}

// Rotator is a 3-component orientation.
type Rotator struct {
	X, Y, Z float32
}

// float triples share one codec; the public surface stays split by type.

func (b *ByteBuffer) writeFloat3(x, y, z float32) *ByteBuffer {
	b.WriteFloat32(x)
	b.WriteFloat32(y)
	return b.WriteFloat32(z)
}

// a short triple leaves the cursor where it started, same as the scalar reads
func (b *ByteBuffer) readFloat3() (x, y, z float32, err error) {
	start := b.pos
	defer func() {
		if err != nil {
			b.pos = start
		}
	}()

	if x, err = b.ReadFloat32(); err != nil {
		return
	}
	if y, err = b.ReadFloat32(); err != nil {
		return
	}
	z, err = b.ReadFloat32()
	return
}

// WriteVector writes a Vector as three float32 values in X, Y, Z order.
func (b *ByteBuffer) WriteVector(val Vector) *ByteBuffer {
	return b.writeFloat3(val.X, val.Y, val.Z)
}

// ReadVector reads three float32 values into a Vector.
func (b *ByteBuffer) ReadVector() (Vector, error) {
	x, y, z, err := b.readFloat3()
	return Vector{x, y, z}, err
}

// WriteRotator writes a Rotator as three float32 values in X, Y, Z order.
func (b *ByteBuffer) WriteRotator(val Rotator) *ByteBuffer {
	return b.writeFloat3(val.X, val.Y, val.Z)
}

// ReadRotator reads three float32 values into a Rotator.
func (b *ByteBuffer) ReadRotator() (Rotator, error) {
	x, y, z, err := b.readFloat3()
	return Rotator{x, y, z}, err
}
