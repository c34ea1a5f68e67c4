// Package wiredump decodes wirebuf payloads for inspection.
//
// The wire format is schemaless, so the caller describes the expected field
// sequence as a layout string like "int32,string,vector" and gets back every
// decoded field with its offset. The decoding lives here and the cli lives in
// cmd/wiredump, so other tools can embed the reader without the flag surface.
package wiredump

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/simworld/wirebuf"
)

// FieldType identifies one decodable field kind in a layout.
type FieldType int

// Field kinds, matching the typed operations on wirebuf.ByteBuffer.
const (
	Int32Type FieldType = iota
	Uint32Type
	Float32Type
	ByteType
	BoolType
	StringType
	VectorType
	RotatorType
)

func (t FieldType) String() string {
	switch t {
	case Int32Type:
		return "int32"
	case Uint32Type:
		return "uint32"
	case Float32Type:
		return "float32"
	case ByteType:
		return "byte"
	case BoolType:
		return "bool"
	case StringType:
		return "string"
	case VectorType:
		return "vector"
	case RotatorType:
		return "rotator"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseLayout turns a comma or space separated list of field kind names into
// a layout. Each kind accepts a short and a long spelling, i32/int32 and so
// on.
func ParseLayout(layout string) ([]FieldType, error) {
	tokens := strings.FieldsFunc(layout, func(r rune) bool {
		return r == ',' || r == ' '
	})

	if len(tokens) == 0 {
		return nil, errors.New("empty layout")
	}

	types := make([]FieldType, 0, len(tokens))
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "i32", "int32":
			types = append(types, Int32Type)
		case "u32", "uint32":
			types = append(types, Uint32Type)
		case "f32", "float", "float32":
			types = append(types, Float32Type)
		case "u8", "byte":
			types = append(types, ByteType)
		case "b", "bool":
			types = append(types, BoolType)
		case "str", "string":
			types = append(types, StringType)
		case "vec", "vector":
			types = append(types, VectorType)
		case "rot", "rotator":
			types = append(types, RotatorType)
		default:
			return nil, errors.Errorf("unknown field kind %q", tok)
		}
	}

	return types, nil
}

// Field is one decoded value and the offset it was decoded from.
type Field struct {
	Type   FieldType
	Offset int
	Value  interface{}
}

// Report is the result of decoding a payload against a layout.
type Report struct {
	Fields   []Field
	Size     int // payload size in bytes
	Trailing int // bytes left undecoded after the last field
}

// Dump decodes data against the given layout. Decoding stops at the first
// failure, which is returned wrapped with the index and kind of the field
// that could not be read.
func Dump(data []byte, layout []FieldType) (*Report, error) {
	b := wirebuf.NewFromBytes(data)
	report := &Report{Size: b.Len()}

	for i, t := range layout {
		offset := b.Pos()

		var (
			val interface{}
			err error
		)
		switch t {
		case Int32Type:
			val, err = b.ReadInt32()
		case Uint32Type:
			val, err = b.ReadUint32()
		case Float32Type:
			val, err = b.ReadFloat32()
		case ByteType:
			val, err = b.ReadByte()
		case BoolType:
			val, err = b.ReadBool()
		case StringType:
			val, err = b.ReadString()
		case VectorType:
			val, err = b.ReadVector()
		case RotatorType:
			val, err = b.ReadRotator()
		default:
			err = errors.Errorf("unknown field kind %v", t)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %d (%v)", i, t)
		}

		report.Fields = append(report.Fields, Field{
			Type:   t,
			Offset: offset,
			Value:  val,
		})
	}

	report.Trailing = b.Remaining()
	return report, nil
}

func formatValue(f Field) string {
	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case wirebuf.Vector:
		return fmt.Sprintf("(%v, %v, %v)", v.X, v.Y, v.Z)
	case wirebuf.Rotator:
		return fmt.Sprintf("(%v, %v, %v)", v.X, v.Y, v.Z)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Write renders the report as an offset-annotated listing followed by the
// payload summary.
func (r *Report) Write(w io.Writer) error {
	for _, f := range r.Fields {
		if _, err := fmt.Fprintf(w, "[%04d] %-8v %v\n", f.Offset, f.Type, formatValue(f)); err != nil {
			return err
		}
	}

	if r.Trailing > 0 {
		if _, err := fmt.Fprintf(w, "%d trailing byte(s) undecoded\n", r.Trailing); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "payload: %d bytes\n", r.Size)
	return err
}
