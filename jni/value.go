package jni

import "math"

// Ref is a foreign object handle. The zero Ref is null.
type Ref uintptr

// MethodID identifies a resolved method.
type MethodID uintptr

// FieldID identifies a resolved field.
type FieldID uintptr

// Type is a JVM descriptor type tag.
type Type byte

const (
	TypeVoid    Type = 'V'
	TypeBoolean Type = 'Z'
	TypeByte    Type = 'B'
	TypeChar    Type = 'C'
	TypeShort   Type = 'S'
	TypeInt     Type = 'I'
	TypeLong    Type = 'J'
	TypeFloat   Type = 'F'
	TypeDouble  Type = 'D'
	TypeObject  Type = 'L'
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeBoolean:
		return "boolean"
	case TypeByte:
		return "byte"
	case TypeChar:
		return "char"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeObject:
		return "object"
	}
	return "invalid"
}

// Value is a tagged argument or result of a foreign call.
// Primitive payloads are kept as raw bits.
type Value struct {
	bits uint64
	ref  Ref
	typ  Type
}

func Void() Value { return Value{typ: TypeVoid} }
func Int(v int32) Value { return Value{typ: TypeInt, bits: uint64(uint32(v))} }
func Long(v int64) Value { return Value{typ: TypeLong, bits: uint64(v)} }
func Char(v uint16) Value { return Value{typ: TypeChar, bits: uint64(v)} }
func Short(v int16) Value { return Value{typ: TypeShort, bits: uint64(uint16(v))} }
func Byte(v int8) Value { return Value{typ: TypeByte, bits: uint64(uint8(v))} }
func Float(v float32) Value { return Value{typ: TypeFloat, bits: uint64(math.Float32bits(v))} }
func Double(v float64) Value {
	return Value{typ: TypeDouble, bits: math.Float64bits(v)}
}
func Object(r Ref) Value { return Value{typ: TypeObject, ref: r} }

func Bool(v bool) Value {
	if v {
		return Value{typ: TypeBoolean, bits: 1}
	}
	return Value{typ: TypeBoolean}
}

// Type returns the tag of v.
func (v Value) Type() Type { return v.typ }

// Bits returns the raw primitive payload.
func (v Value) Bits() uint64 { return v.bits }

func (v Value) Bool() bool { return v.bits&0xff != 0 }
func (v Value) Int() int32 { return int32(uint32(v.bits)) }
func (v Value) Long() int64 { return int64(v.bits) }
func (v Value) Char() uint16 { return uint16(v.bits) }
func (v Value) Short() int16 { return int16(uint16(v.bits)) }
func (v Value) Byte() int8 { return int8(uint8(v.bits)) }
func (v Value) Float() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Double() float64 { return math.Float64frombits(v.bits) }
func (v Value) Ref() Ref { return v.ref }
func (v Value) IsNull() bool { return v.typ == TypeObject && v.ref == 0 }

// FromBits builds a primitive Value from raw bits.
func FromBits(t Type, bits uint64) Value {
	return Value{typ: t, bits: bits}
}
