// Package codec implements the bit-exact on-disk entry encoding: fixed-width
// little-endian scalars, one-byte bool/u8, two-byte UTF-16 code units for
// char, and varint-length-prefixed UTF-8 strings. No entry framing header
// is written; each serializer is length-self-describing so decoding
// consumes exactly the bytes encoding wrote.
package codec

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	ignerrors "github.com/emberkv/ignite/pkg/errors"
)

// Codec encodes and decodes values of type T to/from a byte stream.
type Codec[T any] interface {
	Encode(w io.Writer, v T) error
	Decode(r io.Reader) (T, error)
}

// Char represents a single UTF-16 code unit, encoded as two little-endian
// bytes. It does not represent a full Unicode code point above the Basic
// Multilingual Plane; use String for that.
type Char uint16

// Int32Codec encodes int32 as 4 little-endian bytes.
type Int32Codec struct{}

func (Int32Codec) Encode(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	if _, err := w.Write(buf[:]); err != nil {
		return ignerrors.NewEncodeError(err, "int32")
	}
	return nil
}

func (Int32Codec) Decode(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// Int64Codec encodes int64 as 8 little-endian bytes.
type Int64Codec struct{}

func (Int64Codec) Encode(w io.Writer, v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	if _, err := w.Write(buf[:]); err != nil {
		return ignerrors.NewEncodeError(err, "int64")
	}
	return nil
}

func (Int64Codec) Decode(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// Float32Codec encodes float32 as 4 little-endian bytes (IEEE-754 bits).
type Float32Codec struct{}

func (Float32Codec) Encode(w io.Writer, v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	if _, err := w.Write(buf[:]); err != nil {
		return ignerrors.NewEncodeError(err, "float32")
	}
	return nil
}

func (Float32Codec) Decode(r io.Reader) (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// Float64Codec encodes float64 as 8 little-endian bytes (IEEE-754 bits).
type Float64Codec struct{}

func (Float64Codec) Encode(w io.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	if _, err := w.Write(buf[:]); err != nil {
		return ignerrors.NewEncodeError(err, "float64")
	}
	return nil
}

func (Float64Codec) Decode(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// BoolCodec encodes bool as a single byte, 0 or 1.
type BoolCodec struct{}

func (BoolCodec) Encode(w io.Writer, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	if _, err := w.Write([]byte{b}); err != nil {
		return ignerrors.NewEncodeError(err, "bool")
	}
	return nil
}

func (BoolCodec) Decode(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

// ByteCodec encodes u8 as a single byte.
type ByteCodec struct{}

func (ByteCodec) Encode(w io.Writer, v byte) error {
	if _, err := w.Write([]byte{v}); err != nil {
		return ignerrors.NewEncodeError(err, "u8")
	}
	return nil
}

func (ByteCodec) Decode(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// CharCodec encodes a Char (UTF-16 code unit) as 2 little-endian bytes.
type CharCodec struct{}

func (CharCodec) Encode(w io.Writer, v Char) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	if _, err := w.Write(buf[:]); err != nil {
		return ignerrors.NewEncodeError(err, "char")
	}
	return nil
}

func (CharCodec) Decode(r io.Reader) (Char, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return Char(binary.LittleEndian.Uint16(buf[:])), nil
}

// StringCodec encodes a string as a varint byte-length prefix followed by
// its UTF-8 bytes.
type StringCodec struct{}

func (StringCodec) Encode(w io.Writer, v string) error {
	if err := WriteVarint(w, uint64(len(v))); err != nil {
		return ignerrors.NewEncodeError(err, "string").WithDetail("stage", "length-prefix")
	}
	if _, err := io.WriteString(w, v); err != nil {
		return ignerrors.NewEncodeError(err, "string").WithDetail("stage", "payload")
	}
	return nil
}

func (StringCodec) Decode(r io.Reader) (string, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ignerrors.NewDecodeError(nil, "string").WithDetail("reason", "invalid utf-8")
	}
	return string(buf), nil
}
