// Package leb128 decodes the LEB128 variable-length integer encodings the
// WebAssembly binary format uses throughout (section/entry counts, indices,
// signed constants).
package leb128

import (
	"io"

	"github.com/pkg/errors"
)

// DecodeUint32 reads an unsigned LEB128 value, erroring if it would not fit
// in 32 bits or the stream ends early.
func DecodeUint32(r io.ByteReader) (uint32, error) {
	v, err := DecodeUint64(r)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, errors.New("leb128: varuint32 overflow")
	}
	return uint32(v), nil
}

// DecodeUint64 reads an unsigned LEB128 value of up to 64 significant bits.
func DecodeUint64(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "leb128: unexpected end of varuint")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("leb128: varuint64 too long")
		}
	}
}

// DecodeInt32 reads a signed LEB128 value, sign-extended from its encoded
// width, erroring if it would not fit in 32 bits.
func DecodeInt32(r io.ByteReader) (int32, error) {
	v, err := DecodeInt64(r)
	if err != nil {
		return 0, err
	}
	if v < -(1<<31) || v >= 1<<31 {
		return 0, errors.New("leb128: varint32 overflow")
	}
	return int32(v), nil
}

// DecodeInt64 reads a signed LEB128 value of up to 64 significant bits.
func DecodeInt64(r io.ByteReader) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "leb128: unexpected end of varint")
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 64 {
			return 0, errors.New("leb128: varint64 too long")
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}
