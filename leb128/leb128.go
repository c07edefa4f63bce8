// The iamf-tools leb128 package codecs ULEB128 and SLEB128 variable-length
// integers the way IAMF requires: every length-prefixed field in an OBU,
// including obu_size itself, is emitted through the same Generator for the
// duration of a write.
//
// Refer to @doc github.com/AOMediaCodec/iamf, @section OBU syntax
package leb128

import (
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// MaxSize is the largest number of bytes a ULEB128 or SLEB128 may occupy in
// an IAMF bitstream.
const MaxSize = 8

// Mode selects how a Generator widens its output.
type Mode int

const (
	// ModeMinimum emits the shortest valid encoding.
	ModeMinimum Mode = iota
	// ModeFixedSize always emits exactly FixedSize bytes, padding with
	// continuation bits.
	ModeFixedSize
)

// Generator threads a leb128 encoding policy through a single write buffer.
// It deliberately carries no global/singleton state; callers construct one
// per write buffer.
type Generator struct {
	mode      Mode
	fixedSize int
}

// NewMinimumGenerator returns a Generator that emits the shortest encoding.
func NewMinimumGenerator() Generator {
	return Generator{mode: ModeMinimum}
}

// NewFixedSizeGenerator returns a Generator that always emits exactly size
// bytes, 1 <= size <= MaxSize.
func NewFixedSizeGenerator(size int) (Generator, error) {
	if size < 1 || size > MaxSize {
		return Generator{}, ierrors.InvalidArgument("leb128 fixed size %d out of range [1,%d]", size, MaxSize)
	}
	return Generator{mode: ModeFixedSize, fixedSize: size}, nil
}

// EncodeUleb128 encodes v as an unsigned leb128 per the Generator's mode.
func (g Generator) EncodeUleb128(v uint64) ([]byte, error) {
	minimal := encodeUnsignedMinimal(v)
	switch g.mode {
	case ModeMinimum:
		return minimal, nil
	case ModeFixedSize:
		if len(minimal) > g.fixedSize {
			return nil, ierrors.InvalidArgument("value %d needs %d bytes but fixed leb128 size is %d", v, len(minimal), g.fixedSize)
		}
		return padContinuation(minimal, g.fixedSize), nil
	default:
		return nil, ierrors.InvalidArgument("unknown leb128 generator mode %d", g.mode)
	}
}

// EncodeSleb128 encodes v as a signed leb128 per the Generator's mode.
func (g Generator) EncodeSleb128(v int64) ([]byte, error) {
	minimal := encodeSignedMinimal(v)
	switch g.mode {
	case ModeMinimum:
		return minimal, nil
	case ModeFixedSize:
		if len(minimal) > g.fixedSize {
			return nil, ierrors.InvalidArgument("value %d needs %d bytes but fixed leb128 size is %d", v, len(minimal), g.fixedSize)
		}
		return padSignedContinuation(minimal, g.fixedSize, v < 0), nil
	default:
		return nil, ierrors.InvalidArgument("unknown leb128 generator mode %d", g.mode)
	}
}

// DecodeUleb128 reads an unsigned leb128 value from r, returning the decoded
// value and the number of bytes consumed.
func DecodeUleb128(r io.ByteReader) (uint64, int, error) {
	var result uint64
	for i := 0; i < MaxSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, i, err
		}
		result |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, MaxSize, ierrors.InvalidArgument("uleb128 exceeds %d bytes", MaxSize)
}

// DecodeSleb128 reads a signed leb128 value from r, returning the decoded
// value and the number of bytes consumed.
func DecodeSleb128(r io.ByteReader) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	n := 0
	for n < MaxSize {
		b, err = r.ReadByte()
		if err != nil {
			return 0, n, err
		}
		n++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if n >= MaxSize && b&0x80 != 0 {
		return 0, n, ierrors.InvalidArgument("sleb128 exceeds %d bytes", MaxSize)
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, n, nil
}

func encodeUnsignedMinimal(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func encodeSignedMinimal(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// padContinuation extends a minimal unsigned encoding to exactly size bytes
// by setting the continuation bit on every byte but the last.
func padContinuation(minimal []byte, size int) []byte {
	if len(minimal) == size {
		return minimal
	}
	out := make([]byte, size)
	copy(out, minimal)
	for i := 0; i < len(minimal)-1; i++ {
		out[i] |= 0x80
	}
	for i := len(minimal) - 1; i < size-1; i++ {
		out[i] |= 0x80
	}
	return out
}

// padSignedContinuation extends a minimal signed encoding to exactly size
// bytes, sign-extending the padding bytes so the value is unchanged.
func padSignedContinuation(minimal []byte, size int, negative bool) []byte {
	if len(minimal) == size {
		return minimal
	}
	out := make([]byte, size)
	copy(out, minimal)
	// Every byte that came from minimal is no longer the last byte, so it
	// must carry the continuation bit (including the former last byte).
	for i := range minimal {
		out[i] |= 0x80
	}
	fill := byte(0x00)
	if negative {
		fill = 0x7f
	}
	for i := len(minimal); i < size; i++ {
		if i == size-1 {
			out[i] = fill
		} else {
			out[i] = fill | 0x80
		}
	}
	return out
}
