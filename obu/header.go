package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
)

// Header is the one-byte obu_header packed as
// obu_type<<3 | redundant_copy<<2 | trimming_status<<1 | extension,
// followed by a ULEB128 obu_size. Refer to spec.md §6.
type Header struct {
	Type           Type
	RedundantCopy  bool
	TrimmingStatus bool
	Extension      bool

	// NumSamplesToTrimAtEnd and NumSamplesToTrimAtStart are only written
	// when TrimmingStatus is set; they follow obu_size as two ULEB128
	// fields ahead of the payload, per the published trimming extension.
	NumSamplesToTrimAtEnd   uint32
	NumSamplesToTrimAtStart uint32
}

// validate checks the flag legality rules that apply regardless of payload:
// trimming_status is legal only on audio frame OBUs, redundant_copy is
// forbidden on temporal delimiters.
func (h Header) validate() error {
	if h.TrimmingStatus && !isAudioFrameType(h.Type) {
		return ierrors.InvalidArgument("trimming_status is only legal on audio frame OBUs, got %v", h.Type)
	}
	if h.RedundantCopy && h.Type == TypeTemporalDelimiter {
		return ierrors.InvalidArgument("redundant_copy is forbidden on temporal delimiter OBUs")
	}
	return nil
}

func isAudioFrameType(t Type) bool {
	return t == TypeAudioFrame || (t >= TypeAudioFrameID0 && t <= TypeAudioFrameID17)
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// writeTo writes the one-byte header followed by the ULEB128 obu_size.
// payloadSize must already include the two leading trim ULEB128 fields
// when TrimmingStatus is set (WriteObu arranges this).
func (h Header) writeTo(wb *bitbuffer.WriteBuffer, payloadSize uint64) error {
	if err := h.validate(); err != nil {
		return err
	}
	b := uint64(h.Type)<<3 | boolBit(h.RedundantCopy)<<2 | boolBit(h.TrimmingStatus)<<1 | boolBit(h.Extension)
	if err := wb.WriteUnsignedLiteral(b, 8); err != nil {
		return err
	}
	return wb.WriteUleb128(payloadSize)
}

// Obu is implemented by every OBU payload type. ValidateAndReadPayload
// exists for interface conformance even where the core does not need the
// read direction; such implementations return ierrors.ErrUnimplemented
// per spec.md §7.
type Obu interface {
	ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error
	ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error
	PrintObu(w io.Writer)
}

// WriteObu writes a complete OBU (header, obu_size, payload) to wb. The
// payload is first written to a scratch buffer so obu_size is exact and so
// that no partial OBU is ever emitted if validation fails midway through
// the payload (spec.md §4.2, §4.6, §7). When header.TrimmingStatus is set,
// the two trim-count ULEB128 fields are written into the same scratch
// buffer ahead of the payload, so obu_size correctly covers them.
func WriteObu(wb *bitbuffer.WriteBuffer, o Obu, header Header, gen leb128.Generator) error {
	scratch := bitbuffer.NewWriteBuffer(64, gen)
	if header.TrimmingStatus {
		if err := scratch.WriteUleb128(uint64(header.NumSamplesToTrimAtEnd)); err != nil {
			return err
		}
		if err := scratch.WriteUleb128(uint64(header.NumSamplesToTrimAtStart)); err != nil {
			return err
		}
	}
	if err := o.ValidateAndWritePayload(scratch); err != nil {
		return err
	}
	payload, err := scratch.Bytes()
	if err != nil {
		return fmt.Errorf("scratch payload buffer not byte-aligned: %w", err)
	}
	if err := header.writeTo(wb, uint64(len(payload))); err != nil {
		return err
	}
	return wb.WriteUint8Slice(payload)
}
