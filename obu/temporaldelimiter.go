package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// TemporalDelimiter is the zero-payload OBU separating temporal units in
// the stream (spec.md §4.2, §6).
type TemporalDelimiter struct{}

func (t *TemporalDelimiter) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	return nil
}

func (t *TemporalDelimiter) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return nil
}

func (t *TemporalDelimiter) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Temporal Delimiter OBU.\n")
}

// Header returns the only legal obu_header for a temporal delimiter:
// redundant_copy and trimming_status are both forbidden (spec.md §4.2).
func (t *TemporalDelimiter) Header() Header {
	return Header{Type: TypeTemporalDelimiter}
}

// ValidateTemporalDelimiterHeader repeats checks Header.writeTo already
// makes; it exists so
// callers constructing a Header by hand for a temporal delimiter still fail
// loudly instead of silently writing an illegal OBU.
func ValidateTemporalDelimiterHeader(h Header) error {
	if h.Type != TypeTemporalDelimiter {
		return ierrors.InvalidArgument("not a temporal delimiter header: %v", h.Type)
	}
	if h.RedundantCopy {
		return ierrors.InvalidArgument("redundant_copy is forbidden on temporal delimiter OBUs")
	}
	if h.TrimmingStatus {
		return ierrors.InvalidArgument("trimming_status is forbidden on temporal delimiter OBUs")
	}
	return nil
}
