package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// InsertionHook names a point in the sequencer's emission order where a
// user-supplied ArbitraryObu is spliced in. Grounded on
// original_source/iamf/obu/arbitrary_obu.cc's WriteObusWithHook, which
// iterates every arbitrary OBU matching a given hook; the hook set itself
// is supplemented here beyond spec.md §4.2's "e.g." list to cover every
// named point in the sequencer's step 3 (spec.md §4.6).
type InsertionHook uint8

const (
	HookBeforeDescriptors InsertionHook = iota
	HookAfterIASequenceHeader
	HookAfterCodecConfigs
	HookAfterAudioElements
	HookAfterMixPresentations
	HookBeforeParameterBlocks
	HookAfterAudioFrame
)

func (h InsertionHook) String() string {
	switch h {
	case HookBeforeDescriptors:
		return "BeforeDescriptors"
	case HookAfterIASequenceHeader:
		return "AfterIASequenceHeader"
	case HookAfterCodecConfigs:
		return "AfterCodecConfigs"
	case HookAfterAudioElements:
		return "AfterAudioElements"
	case HookAfterMixPresentations:
		return "AfterMixPresentations"
	case HookBeforeParameterBlocks:
		return "BeforeParameterBlocks"
	case HookAfterAudioFrame:
		return "AfterAudioFrame"
	default:
		return "Unknown"
	}
}

// ArbitraryObu is a user-declared OBU with an opaque payload, injected by
// the sequencer at its declared InsertionHook (spec.md §3, §4.2).
type ArbitraryObu struct {
	ObuType       Type
	Payload       []byte
	InsertionHook InsertionHook
}

func (a *ArbitraryObu) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	return wb.WriteUint8Slice(a.Payload)
}

// ValidateAndReadPayload is out of scope: the core never needs to parse an
// arbitrary OBU it did not itself write (spec.md §7).
func (a *ArbitraryObu) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("arbitrary OBU decode is out of scope")
}

func (a *ArbitraryObu) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Arbitrary OBU:\n")
	fmt.Fprintf(w, "  insertion_hook= %v\n", a.InsertionHook)
	fmt.Fprintf(w, "  obu_type= %v payload_len= %d (payload omitted)\n", a.ObuType, len(a.Payload))
}

// Header returns the obu_header this arbitrary OBU should be written with.
// Arbitrary OBUs never carry trimming_status; redundant_copy is left to the
// caller via RedundantCopy.
func (a *ArbitraryObu) Header(redundantCopy bool) Header {
	return Header{Type: a.ObuType, RedundantCopy: redundantCopy}
}

// SelectHook filters arbitrary in-order, returning only those bound to hook.
func SelectHook(arbitrary []ArbitraryObu, hook InsertionHook) []ArbitraryObu {
	var out []ArbitraryObu
	for _, a := range arbitrary {
		if a.InsertionHook == hook {
			out = append(out, a)
		}
	}
	return out
}
