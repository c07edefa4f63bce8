// The iamf-tools codec package provides the uniform encoder abstraction
// spec.md §4.5 requires over LPCM, Opus, AAC-LC, and FLAC: Initialize,
// EncodeAudioFrame, Finalize, Pop, each honoring per-codec frame delay and
// preserving input order.
//
// Grounded on original_source/iamf/cli/audio_frame_with_data.h for the
// AudioFrameWithData ownership shape, and on spec.md §9 "Ordering
// guarantees in codec layer" for the FIFO-of-(metadata,payload) structure
// every adapter shares via the embedded fifo helper.
package codec

import (
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
	"github.com/BrandenAvalonCx/iamf-tools/parameters"
)

// AudioFrameWithData bundles a coded AudioFrame with the timing and
// down-mixing metadata the sequencer needs to place it in the stream.
type AudioFrameWithData struct {
	AudioFrame       obu.AudioFrame
	StartTimestamp   uint64
	EndTimestamp     uint64
	DownMixingParams parameters.DownMixingParams
	// TrimAtStart and TrimAtEnd carry samples_to_trim_at_start/end (spec.md
	// §6) through to the sequencer, which sets the audio frame OBU's
	// trimming_status and per-frame trim counts from them.
	TrimAtStart uint32
	TrimAtEnd   uint32
}

// Encoder is the contract every per-codec adapter implements (spec.md
// §4.5).
type Encoder interface {
	// Initialize sets up the codec for numChannels and queries its
	// intrinsic start-delay in samples.
	Initialize(cc obu.CodecConfig, numChannels int) error
	// EncodeAudioFrame pushes one frame's samples, left-justified in the
	// high inputBitDepth bits of each int32, taking ownership of partial
	// (whose AudioFrame field is populated once the codec's payload is
	// ready).
	EncodeAudioFrame(inputBitDepth int, samples [][]int32, partial AudioFrameWithData) error
	// Finalize signals end of stream; codecs with look-ahead delay flush
	// their remaining buffered frames here.
	Finalize() error
	// Pop returns the next ready coded frame in push order, and whether
	// one was available.
	Pop() (AudioFrameWithData, bool)
	// RequiredSamplesToDelayAtStart is the codec's queried start delay,
	// cached by Initialize.
	RequiredSamplesToDelayAtStart() uint32
}

// fifo is the ordering primitive every adapter embeds: pending (partial
// metadata, payload) pairs are appended by EncodeAudioFrame and drained in
// order by Pop, so output order is structural rather than accidental
// (spec.md §9).
type fifo struct {
	ready []AudioFrameWithData
}

func (f *fifo) push(frame AudioFrameWithData) {
	f.ready = append(f.ready, frame)
}

// Pop is promoted onto every adapter that embeds fifo, satisfying Encoder's
// Pop method without each adapter repeating the same two lines.
func (f *fifo) Pop() (AudioFrameWithData, bool) {
	if len(f.ready) == 0 {
		return AudioFrameWithData{}, false
	}
	head := f.ready[0]
	f.ready = f.ready[1:]
	return head, true
}

// leftJustify converts a sample stored in the high inputBitDepth bits of a
// 32-bit signed integer to an outBitDepth-bit signed value held in the low
// bits of the result (an outBitDepth of 32 returns the sample unchanged).
// Used by every adapter that must reconcile the caller's bit depth with the
// codec's own.
func leftJustify(sample int32, inputBitDepth, outBitDepth int) int32 {
	if outBitDepth >= 32 {
		return sample
	}
	return sample >> uint(32-outBitDepth)
}

func validateBitDepth(bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
		return nil
	default:
		return ierrors.InvalidArgument("bit depth %d not in {16,24,32}", bitDepth)
	}
}
