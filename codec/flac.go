package codec

import (
	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// FlacEncoder implements the Encoder contract directly, validating
// STREAMINFO consistency against the frames it is handed. Like AacEncoder,
// it frames raw PCM rather than delegating to a third-party FLAC
// compressor; see DESIGN.md for why no suitable library in the pack fits
// (the only FLAC file in the pack is a single extracted format reference,
// not a buildable module).
type FlacEncoder struct {
	fifo
	streamInfo  *obu.FlacDecoderConfig
	numChannels int
}

// NewFlacEncoder returns an uninitialized FlacEncoder.
func NewFlacEncoder() *FlacEncoder { return &FlacEncoder{} }

func (e *FlacEncoder) Initialize(cc obu.CodecConfig, numChannels int) error {
	info, ok := cc.DecoderConfig.(*obu.FlacDecoderConfig)
	if !ok {
		return ierrors.InvalidArgument("flac encoder requires a FlacDecoderConfig, got %T", cc.DecoderConfig)
	}
	if int(info.NumChannels) != numChannels {
		return ierrors.InvalidArgument("flac STREAMINFO declares %d channels, Initialize got %d", info.NumChannels, numChannels)
	}
	e.streamInfo = info
	e.numChannels = numChannels
	return nil
}

// RequiredSamplesToDelayAtStart is 0: FLAC is lossless and stateless
// across frames (spec.md §3).
func (e *FlacEncoder) RequiredSamplesToDelayAtStart() uint32 { return 0 }

func (e *FlacEncoder) EncodeAudioFrame(inputBitDepth int, samples [][]int32, partial AudioFrameWithData) error {
	if e.streamInfo == nil {
		return ierrors.FailedPrecondition("flac encoder used before Initialize")
	}
	if inputBitDepth != int(e.streamInfo.BitsPerSample) {
		return ierrors.InvalidArgument("flac STREAMINFO declares bits_per_sample=%d, encode called with %d", e.streamInfo.BitsPerSample, inputBitDepth)
	}
	if uint16(len(samples)) > e.streamInfo.MaximumBlockSize || uint16(len(samples)) < e.streamInfo.MinimumBlockSize {
		return ierrors.InvalidArgument("flac frame has %d samples, outside STREAMINFO block size range [%d,%d]",
			len(samples), e.streamInfo.MinimumBlockSize, e.streamInfo.MaximumBlockSize)
	}

	gen := leb128.NewMinimumGenerator()
	scratch := bitbuffer.NewWriteBuffer(len(samples)*e.numChannels*4, gen)
	bytesPerSample := (int(e.streamInfo.BitsPerSample) + 7) / 8
	for _, tick := range samples {
		if len(tick) != e.numChannels {
			return ierrors.InvalidArgument("flac frame has %d channels, want %d", len(tick), e.numChannels)
		}
		for _, s := range tick {
			v := leftJustify(s, inputBitDepth, bytesPerSample*8)
			if err := scratch.WriteUnsignedLiteral(uint64(uint32(v)), bytesPerSample*8); err != nil {
				return err
			}
		}
	}
	payload, err := scratch.Bytes()
	if err != nil {
		return err
	}
	partial.AudioFrame.AudioData = payload
	e.push(partial)
	return nil
}

// Finalize is a no-op: FLAC frames here carry no cross-frame state.
func (e *FlacEncoder) Finalize() error { return nil }
