package codec

import (
	"github.com/thesyncim/gopus"

	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// OpusEncoder wraps github.com/thesyncim/gopus, honoring pre_skip as the
// codec's queried start-delay and using the fixed 48 kHz internal rate
// spec.md §3 mandates for Opus decoder_config (spec.md §4.5).
type OpusEncoder struct {
	fifo
	enc         *gopus.Encoder
	config      *obu.OpusDecoderConfig
	useFloatAPI bool
	numChannels int
}

// NewOpusEncoder returns an uninitialized OpusEncoder. useFloatAPI selects
// between gopus's int16 and float32 push paths (spec.md §4.5
// "use_float_api").
func NewOpusEncoder(useFloatAPI bool) *OpusEncoder {
	return &OpusEncoder{useFloatAPI: useFloatAPI}
}

func (e *OpusEncoder) Initialize(cc obu.CodecConfig, numChannels int) error {
	config, ok := cc.DecoderConfig.(*obu.OpusDecoderConfig)
	if !ok {
		return ierrors.InvalidArgument("opus encoder requires an OpusDecoderConfig, got %T", cc.DecoderConfig)
	}
	if numChannels != 2 {
		return ierrors.InvalidArgument("opus output_channel_count must be 2, got %d", numChannels)
	}
	enc, err := gopus.NewEncoder(gopus.EncoderConfig{
		SampleRate:  int(obu.OpusOutputSampleRate),
		Channels:    numChannels,
		Application: gopus.ApplicationAudio,
	})
	if err != nil {
		return ierrors.InvalidArgument("gopus.NewEncoder: %v", err)
	}
	if err := enc.SetFrameSize(int(cc.NumSamplesPerFrame)); err != nil {
		return ierrors.InvalidArgument("opus num_samples_per_frame %d is not a valid gopus frame size (one of 120,240,480,960,1920,2880): %v",
			cc.NumSamplesPerFrame, err)
	}
	e.enc = enc
	e.config = config
	e.numChannels = numChannels
	return nil
}

// RequiredSamplesToDelayAtStart returns the codec config's declared
// pre_skip, the number of decoded samples Opus discards at stream start.
func (e *OpusEncoder) RequiredSamplesToDelayAtStart() uint32 {
	if e.config == nil {
		return 0
	}
	return uint32(e.config.PreSkip)
}

func (e *OpusEncoder) EncodeAudioFrame(inputBitDepth int, samples [][]int32, partial AudioFrameWithData) error {
	if e.enc == nil {
		return ierrors.FailedPrecondition("opus encoder used before Initialize")
	}
	if inputBitDepth != 16 && inputBitDepth != 32 {
		return ierrors.InvalidArgument("opus requires 16-bit or float (carried as 32-bit) pcm, got %d-bit", inputBitDepth)
	}
	var payload []byte
	var err error
	if e.useFloatAPI {
		floats := make([]float32, 0, len(samples)*e.numChannels)
		for _, tick := range samples {
			if len(tick) != e.numChannels {
				return ierrors.InvalidArgument("opus frame has %d channels, want %d", len(tick), e.numChannels)
			}
			for _, s := range tick {
				v := leftJustify(s, inputBitDepth, 32)
				floats = append(floats, float32(v)/float32(1<<31))
			}
		}
		payload, err = e.enc.EncodeFloat32(floats)
	} else {
		ints := make([]int16, 0, len(samples)*e.numChannels)
		for _, tick := range samples {
			if len(tick) != e.numChannels {
				return ierrors.InvalidArgument("opus frame has %d channels, want %d", len(tick), e.numChannels)
			}
			for _, s := range tick {
				v := leftJustify(s, inputBitDepth, 16)
				ints = append(ints, int16(v))
			}
		}
		payload, err = e.enc.EncodeInt16Slice(ints)
	}
	if err != nil {
		return ierrors.InvalidArgument("gopus encode: %v", err)
	}
	partial.AudioFrame.AudioData = payload
	e.push(partial)
	return nil
}

// Finalize is a no-op: gopus has no separate flush call; any internal
// look-ahead is already reflected in the per-call Encode return.
func (e *OpusEncoder) Finalize() error { return nil }
