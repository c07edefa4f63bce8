package codec

import (
	"encoding/binary"

	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// LpcmEncoder is a passthrough adapter: no compression, no look-ahead
// delay, just endianness and bit-depth conversion (spec.md §4.5).
type LpcmEncoder struct {
	fifo
	config      *obu.LpcmDecoderConfig
	numChannels int
}

// NewLpcmEncoder returns an uninitialized LpcmEncoder.
func NewLpcmEncoder() *LpcmEncoder { return &LpcmEncoder{} }

func (e *LpcmEncoder) Initialize(cc obu.CodecConfig, numChannels int) error {
	config, ok := cc.DecoderConfig.(*obu.LpcmDecoderConfig)
	if !ok {
		return ierrors.InvalidArgument("lpcm encoder requires an LpcmDecoderConfig, got %T", cc.DecoderConfig)
	}
	if numChannels <= 0 {
		return ierrors.InvalidArgument("num_channels must be positive, got %d", numChannels)
	}
	e.config = config
	e.numChannels = numChannels
	return nil
}

// RequiredSamplesToDelayAtStart is 0: LPCM has no decoder startup
// transient.
func (e *LpcmEncoder) RequiredSamplesToDelayAtStart() uint32 { return 0 }

func (e *LpcmEncoder) EncodeAudioFrame(inputBitDepth int, samples [][]int32, partial AudioFrameWithData) error {
	if e.config == nil {
		return ierrors.FailedPrecondition("lpcm encoder used before Initialize")
	}
	if err := validateBitDepth(inputBitDepth); err != nil {
		return err
	}
	if len(samples) == 0 {
		return ierrors.InvalidArgument("lpcm encode called with zero frames")
	}
	outBitDepth := int(e.config.SampleSize)
	bytesPerSample := outBitDepth / 8

	payload := make([]byte, 0, len(samples)*e.numChannels*bytesPerSample)
	for _, tick := range samples {
		if len(tick) != e.numChannels {
			return ierrors.InvalidArgument("lpcm frame has %d channels, want %d", len(tick), e.numChannels)
		}
		for _, s := range tick {
			v := leftJustify(s, inputBitDepth, outBitDepth)
			payload = appendSample(payload, v, bytesPerSample, e.config.BigEndian)
		}
	}
	partial.AudioFrame.AudioData = payload
	e.push(partial)
	return nil
}

func appendSample(buf []byte, v int32, bytesPerSample int, bigEndian bool) []byte {
	var tmp [4]byte
	switch bytesPerSample {
	case 2:
		if bigEndian {
			binary.BigEndian.PutUint16(tmp[:2], uint16(v))
		} else {
			binary.LittleEndian.PutUint16(tmp[:2], uint16(v))
		}
		return append(buf, tmp[:2]...)
	case 3:
		u := uint32(v)
		if bigEndian {
			tmp[0], tmp[1], tmp[2] = byte(u>>16), byte(u>>8), byte(u)
		} else {
			tmp[0], tmp[1], tmp[2] = byte(u), byte(u>>8), byte(u>>16)
		}
		return append(buf, tmp[:3]...)
	default: // 4
		if bigEndian {
			binary.BigEndian.PutUint32(tmp[:4], uint32(v))
		} else {
			binary.LittleEndian.PutUint32(tmp[:4], uint32(v))
		}
		return append(buf, tmp[:4]...)
	}
}

// Finalize is a no-op: LPCM buffers nothing.
func (e *LpcmEncoder) Finalize() error { return nil }
