package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// CodecID is the 4-byte ASCII fourcc naming the codec behind a CodecConfig.
type CodecID [4]byte

var (
	CodecIDLpcm CodecID = [4]byte{'i', 'p', 'c', 'm'}
	CodecIDOpus CodecID = [4]byte{'O', 'p', 'u', 's'}
	CodecIDAac  CodecID = [4]byte{'m', 'p', '4', 'a'}
	CodecIDFlac CodecID = [4]byte{'f', 'L', 'a', 'C'}
)

func (c CodecID) String() string { return string(c[:]) }

func isKnownCodecID(c CodecID) bool {
	return c == CodecIDLpcm || c == CodecIDOpus || c == CodecIDAac || c == CodecIDFlac
}

// DecoderConfig is implemented by the four codec-specific configuration
// payloads. Each knows which CodecID it belongs to and the codec-specific
// roll distance IAMF requires.
type DecoderConfig interface {
	CodecID() CodecID
	RequiredAudioRollDistance() int16
	writePayload(wb *bitbuffer.WriteBuffer) error
	readPayload(rb *bitbuffer.ReadBuffer) error
	print(w io.Writer)
}

// LpcmSampleSize enumerates the sample sizes spec.md §3 permits for LPCM.
type LpcmSampleSize uint8

const (
	LpcmSampleSize16 LpcmSampleSize = 16
	LpcmSampleSize24 LpcmSampleSize = 24
	LpcmSampleSize32 LpcmSampleSize = 32
)

func validLpcmSampleSize(s LpcmSampleSize) bool {
	return s == LpcmSampleSize16 || s == LpcmSampleSize24 || s == LpcmSampleSize32
}

func validLpcmSampleRate(r uint32) bool {
	switch r {
	case 16000, 32000, 44100, 48000, 96000:
		return true
	}
	return false
}

// LpcmDecoderConfig is the decoder_config payload for codec_id "ipcm".
type LpcmDecoderConfig struct {
	BigEndian  bool
	SampleSize LpcmSampleSize
	SampleRate uint32
}

func (c *LpcmDecoderConfig) CodecID() CodecID { return CodecIDLpcm }

// RequiredAudioRollDistance is 0 for LPCM: there is no decoder startup
// transient to skip.
func (c *LpcmDecoderConfig) RequiredAudioRollDistance() int16 { return 0 }

func (c *LpcmDecoderConfig) writePayload(wb *bitbuffer.WriteBuffer) error {
	if !validLpcmSampleSize(c.SampleSize) {
		return ierrors.InvalidArgument("lpcm sample_size %d not in {16,24,32}", c.SampleSize)
	}
	if !validLpcmSampleRate(c.SampleRate) {
		return ierrors.InvalidArgument("lpcm sample_rate %d not in {16000,32000,44100,48000,96000}", c.SampleRate)
	}
	endianness := uint64(0)
	if c.BigEndian {
		endianness = 1
	}
	if err := wb.WriteUnsignedLiteral(endianness, 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.SampleSize), 8); err != nil {
		return err
	}
	return wb.WriteUnsignedLiteral(uint64(c.SampleRate), 32)
}

func (c *LpcmDecoderConfig) readPayload(rb *bitbuffer.ReadBuffer) error {
	e, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	c.BigEndian = e != 0
	s, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	c.SampleSize = LpcmSampleSize(s)
	r, err := rb.ReadUnsignedLiteral(32)
	if err != nil {
		return err
	}
	c.SampleRate = uint32(r)
	return nil
}

func (c *LpcmDecoderConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  sample_format_flags_bitfield= %v\n", c.BigEndian)
	fmt.Fprintf(w, "  sample_size= %d\n", c.SampleSize)
	fmt.Fprintf(w, "  sample_rate= %d\n", c.SampleRate)
}

// OpusDecoderConfig is the decoder_config payload for codec_id "Opus".
// Output channel count is always stereo per spec.md §3; output sample rate
// is fixed at 48000 and not itself stored (it is implied).
type OpusDecoderConfig struct {
	Version         uint8
	PreSkip         uint16
	InputSampleRate uint32
	OutputGain      int16
	MappingFamily   uint8
}

const opusOutputChannelCount = 2

// OpusOutputSampleRate is fixed by the Opus decoder_config, per spec.md §3.
const OpusOutputSampleRate uint32 = 48000

func (c *OpusDecoderConfig) CodecID() CodecID { return CodecIDOpus }

// RequiredAudioRollDistance is -4 for Opus at the default frame size,
// covering the codec's inherent pre-roll.
func (c *OpusDecoderConfig) RequiredAudioRollDistance() int16 { return -4 }

func (c *OpusDecoderConfig) writePayload(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(c.Version), 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(opusOutputChannelCount, 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.PreSkip), 16); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.InputSampleRate), 32); err != nil {
		return err
	}
	if err := wb.WriteSigned16(c.OutputGain); err != nil {
		return err
	}
	return wb.WriteUnsignedLiteral(uint64(c.MappingFamily), 8)
}

func (c *OpusDecoderConfig) readPayload(rb *bitbuffer.ReadBuffer) error {
	v, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	c.Version = uint8(v)
	if _, err := rb.ReadUnsignedLiteral(8); err != nil { // output_channel_count, always 2
		return err
	}
	ps, err := rb.ReadUnsignedLiteral(16)
	if err != nil {
		return err
	}
	c.PreSkip = uint16(ps)
	sr, err := rb.ReadUnsignedLiteral(32)
	if err != nil {
		return err
	}
	c.InputSampleRate = uint32(sr)
	g, err := rb.ReadSigned16()
	if err != nil {
		return err
	}
	c.OutputGain = g
	mf, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	c.MappingFamily = uint8(mf)
	return nil
}

func (c *OpusDecoderConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  version= %d\n", c.Version)
	fmt.Fprintf(w, "  output_channel_count= %d\n", opusOutputChannelCount)
	fmt.Fprintf(w, "  pre_skip= %d\n", c.PreSkip)
	fmt.Fprintf(w, "  input_sample_rate= %d\n", c.InputSampleRate)
	fmt.Fprintf(w, "  output_gain= %d\n", c.OutputGain)
	fmt.Fprintf(w, "  mapping_family= %d\n", c.MappingFamily)
}

// AacLcDecoderConfig carries the MPEG-4 AudioSpecificConfig for codec_id
// "mp4a". Only the fields the encoder layer needs are modeled.
type AacLcDecoderConfig struct {
	SamplingFrequencyIndex uint8
	ChannelConfiguration   uint8
	// SamplingFrequency is only used when SamplingFrequencyIndex signals
	// the escape value 0xf (explicit 24-bit frequency).
	SamplingFrequency uint32
}

const aacEscapeSamplingFrequencyIndex = 0xf
const aacObjectTypeLC = 2

func (c *AacLcDecoderConfig) CodecID() CodecID { return CodecIDAac }

// RequiredAudioRollDistance is -1 for AAC-LC: the decoder needs the
// previous frame to fully prime its filterbank.
func (c *AacLcDecoderConfig) RequiredAudioRollDistance() int16 { return -1 }

func (c *AacLcDecoderConfig) writePayload(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(aacObjectTypeLC, 5); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.SamplingFrequencyIndex), 4); err != nil {
		return err
	}
	if c.SamplingFrequencyIndex == aacEscapeSamplingFrequencyIndex {
		if err := wb.WriteUnsignedLiteral(uint64(c.SamplingFrequency), 24); err != nil {
			return err
		}
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.ChannelConfiguration), 4); err != nil {
		return err
	}
	return nil
}

func (c *AacLcDecoderConfig) readPayload(rb *bitbuffer.ReadBuffer) error {
	objType, err := rb.ReadUnsignedLiteral(5)
	if err != nil {
		return err
	}
	if objType != aacObjectTypeLC {
		return ierrors.InvalidArgument("unsupported AAC audioObjectType %d, only AAC-LC (2) is supported", objType)
	}
	idx, err := rb.ReadUnsignedLiteral(4)
	if err != nil {
		return err
	}
	c.SamplingFrequencyIndex = uint8(idx)
	if c.SamplingFrequencyIndex == aacEscapeSamplingFrequencyIndex {
		f, err := rb.ReadUnsignedLiteral(24)
		if err != nil {
			return err
		}
		c.SamplingFrequency = uint32(f)
	}
	cc, err := rb.ReadUnsignedLiteral(4)
	if err != nil {
		return err
	}
	c.ChannelConfiguration = uint8(cc)
	return nil
}

func (c *AacLcDecoderConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  audioObjectType= LC\n")
	fmt.Fprintf(w, "  samplingFrequencyIndex= %d\n", c.SamplingFrequencyIndex)
	fmt.Fprintf(w, "  channelConfiguration= %d\n", c.ChannelConfiguration)
}

// FlacDecoderConfig carries the FLAC STREAMINFO metadata block for codec_id
// "fLaC".
type FlacDecoderConfig struct {
	MinimumBlockSize  uint16
	MaximumBlockSize  uint16
	MinimumFrameSize  uint32
	MaximumFrameSize  uint32
	SampleRate        uint32
	NumChannels       uint8 // 1-8, stored as NumChannels-1 on the wire
	BitsPerSample     uint8 // stored as BitsPerSample-1 on the wire
	TotalSamplesInStream uint64
}

func (c *FlacDecoderConfig) CodecID() CodecID { return CodecIDFlac }

// RequiredAudioRollDistance is 0 for FLAC: it is lossless and stateless
// across frames.
func (c *FlacDecoderConfig) RequiredAudioRollDistance() int16 { return 0 }

func (c *FlacDecoderConfig) writePayload(wb *bitbuffer.WriteBuffer) error {
	if err := c.validate(); err != nil {
		return err
	}
	// METADATA_BLOCK_HEADER: last-metadata-block flag (1) | block type
	// STREAMINFO (0, 7 bits) | length in bytes (24 bits).
	if err := wb.WriteUnsignedLiteral(1, 1); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 7); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(34, 24); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.MinimumBlockSize), 16); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.MaximumBlockSize), 16); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.MinimumFrameSize), 24); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.MaximumFrameSize), 24); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.SampleRate), 20); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.NumChannels-1), 3); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.BitsPerSample-1), 5); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(c.TotalSamplesInStream, 36); err != nil {
		return err
	}
	// md5_signature, 128 bits. We have no DSP to checksum, so an
	// all-zero signature is emitted (meaning "unknown") as FLAC permits.
	return wb.WriteUint8Slice(make([]byte, 16))
}

func (c *FlacDecoderConfig) validate() error {
	if c.NumChannels < 1 || c.NumChannels > 8 {
		return ierrors.InvalidArgument("flac num_channels %d not in [1,8]", c.NumChannels)
	}
	if c.BitsPerSample < 4 || c.BitsPerSample > 32 {
		return ierrors.InvalidArgument("flac bits_per_sample %d not in [4,32]", c.BitsPerSample)
	}
	if c.MinimumBlockSize == 0 || c.MaximumBlockSize == 0 {
		return ierrors.InvalidArgument("flac block sizes must be nonzero")
	}
	if c.MinimumBlockSize > c.MaximumBlockSize {
		return ierrors.InvalidArgument("flac minimum_block_size %d > maximum_block_size %d", c.MinimumBlockSize, c.MaximumBlockSize)
	}
	return nil
}

func (c *FlacDecoderConfig) readPayload(rb *bitbuffer.ReadBuffer) error {
	if _, err := rb.ReadUnsignedLiteral(1); err != nil {
		return err
	}
	if _, err := rb.ReadUnsignedLiteral(7); err != nil {
		return err
	}
	if _, err := rb.ReadUnsignedLiteral(24); err != nil {
		return err
	}
	v, err := rb.ReadUnsignedLiteral(16)
	if err != nil {
		return err
	}
	c.MinimumBlockSize = uint16(v)
	v, err = rb.ReadUnsignedLiteral(16)
	if err != nil {
		return err
	}
	c.MaximumBlockSize = uint16(v)
	v, err = rb.ReadUnsignedLiteral(24)
	if err != nil {
		return err
	}
	c.MinimumFrameSize = uint32(v)
	v, err = rb.ReadUnsignedLiteral(24)
	if err != nil {
		return err
	}
	c.MaximumFrameSize = uint32(v)
	v, err = rb.ReadUnsignedLiteral(20)
	if err != nil {
		return err
	}
	c.SampleRate = uint32(v)
	v, err = rb.ReadUnsignedLiteral(3)
	if err != nil {
		return err
	}
	c.NumChannels = uint8(v) + 1
	v, err = rb.ReadUnsignedLiteral(5)
	if err != nil {
		return err
	}
	c.BitsPerSample = uint8(v) + 1
	v, err = rb.ReadUnsignedLiteral(36)
	if err != nil {
		return err
	}
	c.TotalSamplesInStream = v
	if _, err := rb.ReadUint8Slice(16); err != nil {
		return err
	}
	return nil
}

func (c *FlacDecoderConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  min_block_size= %d\n", c.MinimumBlockSize)
	fmt.Fprintf(w, "  max_block_size= %d\n", c.MaximumBlockSize)
	fmt.Fprintf(w, "  sample_rate= %d\n", c.SampleRate)
	fmt.Fprintf(w, "  channels= %d\n", c.NumChannels)
	fmt.Fprintf(w, "  bits_per_sample= %d\n", c.BitsPerSample)
}

// CodecConfig is the "Codec Config" OBU payload (spec.md §3, §4.2).
type CodecConfig struct {
	ID                 uint64
	NumSamplesPerFrame uint32
	AudioRollDistance  int16
	DecoderConfig      DecoderConfig
}

// InputSampleRate returns the sample rate that drives timestamp progression
// for streams backed by this codec config (spec.md §3: "the *input sample
// rate* drives timestamp progression").
func (c *CodecConfig) InputSampleRate() (uint32, error) {
	switch dc := c.DecoderConfig.(type) {
	case *LpcmDecoderConfig:
		return dc.SampleRate, nil
	case *OpusDecoderConfig:
		return dc.InputSampleRate, nil
	case *AacLcDecoderConfig:
		return aacSampleRateFromIndex(dc.SamplingFrequencyIndex, dc.SamplingFrequency)
	case *FlacDecoderConfig:
		return dc.SampleRate, nil
	default:
		return 0, ierrors.InvalidArgument("unknown decoder config type %T", c.DecoderConfig)
	}
}

// OutputSampleRate returns the sample rate that drives loudness measurement
// for streams backed by this codec config (spec.md §3). For Opus this
// differs from the input sample rate: Opus always decodes to 48 kHz.
func (c *CodecConfig) OutputSampleRate() (uint32, error) {
	if _, ok := c.DecoderConfig.(*OpusDecoderConfig); ok {
		return OpusOutputSampleRate, nil
	}
	return c.InputSampleRate()
}

var aacSampleRateTable = [...]uint32{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

func aacSampleRateFromIndex(idx uint8, explicit uint32) (uint32, error) {
	if idx == aacEscapeSamplingFrequencyIndex {
		return explicit, nil
	}
	if int(idx) >= len(aacSampleRateTable) {
		return 0, ierrors.InvalidArgument("aac samplingFrequencyIndex %d is reserved", idx)
	}
	return aacSampleRateTable[idx], nil
}

// ValidateAndWritePayload writes codec_config_id, codec_id,
// num_samples_per_frame, audio_roll_distance, and the decoder_config.
// Refer to spec.md §4.2.
func (c *CodecConfig) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	if c.DecoderConfig == nil {
		return ierrors.InvalidArgument("codec config %d has no decoder_config", c.ID)
	}
	if !isKnownCodecID(c.DecoderConfig.CodecID()) {
		return ierrors.InvalidArgument("codec_id %v is not one of the known codec ids", c.DecoderConfig.CodecID())
	}
	if c.NumSamplesPerFrame == 0 {
		return ierrors.InvalidArgument("num_samples_per_frame must be strictly positive")
	}
	if c.AudioRollDistance != c.DecoderConfig.RequiredAudioRollDistance() {
		return ierrors.InvalidArgument("audio_roll_distance %d does not match the codec-specific value %d for %v",
			c.AudioRollDistance, c.DecoderConfig.RequiredAudioRollDistance(), c.DecoderConfig.CodecID())
	}

	if err := wb.WriteUleb128(c.ID); err != nil {
		return err
	}
	codecID := c.DecoderConfig.CodecID()
	if err := wb.WriteUint8Slice(codecID[:]); err != nil {
		return err
	}
	if err := wb.WriteUleb128(uint64(c.NumSamplesPerFrame)); err != nil {
		return err
	}
	if err := wb.WriteSigned16(c.AudioRollDistance); err != nil {
		return err
	}
	return c.DecoderConfig.writePayload(wb)
}

// ValidateAndReadPayload is used by tests to check the write→read round
// trip of obu_size (spec.md §8). Unlike ArbitraryObu/AudioFrame, reading a
// Codec Config OBU is a real, supported operation: descriptor OBUs are
// immutable and simple enough that decoding them costs little and the
// round-trip tests in §8 depend on it.
func (c *CodecConfig) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	id, err := rb.ReadUleb128()
	if err != nil {
		return err
	}
	c.ID = id
	idBytes, err := rb.ReadUint8Slice(4)
	if err != nil {
		return err
	}
	var codecID CodecID
	copy(codecID[:], idBytes)

	n, err := rb.ReadUleb128()
	if err != nil {
		return err
	}
	c.NumSamplesPerFrame = uint32(n)
	roll, err := rb.ReadSigned16()
	if err != nil {
		return err
	}
	c.AudioRollDistance = roll

	switch codecID {
	case CodecIDLpcm:
		c.DecoderConfig = &LpcmDecoderConfig{}
	case CodecIDOpus:
		c.DecoderConfig = &OpusDecoderConfig{}
	case CodecIDAac:
		c.DecoderConfig = &AacLcDecoderConfig{}
	case CodecIDFlac:
		c.DecoderConfig = &FlacDecoderConfig{}
	default:
		return ierrors.InvalidArgument("codec_id %v is not one of the known codec ids", codecID)
	}
	if c.NumSamplesPerFrame == 0 {
		return ierrors.InvalidArgument("num_samples_per_frame must be strictly positive")
	}
	return c.DecoderConfig.readPayload(rb)
}

// PrintObu writes a human-readable diagnostic dump.
func (c *CodecConfig) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Codec Config OBU:\n")
	fmt.Fprintf(w, "  codec_config_id= %d\n", c.ID)
	fmt.Fprintf(w, "  codec_id= %v\n", c.DecoderConfig.CodecID())
	fmt.Fprintf(w, "  num_samples_per_frame= %d\n", c.NumSamplesPerFrame)
	fmt.Fprintf(w, "  audio_roll_distance= %d\n", c.AudioRollDistance)
	c.DecoderConfig.print(w)
}
