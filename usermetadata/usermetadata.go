// The iamf-tools usermetadata package decodes the YAML configuration
// surface the composition root reads before it ever touches the OBU,
// codec, or sequencer layers (spec.md §6). It is the Go-native,
// library-backed analogue of the original tool's protobuf text-format
// config, using github.com/goccy/go-yaml the way haivivi-giztoy's
// modelloader.ConfigFile does: plain structs, parallel json/yaml struct
// tags, and a single yaml.Unmarshal call.
package usermetadata

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// LebGeneratorMode selects how the bit writer sizes every ULEB128 field it
// emits (spec.md §4.1, §6).
type LebGeneratorMode string

const (
	LebGeneratorModeMinimum LebGeneratorMode = "minimum"
	LebGeneratorModeFixed   LebGeneratorMode = "fixed"
)

// LebGeneratorConfig mirrors the `leb_generator.*` rows of spec.md §6's
// configuration table.
type LebGeneratorConfig struct {
	Mode      LebGeneratorMode `json:"mode,omitzero" yaml:"mode,omitzero"`
	FixedSize int              `json:"fixed_size,omitzero" yaml:"fixed_size,omitzero"`
}

func (c LebGeneratorConfig) validate() error {
	switch c.Mode {
	case "", LebGeneratorModeMinimum:
		return nil
	case LebGeneratorModeFixed:
		if c.FixedSize < 1 || c.FixedSize > 8 {
			return ierrors.InvalidArgument("leb_generator.fixed_size %d not in [1,8]", c.FixedSize)
		}
		return nil
	default:
		return ierrors.InvalidArgument("leb_generator.mode %q not in {minimum,fixed}", c.Mode)
	}
}

// LpcmMetadata is the decoder_config payload for codec_id "ipcm".
type LpcmMetadata struct {
	BigEndian  bool   `json:"big_endian,omitzero" yaml:"big_endian,omitzero"`
	SampleSize uint8  `json:"sample_size,omitzero" yaml:"sample_size,omitzero"`
	SampleRate uint32 `json:"sample_rate,omitzero" yaml:"sample_rate,omitzero"`
}

// OpusMetadata is the decoder_config payload for codec_id "Opus".
type OpusMetadata struct {
	Version         uint8  `json:"version,omitzero" yaml:"version,omitzero"`
	PreSkip         uint16 `json:"pre_skip,omitzero" yaml:"pre_skip,omitzero"`
	InputSampleRate uint32 `json:"input_sample_rate,omitzero" yaml:"input_sample_rate,omitzero"`
	OutputGain      int16  `json:"output_gain,omitzero" yaml:"output_gain,omitzero"`
	MappingFamily   uint8  `json:"mapping_family,omitzero" yaml:"mapping_family,omitzero"`
}

// AacMetadata is the decoder_config payload for codec_id "mp4a".
type AacMetadata struct {
	SamplingFrequencyIndex uint8  `json:"sampling_frequency_index,omitzero" yaml:"sampling_frequency_index,omitzero"`
	SamplingFrequency      uint32 `json:"sampling_frequency,omitzero" yaml:"sampling_frequency,omitzero"`
	ChannelConfiguration   uint8  `json:"channel_configuration,omitzero" yaml:"channel_configuration,omitzero"`
}

// FlacMetadata is the decoder_config payload for codec_id "fLaC".
type FlacMetadata struct {
	MinimumBlockSize     uint16 `json:"minimum_block_size,omitzero" yaml:"minimum_block_size,omitzero"`
	MaximumBlockSize     uint16 `json:"maximum_block_size,omitzero" yaml:"maximum_block_size,omitzero"`
	MinimumFrameSize     uint32 `json:"minimum_frame_size,omitzero" yaml:"minimum_frame_size,omitzero"`
	MaximumFrameSize     uint32 `json:"maximum_frame_size,omitzero" yaml:"maximum_frame_size,omitzero"`
	SampleRate           uint32 `json:"sample_rate,omitzero" yaml:"sample_rate,omitzero"`
	NumChannels          uint8  `json:"num_channels,omitzero" yaml:"num_channels,omitzero"`
	BitsPerSample        uint8  `json:"bits_per_sample,omitzero" yaml:"bits_per_sample,omitzero"`
	TotalSamplesInStream uint64 `json:"total_samples_in_stream,omitzero" yaml:"total_samples_in_stream,omitzero"`
}

// CodecConfigMetadata mirrors the `codec_config[*]` rows of spec.md §6: a
// codec_config_id, the selecting codec_id (spec.md §6 "Selects codec
// branch"), frame sizing, and exactly one of the four decoder_config
// payloads, keyed by codec_id.
type CodecConfigMetadata struct {
	CodecConfigID      uint64 `json:"codec_config_id" yaml:"codec_config_id"`
	CodecID            string `json:"codec_id" yaml:"codec_id"`
	NumSamplesPerFrame uint32 `json:"num_samples_per_frame,omitzero" yaml:"num_samples_per_frame,omitzero"`
	AudioRollDistance  int16  `json:"audio_roll_distance,omitzero" yaml:"audio_roll_distance,omitzero"`

	Lpcm *LpcmMetadata `json:"lpcm,omitzero" yaml:"lpcm,omitzero"`
	Opus *OpusMetadata `json:"opus,omitzero" yaml:"opus,omitzero"`
	Aac  *AacMetadata  `json:"aac,omitzero" yaml:"aac,omitzero"`
	Flac *FlacMetadata `json:"flac,omitzero" yaml:"flac,omitzero"`
}

func (c CodecConfigMetadata) validate() error {
	switch c.CodecID {
	case "ipcm":
		if c.Lpcm == nil {
			return ierrors.InvalidArgument("codec_config %d has codec_id ipcm but no lpcm block", c.CodecConfigID)
		}
	case "Opus":
		if c.Opus == nil {
			return ierrors.InvalidArgument("codec_config %d has codec_id Opus but no opus block", c.CodecConfigID)
		}
	case "mp4a":
		if c.Aac == nil {
			return ierrors.InvalidArgument("codec_config %d has codec_id mp4a but no aac block", c.CodecConfigID)
		}
	case "fLaC":
		if c.Flac == nil {
			return ierrors.InvalidArgument("codec_config %d has codec_id fLaC but no flac block", c.CodecConfigID)
		}
	default:
		return ierrors.InvalidArgument("codec_config %d has unknown codec_id %q", c.CodecConfigID, c.CodecID)
	}
	return nil
}

// ChannelLayerMetadata mirrors one entry of a scalable channel layout's
// layer list.
type ChannelLayerMetadata struct {
	Layer             string `json:"layer" yaml:"layer"` // e.g. "mono", "stereo", "5.1", "7.1.4", "binaural"
	NumSubstreams     uint8  `json:"num_substreams" yaml:"num_substreams"`
	CoupledSubstreams uint8  `json:"coupled_substreams" yaml:"coupled_substreams"`
	OutputGainFlag    bool   `json:"output_gain_flag,omitzero" yaml:"output_gain_flag,omitzero"`
	OutputGain        int16  `json:"output_gain,omitzero" yaml:"output_gain,omitzero"`
}

// AudioElementMetadata mirrors the `audio_frame_metadata[*]` rows of
// spec.md §6: which substreams make up the element, which ordered PCM
// channel labels feed them (spec.md §6 "Ordered list of labels to pull
// from the PCM source"), and the trimming policy.
type AudioElementMetadata struct {
	AudioElementID         uint64                 `json:"audio_element_id" yaml:"audio_element_id"`
	CodecConfigID          uint64                 `json:"codec_config_id" yaml:"codec_config_id"`
	AudioElementType       string                 `json:"audio_element_type,omitzero" yaml:"audio_element_type,omitzero"` // "channel-based" (default) or "scene-based"
	WavFilename            string                 `json:"wav_filename,omitzero" yaml:"wav_filename,omitzero"`
	SubstreamIDs           []uint64               `json:"substream_ids" yaml:"substream_ids"`
	ChannelLabels          []string               `json:"channel_labels" yaml:"channel_labels"`
	SamplesToTrimAtStart   uint32                 `json:"samples_to_trim_at_start,omitzero" yaml:"samples_to_trim_at_start,omitzero"`
	SamplesToTrimAtEnd     uint32                 `json:"samples_to_trim_at_end,omitzero" yaml:"samples_to_trim_at_end,omitzero"`
	ChannelLayers          []ChannelLayerMetadata `json:"channel_layers,omitzero" yaml:"channel_layers,omitzero"`
	DemixingParameterID    uint64                 `json:"demixing_parameter_id,omitzero" yaml:"demixing_parameter_id,omitzero"`
	DefaultW               uint8                  `json:"default_w,omitzero" yaml:"default_w,omitzero"`
}

// SubMixElementMetadata mirrors one audio element's participation in a
// mix presentation sub-mix.
type SubMixElementMetadata struct {
	AudioElementID uint64 `json:"audio_element_id" yaml:"audio_element_id"`
	MixGain        int16  `json:"mix_gain,omitzero" yaml:"mix_gain,omitzero"`
}

// MixPresentationMetadata mirrors one `mix_presentation` entry: the
// sub-mix's audio elements and their overall output mix gain.
type MixPresentationMetadata struct {
	MixPresentationID uint64                  `json:"mix_presentation_id" yaml:"mix_presentation_id"`
	Elements          []SubMixElementMetadata `json:"elements" yaml:"elements"`
	OutputMixGain     int16                   `json:"output_mix_gain,omitzero" yaml:"output_mix_gain,omitzero"`
	SoundSystem       uint8                   `json:"sound_system,omitzero" yaml:"sound_system,omitzero"`
}

// ParameterBlockMetadata mirrors the `parameter_block_metadata[*]` rows of
// spec.md §6: a parameter block that may or may not have a matching
// parameter definition registered elsewhere. A block whose ParameterID
// never appears among the codec/audio-element-declared definitions is
// "stray" (spec.md §4.3 Open Question; see DESIGN.md).
type ParameterBlockMetadata struct {
	ParameterID    uint64 `json:"parameter_id" yaml:"parameter_id"`
	StartTimestamp uint64 `json:"start_timestamp" yaml:"start_timestamp"`
	DmixPMode      uint8  `json:"dmixp_mode,omitzero" yaml:"dmixp_mode,omitzero"`
	MixGain        int16  `json:"mix_gain,omitzero" yaml:"mix_gain,omitzero"`
}

// ArbitraryObuMetadata mirrors spec.md §6's "Arbitrary OBU entries with
// insertion_hook": raw bytes injected at a named point in the sequencer's
// emission order.
type ArbitraryObuMetadata struct {
	ObuType       uint8  `json:"obu_type" yaml:"obu_type"`
	InsertionHook string `json:"insertion_hook" yaml:"insertion_hook"` // e.g. "BeforeDescriptors", "AfterAudioFrame"
	PayloadHex    string `json:"payload_hex,omitzero" yaml:"payload_hex,omitzero"`
}

// UserMetadata is the top-level decoded configuration: one YAML document
// drives one encode (spec.md §6).
type UserMetadata struct {
	LebGenerator       LebGeneratorConfig        `json:"leb_generator,omitzero" yaml:"leb_generator,omitzero"`
	CodecConfigs       []CodecConfigMetadata      `json:"codec_config,omitzero" yaml:"codec_config,omitzero"`
	AudioElements      []AudioElementMetadata     `json:"audio_element_metadata,omitzero" yaml:"audio_element_metadata,omitzero"`
	MixPresentations   []MixPresentationMetadata  `json:"mix_presentation_metadata,omitzero" yaml:"mix_presentation_metadata,omitzero"`
	ParameterBlocks    []ParameterBlockMetadata    `json:"parameter_block_metadata,omitzero" yaml:"parameter_block_metadata,omitzero"`
	ArbitraryObus      []ArbitraryObuMetadata      `json:"arbitrary_obu_metadata,omitzero" yaml:"arbitrary_obu_metadata,omitzero"`
}

// Decode parses data as a YAML-encoded UserMetadata document and validates
// the fields that can be checked in isolation, before any cross-reference
// against codec configs or audio elements is possible (those checks belong
// to the consuming package: timing.Module.Initialize, parameters.Manager).
func Decode(data []byte) (*UserMetadata, error) {
	var m UserMetadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode user metadata: %w", err)
	}
	if err := m.LebGenerator.validate(); err != nil {
		return nil, err
	}
	seenCodecConfig := make(map[uint64]bool, len(m.CodecConfigs))
	for _, c := range m.CodecConfigs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if seenCodecConfig[c.CodecConfigID] {
			return nil, ierrors.InvalidArgument("duplicate codec_config_id %d", c.CodecConfigID)
		}
		seenCodecConfig[c.CodecConfigID] = true
	}
	for _, a := range m.AudioElements {
		if len(a.ChannelLabels) != 0 && len(a.SubstreamIDs) == 0 {
			return nil, ierrors.InvalidArgument("audio element %d declares channel_labels but no substream_ids", a.AudioElementID)
		}
		if !seenCodecConfig[a.CodecConfigID] {
			return nil, ierrors.InvalidArgument("audio element %d references unknown codec_config_id %d", a.AudioElementID, a.CodecConfigID)
		}
	}
	return &m, nil
}
