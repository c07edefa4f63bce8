package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// AudioElementType discriminates the three kinds of audio_element_type.
type AudioElementType uint8

const (
	AudioElementTypeChannelBased AudioElementType = 0
	AudioElementTypeSceneBased   AudioElementType = 1
	// 2-5 are reserved for future extension.
)

// ParamDefinitionType tags the variant carried by an AudioElementParam.
type ParamDefinitionType uint8

const (
	ParamDefinitionTypeMixGain    ParamDefinitionType = 0
	ParamDefinitionTypeDemixing   ParamDefinitionType = 1
	ParamDefinitionTypeReconGain  ParamDefinitionType = 2
	ParamDefinitionTypeReserved3  ParamDefinitionType = 3
)

// AudioElementParam pairs a param_definition_type tag with the
// ParameterDefinition it governs. The audio element payload carries the tag
// followed by the definition's own fields, written inline per spec.md §3.
type AudioElementParam struct {
	Type       ParamDefinitionType
	Definition *ParameterDefinition
}

// ChannelAudioLayer enumerates the loudspeaker layouts a
// ChannelAudioLayerConfig may describe.
type ChannelAudioLayer uint8

const (
	ChannelAudioLayerMono           ChannelAudioLayer = 0
	ChannelAudioLayerStereo         ChannelAudioLayer = 1
	ChannelAudioLayer5_1            ChannelAudioLayer = 2
	ChannelAudioLayer5_1_2          ChannelAudioLayer = 3
	ChannelAudioLayer5_1_4          ChannelAudioLayer = 4
	ChannelAudioLayer7_1            ChannelAudioLayer = 5
	ChannelAudioLayer7_1_2          ChannelAudioLayer = 6
	ChannelAudioLayer7_1_4          ChannelAudioLayer = 7
	ChannelAudioLayer3_1_2          ChannelAudioLayer = 8
	ChannelAudioLayerBinaural       ChannelAudioLayer = 9
	ChannelAudioLayerReservedStart  ChannelAudioLayer = 10
)

// ChannelAudioLayerConfig is one entry of a ScalableChannelLayoutConfig.
type ChannelAudioLayerConfig struct {
	Layer            ChannelAudioLayer
	NumSubstreams    uint8
	CoupledSubstreams uint8
	OutputGainFlag   bool
	OutputGain       int16
}

func (l *ChannelAudioLayerConfig) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(l.Layer), 4); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 4); err != nil { // reserved
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(l.NumSubstreams), 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(l.CoupledSubstreams), 8); err != nil {
		return err
	}
	gainFlag := uint64(0)
	if l.OutputGainFlag {
		gainFlag = 1
	}
	if err := wb.WriteUnsignedLiteral(gainFlag, 1); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 7); err != nil { // reserved
		return err
	}
	if l.OutputGainFlag {
		return wb.WriteSigned16(l.OutputGain)
	}
	return nil
}

// AudioElementConfig is implemented by the three audio-element layout
// variants.
type AudioElementConfig interface {
	writeTo(wb *bitbuffer.WriteBuffer) error
	print(w io.Writer)
}

// ScalableChannelLayoutConfig is the channel-based config: 1-6 layers of
// increasing speaker-layout richness, each additive over the previous.
type ScalableChannelLayoutConfig struct {
	Layers []ChannelAudioLayerConfig
}

func (c *ScalableChannelLayoutConfig) validate() error {
	if len(c.Layers) < 1 || len(c.Layers) > 6 {
		return ierrors.InvalidArgument("scalable channel layout must have 1-6 layers, got %d", len(c.Layers))
	}
	hasBinaural := false
	for _, l := range c.Layers {
		if l.Layer == ChannelAudioLayerBinaural {
			hasBinaural = true
		}
	}
	if hasBinaural && len(c.Layers) != 1 {
		return ierrors.InvalidArgument("binaural layout requires exactly one layer, got %d", len(c.Layers))
	}
	return nil
}

func (c *ScalableChannelLayoutConfig) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(len(c.Layers)), 3); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 5); err != nil { // reserved
		return err
	}
	for i := range c.Layers {
		if err := c.Layers[i].writeTo(wb); err != nil {
			return err
		}
	}
	return nil
}

func (c *ScalableChannelLayoutConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  scalable_channel_layout_config:\n")
	for i, l := range c.Layers {
		fmt.Fprintf(w, "    layer[%d]: loudspeaker_layout=%d num_substreams=%d coupled_substreams=%d\n",
			i, l.Layer, l.NumSubstreams, l.CoupledSubstreams)
	}
}

// AmbisonicsMonoConfig maps ambisonics channel numbers directly onto
// substreams, one ACN per substream.
type AmbisonicsMonoConfig struct {
	OutputChannelCount  uint8
	SubstreamCount      uint8
	ChannelMapping      []uint8 // len == OutputChannelCount, values index substreams (or 0xff for "unused")
}

const ambisonicsMonoUnusedChannel = 0xff

func isValidAcnCount(n int) bool {
	for order := 0; order <= 14; order++ {
		if (order+1)*(order+1) == n {
			return true
		}
	}
	return false
}

func (c *AmbisonicsMonoConfig) validate() error {
	if !isValidAcnCount(int(c.OutputChannelCount)) {
		return ierrors.InvalidArgument("ambisonics mono output_channel_count %d is not (n+1)^2 for n<=14", c.OutputChannelCount)
	}
	if len(c.ChannelMapping) != int(c.OutputChannelCount) {
		return ierrors.InvalidArgument("ambisonics mono channel_mapping has %d entries, want %d", len(c.ChannelMapping), c.OutputChannelCount)
	}
	used := make([]bool, c.SubstreamCount)
	for _, idx := range c.ChannelMapping {
		if idx == ambisonicsMonoUnusedChannel {
			continue
		}
		if int(idx) >= int(c.SubstreamCount) {
			return ierrors.InvalidArgument("ambisonics mono channel_mapping index %d out of range for substream_count %d", idx, c.SubstreamCount)
		}
		used[idx] = true
	}
	for i, u := range used {
		if !u {
			return ierrors.InvalidArgument("ambisonics mono substream %d is never referenced by channel_mapping", i)
		}
	}
	return nil
}

func (c *AmbisonicsMonoConfig) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 2); err != nil { // ambisonics_mode = mono
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.OutputChannelCount), 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.SubstreamCount), 8); err != nil {
		return err
	}
	for _, idx := range c.ChannelMapping {
		if err := wb.WriteUnsignedLiteral(uint64(idx), 8); err != nil {
			return err
		}
	}
	return nil
}

func (c *AmbisonicsMonoConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  ambisonics_mono_config: output_channel_count=%d substream_count=%d mapping=%v\n",
		c.OutputChannelCount, c.SubstreamCount, c.ChannelMapping)
}

// AmbisonicsProjectionConfig carries a demixing matrix projecting
// substreams onto ambisonics channels, for encoders that mix down the
// full ACN set into fewer substreams.
type AmbisonicsProjectionConfig struct {
	OutputChannelCount uint8
	SubstreamCount     uint8
	CoupledSubstreamCount uint8
	DemixingMatrix     []int16 // len == OutputChannelCount * (SubstreamCount + CoupledSubstreamCount)
}

func (c *AmbisonicsProjectionConfig) validate() error {
	if !isValidAcnCount(int(c.OutputChannelCount)) {
		return ierrors.InvalidArgument("ambisonics projection output_channel_count %d is not (n+1)^2 for n<=14", c.OutputChannelCount)
	}
	want := int(c.OutputChannelCount) * (int(c.SubstreamCount) + int(c.CoupledSubstreamCount))
	if len(c.DemixingMatrix) != want {
		return ierrors.InvalidArgument("ambisonics projection demixing_matrix has %d entries, want %d", len(c.DemixingMatrix), want)
	}
	if int(c.SubstreamCount)+int(c.CoupledSubstreamCount) > int(c.OutputChannelCount) {
		return ierrors.InvalidArgument("ambisonics projection substream_count+coupled_substream_count (%d) exceeds output_channel_count (%d)",
			int(c.SubstreamCount)+int(c.CoupledSubstreamCount), c.OutputChannelCount)
	}
	return nil
}

func (c *AmbisonicsProjectionConfig) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(1, 2); err != nil { // ambisonics_mode = projection
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.OutputChannelCount), 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.SubstreamCount), 8); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(c.CoupledSubstreamCount), 8); err != nil {
		return err
	}
	for _, v := range c.DemixingMatrix {
		if err := wb.WriteSigned16(v); err != nil {
			return err
		}
	}
	return nil
}

func (c *AmbisonicsProjectionConfig) print(w io.Writer) {
	fmt.Fprintf(w, "  ambisonics_projection_config: output_channel_count=%d substream_count=%d coupled_substream_count=%d\n",
		c.OutputChannelCount, c.SubstreamCount, c.CoupledSubstreamCount)
}

// AudioElement is the "Audio Element" OBU payload (spec.md §3, §4.2).
type AudioElement struct {
	ID            uint64
	Type          AudioElementType
	CodecConfigID uint64
	SubstreamIDs  []uint64
	Params        []AudioElementParam
	Config        AudioElementConfig
}

func (a *AudioElement) countDemixingParams() int {
	n := 0
	for _, p := range a.Params {
		if p.Type == ParamDefinitionTypeDemixing {
			n++
		}
	}
	return n
}

// ValidateAndWritePayload writes audio_element_id, audio_element_type,
// codec_config_id, substream ids, parameter definitions, and the
// type-specific config block.
func (a *AudioElement) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	if len(a.SubstreamIDs) == 0 {
		return ierrors.InvalidArgument("audio element %d has no substreams", a.ID)
	}
	if a.countDemixingParams() > 1 {
		return ierrors.InvalidArgument("audio element %d has %d demixing parameter definitions, at most 1 is allowed", a.ID, a.countDemixingParams())
	}
	if a.Config == nil {
		return ierrors.InvalidArgument("audio element %d has no config", a.ID)
	}
	switch a.Type {
	case AudioElementTypeChannelBased:
		scalable, ok := a.Config.(*ScalableChannelLayoutConfig)
		if !ok {
			return ierrors.InvalidArgument("audio element %d is channel-based but config is %T", a.ID, a.Config)
		}
		sum := 0
		for _, l := range scalable.Layers {
			sum += int(l.NumSubstreams)
		}
		if sum != len(a.SubstreamIDs) {
			return ierrors.InvalidArgument("audio element %d layers declare %d substreams, but it lists %d substream ids", a.ID, sum, len(a.SubstreamIDs))
		}
	case AudioElementTypeSceneBased:
		switch a.Config.(type) {
		case *AmbisonicsMonoConfig, *AmbisonicsProjectionConfig:
		default:
			return ierrors.InvalidArgument("audio element %d is scene-based but config is %T", a.ID, a.Config)
		}
	default:
		return ierrors.InvalidArgument("audio element %d has unsupported audio_element_type %d", a.ID, a.Type)
	}

	if err := wb.WriteUleb128(a.ID); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(a.Type), 5); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 3); err != nil { // reserved
		return err
	}
	if err := wb.WriteUleb128(a.CodecConfigID); err != nil {
		return err
	}
	if err := wb.WriteUleb128(uint64(len(a.SubstreamIDs))); err != nil {
		return err
	}
	for _, id := range a.SubstreamIDs {
		if err := wb.WriteUleb128(id); err != nil {
			return err
		}
	}
	if err := wb.WriteUleb128(uint64(len(a.Params))); err != nil {
		return err
	}
	for _, p := range a.Params {
		if err := wb.WriteUnsignedLiteral(uint64(p.Type), 8); err != nil {
			return err
		}
		if p.Definition != nil {
			if err := p.Definition.writeTo(wb, p.Type); err != nil {
				return err
			}
		}
	}
	return a.Config.writeTo(wb)
}

func (a *AudioElement) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("audio element decode is out of scope")
}

func (a *AudioElement) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Audio Element OBU:\n")
	fmt.Fprintf(w, "  audio_element_id= %d\n", a.ID)
	fmt.Fprintf(w, "  audio_element_type= %d\n", a.Type)
	fmt.Fprintf(w, "  codec_config_id= %d\n", a.CodecConfigID)
	fmt.Fprintf(w, "  substream_ids= %v\n", a.SubstreamIDs)
	if a.Config != nil {
		a.Config.print(w)
	}
}
