// The iamf-tools demix package resolves the ordered channel_labels an
// audio frame generator pulls from the PCM source against an audio
// element's declared ScalableChannelLayoutConfig, including trim handling
// for the head/tail of a stream.
//
// Supplements a feature present in original_source but only implicit in
// spec.md: original_source/iamf/cli/audio_element_renderer_passthrough.h
// rearranges channels into substream/channel slots without any render
// math, which spec.md's Non-goals exclude only for rendering, not for
// label resolution.
package demix

import (
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// channelCountForLayer is the number of loudspeaker-feed channels (not
// substreams) a ChannelAudioLayer carries, used only to size the declared
// channel_labels list for validation; it is not rendering math.
var channelCountForLayer = map[obu.ChannelAudioLayer]int{
	obu.ChannelAudioLayerMono:     1,
	obu.ChannelAudioLayerStereo:   2,
	obu.ChannelAudioLayer5_1:      6,
	obu.ChannelAudioLayer5_1_2:    8,
	obu.ChannelAudioLayer5_1_4:    10,
	obu.ChannelAudioLayer7_1:      8,
	obu.ChannelAudioLayer7_1_2:    10,
	obu.ChannelAudioLayer7_1_4:    12,
	obu.ChannelAudioLayer3_1_2:    6,
	obu.ChannelAudioLayerBinaural: 2,
}

// LayerLabels pairs one ChannelAudioLayerConfig with the ordered channel
// labels the sample provider must pull from the PCM source to feed it.
type LayerLabels struct {
	Layer  obu.ChannelAudioLayerConfig
	Labels []string
}

// Trim describes the number of decoded samples to discard from the head
// or tail of a stream, carried per audio frame metadata entry (spec.md §3
// "Audio Frame", §6 "samples_to_trim_at_start/end").
type Trim struct {
	AtStart uint32
	AtEnd   uint32
}

// ResolveLabels partitions declared, an ordered flat list of channel
// labels pulled from the PCM source, across config's layers in order,
// consuming channelCountForLayer(layer) labels per layer.
func ResolveLabels(config obu.ScalableChannelLayoutConfig, declared []string) ([]LayerLabels, error) {
	var out []LayerLabels
	offset := 0
	for i, layer := range config.Layers {
		n, ok := channelCountForLayer[layer.Layer]
		if !ok {
			return nil, ierrors.InvalidArgument("layer %d has unresolvable loudspeaker_layout %d", i, layer.Layer)
		}
		if offset+n > len(declared) {
			return nil, ierrors.InvalidArgument(
				"layer %d needs %d channel_labels starting at offset %d, only %d declared", i, n, offset, len(declared))
		}
		out = append(out, LayerLabels{
			Layer:  layer,
			Labels: declared[offset : offset+n],
		})
		offset += n
	}
	if offset != len(declared) {
		return nil, ierrors.InvalidArgument("declared channel_labels has %d entries, layers consume %d", len(declared), offset)
	}
	return out, nil
}

// ValidateTrim checks a Trim against a frame of frameLength samples,
// failing InvalidArgument if the requested trim exceeds the frame bounds
// (spec.md §7 "trim beyond frame bounds").
func ValidateTrim(t Trim, frameLength uint32) error {
	if uint64(t.AtStart)+uint64(t.AtEnd) > uint64(frameLength) {
		return ierrors.InvalidArgument("trim (start=%d, end=%d) exceeds frame length %d", t.AtStart, t.AtEnd, frameLength)
	}
	return nil
}
