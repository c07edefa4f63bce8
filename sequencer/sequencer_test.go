package sequencer

import (
	"bytes"
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/codec"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

func minimalCodecConfig() obu.CodecConfig {
	return obu.CodecConfig{
		ID:                 0,
		NumSamplesPerFrame: 1024,
		AudioRollDistance:  0,
		DecoderConfig: &obu.LpcmDecoderConfig{
			SampleSize: obu.LpcmSampleSize16,
			SampleRate: 48000,
		},
	}
}

func minimalAudioElement() obu.AudioElement {
	return obu.AudioElement{
		ID:            0,
		Type:          obu.AudioElementTypeChannelBased,
		CodecConfigID: 0,
		SubstreamIDs:  []uint64{0},
		Config: &obu.ScalableChannelLayoutConfig{
			Layers: []obu.ChannelAudioLayerConfig{
				{Layer: obu.ChannelAudioLayerStereo, NumSubstreams: 1, CoupledSubstreams: 1},
			},
		},
	}
}

func minimalMixPresentation() obu.MixPresentation {
	mixGain := &obu.ParameterDefinition{
		ParameterID: 100, ParameterRate: 48000, ParamDefinitionMode: true,
		MixGainDefault: &obu.MixGainDefault{DefaultMixGain: 0},
	}
	return obu.MixPresentation{
		ID: 0,
		SubMixes: []obu.SubMix{
			{
				AudioElements: []obu.SubMixAudioElement{
					{AudioElementID: 0, MixGain: obu.ElementMixGain{Definition: mixGain}},
				},
				OutputMixGain: mixGain,
				Layouts: []obu.MixedPresentationLayout{
					{Layout: obu.PlaybackLayout{LayoutType: 0, SoundSystem: 0}},
				},
			},
		},
	}
}

func TestWriteDescriptorsProducesOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	err := s.WriteDescriptors(
		obu.IASequenceHeader{PrimaryProfile: obu.ProfileSimple},
		[]obu.CodecConfig{minimalCodecConfig()},
		[]obu.AudioElement{minimalAudioElement()},
		[]obu.MixPresentation{minimalMixPresentation()},
		nil,
	)
	if err != nil {
		t.Fatalf("WriteDescriptors: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty descriptor bytes")
	}

	// First byte: obu_type=SequenceHeader(31)<<3, no flags set.
	want := byte(obu.TypeSequenceHeader) << 3
	if got := buf.Bytes()[0]; got != want {
		t.Fatalf("first OBU header byte = %#x, want %#x", got, want)
	}
}

func TestWriteDescriptorsFailsOnInvalidMixPresentation(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	badMix := obu.MixPresentation{ID: 1} // no sub-mixes
	err := s.WriteDescriptors(
		obu.IASequenceHeader{},
		[]obu.CodecConfig{minimalCodecConfig()},
		[]obu.AudioElement{minimalAudioElement()},
		[]obu.MixPresentation{badMix},
		nil,
	)
	if err == nil {
		t.Fatal("expected error for mix presentation with no sub-mixes")
	}
	if buf.Len() != 0 {
		t.Fatal("expected no bytes written when validation fails midway")
	}
}

func TestWriteDescriptorsInterleavesArbitraryHooks(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	arbitrary := []obu.ArbitraryObu{
		{ObuType: obu.TypeSequenceHeader, Payload: []byte{0xaa}, InsertionHook: obu.HookBeforeDescriptors},
	}
	err := s.WriteDescriptors(
		obu.IASequenceHeader{},
		[]obu.CodecConfig{minimalCodecConfig()},
		[]obu.AudioElement{minimalAudioElement()},
		[]obu.MixPresentation{minimalMixPresentation()},
		arbitrary,
	)
	if err != nil {
		t.Fatalf("WriteDescriptors: %v", err)
	}
	// The arbitrary OBU's payload byte (0xaa) must appear before the real
	// IA Sequence Header bytes ('i','a','m','f') in the output.
	idx := bytes.IndexByte(buf.Bytes(), 0xaa)
	seqIdx := bytes.Index(buf.Bytes(), []byte("iamf"))
	if idx == -1 || seqIdx == -1 || idx > seqIdx {
		t.Fatalf("expected arbitrary OBU bound to BeforeDescriptors ahead of the sequence header, arbitrary@%d seqheader@%d", idx, seqIdx)
	}
}

func TestWriteTemporalUnitOrdersFramesBySubstreamID(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	frames := []codec.AudioFrameWithData{
		{AudioFrame: obu.AudioFrame{SubstreamID: 2, AudioData: []byte{0xa2}}},
		{AudioFrame: obu.AudioFrame{SubstreamID: 0, AudioData: []byte{0xa0}}},
		{AudioFrame: obu.AudioFrame{SubstreamID: 1, AudioData: []byte{0xa1}}},
	}
	err := s.WriteTemporalUnit(0, true, nil, nil, frames, nil)
	if err != nil {
		t.Fatalf("WriteTemporalUnit: %v", err)
	}

	// Payload bytes 0xa0..0xa2 occur nowhere else in the output (header and
	// obu_size bytes here are 0x20, 0x00, 0x30, 0x38, 0x40, 0x01).
	idx0 := bytes.IndexByte(buf.Bytes(), 0xa0)
	idx1 := bytes.IndexByte(buf.Bytes(), 0xa1)
	idx2 := bytes.IndexByte(buf.Bytes(), 0xa2)
	if !(idx0 < idx1 && idx1 < idx2) {
		t.Fatalf("frames not emitted in ascending substream_id order: %d,%d,%d", idx0, idx1, idx2)
	}
}

func TestWriteTemporalUnitSkipsParameterBlocksForOtherTimestamps(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	defs := map[uint64]*obu.ParameterDefinition{
		5: {ParameterID: 5, ParameterRate: 48000, ParamDefinitionMode: true},
	}
	blocks := []obu.ParameterBlockWithData{
		{
			ParameterBlock: &obu.ParameterBlock{
				ParameterID: 5,
				Subblocks:   []obu.ParameterSubblock{&obu.MixGainParameterData{AnimationType: 0}},
			},
			StartTimestamp: 10, // does not match unitStart below
		},
	}
	if err := s.WriteTemporalUnit(0, false, defs, blocks, nil, nil); err != nil {
		t.Fatalf("WriteTemporalUnit: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("expected no bytes: parameter block's timestamp does not match this temporal unit")
	}
}

func TestWriteRedundantDescriptorsMarksRedundantCopy(t *testing.T) {
	var buf bytes.Buffer
	s := NewSequencer(&buf, leb128.NewMinimumGenerator())

	err := s.WriteRedundantDescriptors(
		obu.IASequenceHeader{},
		nil, nil, nil,
	)
	if err != nil {
		t.Fatalf("WriteRedundantDescriptors: %v", err)
	}
	// redundant_copy bit is bit position 2: obu_type<<3 | 1<<2.
	want := byte(obu.TypeSequenceHeader)<<3 | 1<<2
	if got := buf.Bytes()[0]; got != want {
		t.Fatalf("first OBU header byte = %#x, want %#x (redundant_copy set)", got, want)
	}
}
