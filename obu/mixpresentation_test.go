package obu

import (
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
)

func mixGainDef(id uint64) *ParameterDefinition {
	return &ParameterDefinition{
		ParameterID:             id,
		ParameterRate:           48000,
		ParamDefinitionMode:     false,
		NumSubblocks:            1,
		ConstantSubblockDuration: 1024,
		MixGainDefault:          &MixGainDefault{DefaultMixGain: 0},
	}
}

func TestMixPresentationWritePayload(t *testing.T) {
	mp := &MixPresentation{
		ID:         0,
		CountLabel: 1,
		Annotations: []LocalizedString{{LanguageTag: "en-us", Label: "Main"}},
		SubMixes: []SubMix{
			{
				AudioElements: []SubMixAudioElement{
					{AudioElementID: 0, MixGain: ElementMixGain{Definition: mixGainDef(1)}},
				},
				OutputMixGain: mixGainDef(2),
				Layouts: []MixedPresentationLayout{
					{
						Layout:   PlaybackLayout{LayoutType: 0, SoundSystem: 0},
						Loudness: LoudnessInfo{InfoType: 0, IntegratedLoudness: -1600, DigitalPeak: -100},
					},
				},
			},
		},
	}
	wb := bitbuffer.NewWriteBuffer(64, leb128.NewMinimumGenerator())
	if err := mp.ValidateAndWritePayload(wb); err != nil {
		t.Fatalf("ValidateAndWritePayload err %v", err)
	}
}

func TestMixPresentationRejectsNoSubMixes(t *testing.T) {
	mp := &MixPresentation{ID: 0}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := mp.ValidateAndWritePayload(wb); err == nil {
		t.Errorf("expected error for mix presentation with no sub-mixes")
	}
}

func TestSubMixRejectsNoOutputMixGain(t *testing.T) {
	s := &SubMix{
		AudioElements: []SubMixAudioElement{
			{AudioElementID: 0, MixGain: ElementMixGain{Definition: mixGainDef(1)}},
		},
		Layouts: []MixedPresentationLayout{
			{Layout: PlaybackLayout{LayoutType: 0, SoundSystem: 0}},
		},
	}
	wb := bitbuffer.NewWriteBuffer(64, leb128.NewMinimumGenerator())
	if err := s.writeTo(wb); err == nil {
		t.Errorf("expected error for sub-mix with no output mix gain definition")
	}
}

func TestSubMixRejectsNoLayouts(t *testing.T) {
	s := &SubMix{
		AudioElements: []SubMixAudioElement{
			{AudioElementID: 0, MixGain: ElementMixGain{Definition: mixGainDef(1)}},
		},
		OutputMixGain: mixGainDef(2),
	}
	wb := bitbuffer.NewWriteBuffer(64, leb128.NewMinimumGenerator())
	if err := s.writeTo(wb); err == nil {
		t.Errorf("expected error for sub-mix declaring no playback layouts")
	}
}

func TestLoudnessInfoWritesOptionalFields(t *testing.T) {
	l := &LoudnessInfo{
		InfoType:           LoudnessInfoTruePeak | LoudnessInfoAnchoredLoudness,
		IntegratedLoudness:  -1000,
		DigitalPeak:         -50,
		TruePeak:            -10,
		AnchoredLoudness:    []AnchoredLoudnessElement{{AnchorElement: 1, AnchoredLoudness: -500}},
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := l.writeTo(wb); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}
