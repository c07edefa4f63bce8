package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// LocalizedString pairs an RFC 5646 language tag with a UTF-8 annotation,
// the repeated unit behind mix_presentation_annotations and every
// element/layer-level annotation list.
type LocalizedString struct {
	LanguageTag string
	Label       string
}

func writeLocalizedStrings(wb *bitbuffer.WriteBuffer, strs []LocalizedString) error {
	if err := wb.WriteUleb128(uint64(len(strs))); err != nil {
		return err
	}
	for _, s := range strs {
		if err := wb.WriteString(s.LanguageTag); err != nil {
			return err
		}
	}
	for _, s := range strs {
		if err := wb.WriteString(s.Label); err != nil {
			return err
		}
	}
	return nil
}

// RenderingConfig carries per-element rendering hints within a sub-mix.
type RenderingConfig struct {
	HeadphonesRenderingMode uint8 // 0 stereo, 1 binaural
}

func (r RenderingConfig) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(r.HeadphonesRenderingMode), 2); err != nil {
		return err
	}
	return wb.WriteUnsignedLiteral(0, 6) // reserved
}

// ElementMixGain is the mix-gain parameter definition governing one
// sub-mix audio element's contribution.
type ElementMixGain struct {
	Definition *ParameterDefinition
}

// SubMixAudioElement references one audio element participating in a
// SubMix, alongside its rendering config and per-element mix gain.
type SubMixAudioElement struct {
	AudioElementID  uint64
	Annotations     []LocalizedString
	RenderingConfig RenderingConfig
	MixGain         ElementMixGain
}

func (e *SubMixAudioElement) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUleb128(e.AudioElementID); err != nil {
		return err
	}
	if err := writeLocalizedStrings(wb, e.Annotations); err != nil {
		return err
	}
	if err := e.RenderingConfig.writeTo(wb); err != nil {
		return err
	}
	if e.MixGain.Definition == nil {
		return ierrors.InvalidArgument("sub-mix audio element %d has no mix-gain definition", e.AudioElementID)
	}
	return e.MixGain.Definition.writeTo(wb, ParamDefinitionTypeMixGain)
}

// LoudnessInfoType flags which optional loudness fields LoudnessInfo
// carries, per the bitfield in info_type.
type LoudnessInfoType uint8

const (
	LoudnessInfoTruePeak        LoudnessInfoType = 1 << 0
	LoudnessInfoAnchoredLoudness LoudnessInfoType = 1 << 1
)

// AnchoredLoudnessElement is one (anchor_element, anchored_loudness) pair
// inside an AnchoredLoudness block.
type AnchoredLoudnessElement struct {
	AnchorElement   uint8
	AnchoredLoudness int16
}

// LoudnessInfo carries the measured loudness of one playback layout within
// a sub-mix. Measurement itself is out of the core's scope (spec.md §1);
// this type only frames values the caller supplies.
type LoudnessInfo struct {
	InfoType            LoudnessInfoType
	IntegratedLoudness   int16
	DigitalPeak          int16
	TruePeak             int16 // valid iff InfoType&LoudnessInfoTruePeak
	AnchoredLoudness     []AnchoredLoudnessElement
}

func (l *LoudnessInfo) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(l.InfoType), 8); err != nil {
		return err
	}
	if err := wb.WriteSigned16(l.IntegratedLoudness); err != nil {
		return err
	}
	if err := wb.WriteSigned16(l.DigitalPeak); err != nil {
		return err
	}
	if l.InfoType&LoudnessInfoTruePeak != 0 {
		if err := wb.WriteSigned16(l.TruePeak); err != nil {
			return err
		}
	}
	if l.InfoType&LoudnessInfoAnchoredLoudness != 0 {
		if err := wb.WriteUnsignedLiteral(uint64(len(l.AnchoredLoudness)), 8); err != nil {
			return err
		}
		for _, a := range l.AnchoredLoudness {
			if err := wb.WriteUnsignedLiteral(uint64(a.AnchorElement), 8); err != nil {
				return err
			}
			if err := wb.WriteSigned16(a.AnchoredLoudness); err != nil {
				return err
			}
		}
	}
	return nil
}

// SoundSystem enumerates the loudspeaker layouts a PlaybackLayout can
// declare when LayoutType is loudspeakers.
type SoundSystem uint8

// PlaybackLayout is the loudspeaker or binaural layout a LoudnessInfo was
// measured against.
type PlaybackLayout struct {
	LayoutType  uint8 // 0 loudspeakers, 1 binaural
	SoundSystem SoundSystem
}

func (p PlaybackLayout) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(p.LayoutType), 2); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 6); err != nil { // reserved
		return err
	}
	if p.LayoutType == 0 {
		if err := wb.WriteUnsignedLiteral(uint64(p.SoundSystem), 8); err != nil {
			return err
		}
	}
	return nil
}

// MixedPresentationLayout pairs a declared playback layout with the
// loudness measured for it.
type MixedPresentationLayout struct {
	Layout   PlaybackLayout
	Loudness LoudnessInfo
}

// SubMix is one of a mix presentation's down-mix recipes: a set of audio
// elements rendered together, an overall output mix gain, and the set of
// playback layouts it reports loudness for.
type SubMix struct {
	AudioElements  []SubMixAudioElement
	OutputMixGain  *ParameterDefinition
	Layouts        []MixedPresentationLayout
}

func (s *SubMix) writeTo(wb *bitbuffer.WriteBuffer) error {
	if len(s.AudioElements) == 0 {
		return ierrors.InvalidArgument("sub-mix has no audio elements")
	}
	if err := wb.WriteUleb128(uint64(len(s.AudioElements))); err != nil {
		return err
	}
	for i := range s.AudioElements {
		if err := s.AudioElements[i].writeTo(wb); err != nil {
			return err
		}
	}
	if s.OutputMixGain == nil {
		return ierrors.InvalidArgument("sub-mix has no output mix gain definition")
	}
	if err := s.OutputMixGain.writeTo(wb, ParamDefinitionTypeMixGain); err != nil {
		return err
	}
	if len(s.Layouts) == 0 {
		return ierrors.InvalidArgument("sub-mix declares no playback layouts")
	}
	if err := wb.WriteUleb128(uint64(len(s.Layouts))); err != nil {
		return err
	}
	for _, l := range s.Layouts {
		if err := l.Layout.writeTo(wb); err != nil {
			return err
		}
		if err := l.Loudness.writeTo(wb); err != nil {
			return err
		}
	}
	return nil
}

// MixPresentation is the "Mix Presentation" OBU payload (spec.md §3, §4.2):
// a recipe combining one or more audio elements for one or more playback
// layouts, carrying its own localized annotations and sub-mixes.
type MixPresentation struct {
	ID              uint64
	Annotations     []LocalizedString
	CountLabel      uint8 // number of languages the annotations cover
	SubMixes        []SubMix
}

func (m *MixPresentation) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	if len(m.SubMixes) == 0 {
		return ierrors.InvalidArgument("mix presentation %d has no sub-mixes", m.ID)
	}
	if err := wb.WriteUleb128(m.ID); err != nil {
		return err
	}
	if err := writeLocalizedStrings(wb, m.Annotations); err != nil {
		return err
	}
	if err := wb.WriteUleb128(uint64(len(m.SubMixes))); err != nil {
		return err
	}
	for i := range m.SubMixes {
		if err := m.SubMixes[i].writeTo(wb); err != nil {
			return err
		}
	}
	return nil
}

func (m *MixPresentation) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("mix presentation decode is out of scope")
}

func (m *MixPresentation) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Mix Presentation OBU:\n")
	fmt.Fprintf(w, "  mix_presentation_id= %d\n", m.ID)
	fmt.Fprintf(w, "  num_sub_mixes= %d\n", len(m.SubMixes))
	for i, s := range m.SubMixes {
		fmt.Fprintf(w, "  sub_mix[%d]: num_audio_elements= %d num_layouts= %d\n", i, len(s.AudioElements), len(s.Layouts))
	}
}
