// The iamf-tools obu package implements every OBU defined by the IAMF
// bitstream: per-type validation, payload serialization, and (where the
// core needs it) payload deserialization.
//
// Grounded on the tagged-variant dispatch style of the teacher's amf0
// package (a marker byte selects the concrete Go type) and on the exact
// field layouts in original_source/iamf/obu/*.cc.
package obu

import "strconv"

// Type is the 5-bit obu_type field packed into every OBU header.
// Refer to @doc AOMediaCodec/iamf, @section OBU syntax: 25 defined values.
type Type uint8

const (
	TypeCodecConfig      Type = 0
	TypeAudioElement     Type = 1
	TypeMixPresentation  Type = 2
	TypeParameterBlock   Type = 3
	TypeTemporalDelimiter Type = 4
	TypeAudioFrame       Type = 5
	// TypeAudioFrameID0..TypeAudioFrameID17 implicitly encode substream ids
	// 0..17 without an explicit id field in the payload.
	TypeAudioFrameID0  Type = 6
	TypeAudioFrameID1  Type = 7
	TypeAudioFrameID2  Type = 8
	TypeAudioFrameID3  Type = 9
	TypeAudioFrameID4  Type = 10
	TypeAudioFrameID5  Type = 11
	TypeAudioFrameID6  Type = 12
	TypeAudioFrameID7  Type = 13
	TypeAudioFrameID8  Type = 14
	TypeAudioFrameID9  Type = 15
	TypeAudioFrameID10 Type = 16
	TypeAudioFrameID11 Type = 17
	TypeAudioFrameID12 Type = 18
	TypeAudioFrameID13 Type = 19
	TypeAudioFrameID14 Type = 20
	TypeAudioFrameID15 Type = 21
	TypeAudioFrameID16 Type = 22
	TypeAudioFrameID17 Type = 23
	// 24-30 are reserved.
	TypeSequenceHeader Type = 31
)

func (t Type) String() string {
	switch {
	case t == TypeCodecConfig:
		return "CodecConfig"
	case t == TypeAudioElement:
		return "AudioElement"
	case t == TypeMixPresentation:
		return "MixPresentation"
	case t == TypeParameterBlock:
		return "ParameterBlock"
	case t == TypeTemporalDelimiter:
		return "TemporalDelimiter"
	case t == TypeAudioFrame:
		return "AudioFrame"
	case t >= TypeAudioFrameID0 && t <= TypeAudioFrameID17:
		return "AudioFrameID" + strconv.Itoa(int(t-TypeAudioFrameID0))
	case t == TypeSequenceHeader:
		return "SequenceHeader"
	case t >= 24 && t <= 30:
		return "Reserved"
	default:
		return "Unknown"
	}
}

// MaxImplicitAudioFrameSubstreamID is the highest substream id that can be
// encoded implicitly via TypeAudioFrameID0..TypeAudioFrameID17.
const MaxImplicitAudioFrameSubstreamID = 17

// AudioFrameObuType returns the obu_type that should carry a frame for
// substreamID: one of the 18 dedicated tags when the id is small enough,
// otherwise the generic TypeAudioFrame with an explicit id field.
// Grounded on original_source/iamf/obu/audio_frame.cc's GetObuType.
func AudioFrameObuType(substreamID uint64) Type {
	if substreamID > MaxImplicitAudioFrameSubstreamID {
		return TypeAudioFrame
	}
	return Type(uint8(TypeAudioFrameID0) + uint8(substreamID))
}

// SubstreamIDFromAudioFrameObuType returns the substream id implied by an
// audio-frame obu_type in [TypeAudioFrameID0, TypeAudioFrameID17], and
// whether the type carries an implicit id at all.
func SubstreamIDFromAudioFrameObuType(t Type) (uint64, bool) {
	if t >= TypeAudioFrameID0 && t <= TypeAudioFrameID17 {
		return uint64(t - TypeAudioFrameID0), true
	}
	return 0, false
}
