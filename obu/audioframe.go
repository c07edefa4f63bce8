package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// AudioFrame is the payload common to the generic TypeAudioFrame OBU and
// the 18 dedicated TypeAudioFrameIDn OBUs. SubstreamID only rides on the
// wire explicitly when the generic type is used; grounded on
// original_source/iamf/obu/audio_frame.cc's GetObuType/ValidateAndWritePayload
// split.
type AudioFrame struct {
	SubstreamID uint64
	AudioData   []byte
}

// ObuType returns the obu_type this frame should be written under: one of
// the 18 implicit-id tags when the substream id is small enough, otherwise
// the generic TypeAudioFrame.
func (a *AudioFrame) ObuType() Type {
	return AudioFrameObuType(a.SubstreamID)
}

// ValidateAndWritePayload writes an explicit ULEB128 substream_id only when
// the frame must use the generic obu_type (substream id > 17); the 18
// dedicated types fold the id into the header byte and carry none here.
func (a *AudioFrame) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	if len(a.AudioData) == 0 {
		return ierrors.InvalidArgument("audio frame for substream %d has no audio_data", a.SubstreamID)
	}
	if a.ObuType() == TypeAudioFrame {
		if err := wb.WriteUleb128(a.SubstreamID); err != nil {
			return err
		}
	}
	return wb.WriteUint8Slice(a.AudioData)
}

func (a *AudioFrame) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("audio frame decode is out of scope")
}

func (a *AudioFrame) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Audio Frame OBU:\n")
	fmt.Fprintf(w, "  substream_id= %d audio_data_len= %d\n", a.SubstreamID, len(a.AudioData))
}

// Header returns the obu_header this frame should be written with,
// including trimming-related flags. hasTrim sets trimming_status; the
// caller fills the returned Header's NumSamplesToTrimAtStart/AtEnd with the
// sample counts to discard. Per spec.md §4.6 trimming applies only to audio
// frame OBUs.
func (a *AudioFrame) Header(redundantCopy, hasTrim bool) Header {
	return Header{
		Type:           a.ObuType(),
		RedundantCopy:  redundantCopy,
		TrimmingStatus: hasTrim,
	}
}
