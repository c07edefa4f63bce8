// The iamf-tools wav package reads RIFF/WAVE PCM files the way the core's
// external sample provider needs them: integer PCM, little-endian,
// mono/stereo/5.1/7.1, each channel left-justified into the high bits of an
// int32 (spec.md §6 "File input").
//
// Grounded on the teacher's flv.Demuxer: sequential, fixed-size chunk-header
// reads via io.CopyN into a scratch buffer, then direct byte-offset field
// extraction, applied here to RIFF chunk headers instead of FLV tag headers.
package wav

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

const (
	audioFormatPCM = 1

	riffHeaderSize  = 12 // "RIFF" + size(4) + "WAVE"
	chunkHeaderSize = 8  // chunk id(4) + chunk size(4)
	fmtChunkSize    = 16 // the common (non-extensible) fmt chunk body
)

// File is a fully decoded RIFF/WAVE PCM file: SampleRate and BitsPerSample
// as declared by the fmt chunk, and one []int32 slice per source channel,
// each sample left-justified into the high BitsPerSample bits of the int32.
type File struct {
	SampleRate    uint32
	BitsPerSample uint16
	NumChannels   uint16
	channels      [][]int32
}

// Read consumes r as a complete RIFF/WAVE file: the RIFF/WAVE header, the
// fmt chunk (read before data is required), and the data chunk. Chunks other
// than fmt/data are skipped by their declared size, so metadata chunks like
// LIST or fact do not confuse the reader.
func Read(r io.Reader) (*File, error) {
	if err := readRiffHeader(r); err != nil {
		return nil, err
	}

	f := &File{}
	var haveFmt, haveData bool
	for !haveData {
		id, size, err := readChunkHeader(r)
		if err != nil {
			return nil, err
		}
		switch id {
		case "fmt ":
			if err := f.readFmtChunk(r, size); err != nil {
				return nil, err
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, ierrors.InvalidArgument("wav data chunk appeared before fmt chunk")
			}
			if err := f.readDataChunk(r, size); err != nil {
				return nil, err
			}
			haveData = true
		default:
			if err := skipChunk(r, size); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func readRiffHeader(r io.Reader) error {
	h := &bytes.Buffer{}
	if _, err := io.CopyN(h, r, riffHeaderSize); err != nil {
		return err
	}
	p := h.Bytes()
	if string(p[0:4]) != "RIFF" {
		return ierrors.InvalidArgument("wav file does not begin with a RIFF signature")
	}
	if string(p[8:12]) != "WAVE" {
		return ierrors.InvalidArgument("wav file RIFF form type is not WAVE")
	}
	return nil
}

func readChunkHeader(r io.Reader) (id string, size uint32, err error) {
	h := &bytes.Buffer{}
	if _, err = io.CopyN(h, r, chunkHeaderSize); err != nil {
		return "", 0, err
	}
	p := h.Bytes()
	id = string(p[0:4])
	size = binary.LittleEndian.Uint32(p[4:8])
	return id, size, nil
}

func skipChunk(r io.Reader, size uint32) error {
	_, err := io.CopyN(io.Discard, r, int64(paddedChunkSize(size)))
	return err
}

// paddedChunkSize accounts for the RIFF rule that every chunk body is padded
// to an even number of bytes.
func paddedChunkSize(size uint32) uint32 {
	if size%2 == 1 {
		return size + 1
	}
	return size
}

func (f *File) readFmtChunk(r io.Reader, size uint32) error {
	if size < fmtChunkSize {
		return ierrors.InvalidArgument("wav fmt chunk is %d bytes, want at least %d", size, fmtChunkSize)
	}
	h := &bytes.Buffer{}
	if _, err := io.CopyN(h, r, int64(paddedChunkSize(size))); err != nil {
		return err
	}
	p := h.Bytes()

	audioFormat := binary.LittleEndian.Uint16(p[0:2])
	if audioFormat != audioFormatPCM {
		return ierrors.InvalidArgument("wav audio_format %d is not PCM (1); WAVE_FORMAT_EXTENSIBLE and compressed formats are not supported", audioFormat)
	}
	f.NumChannels = binary.LittleEndian.Uint16(p[2:4])
	f.SampleRate = binary.LittleEndian.Uint32(p[4:8])
	f.BitsPerSample = binary.LittleEndian.Uint16(p[14:16])
	if f.NumChannels == 0 {
		return ierrors.InvalidArgument("wav fmt chunk declares num_channels == 0")
	}
	switch f.BitsPerSample {
	case 16, 24, 32:
	default:
		return ierrors.InvalidArgument("wav bits_per_sample %d not in {16,24,32}", f.BitsPerSample)
	}
	return nil
}

func (f *File) readDataChunk(r io.Reader, size uint32) error {
	bytesPerSample := int(f.BitsPerSample) / 8
	frameSize := bytesPerSample * int(f.NumChannels)
	if frameSize == 0 || int(size)%frameSize != 0 {
		return ierrors.InvalidArgument("wav data chunk size %d is not a multiple of the frame size %d", size, frameSize)
	}
	numFrames := int(size) / frameSize

	h := &bytes.Buffer{}
	if _, err := io.CopyN(h, r, int64(paddedChunkSize(size))); err != nil {
		return err
	}
	p := h.Bytes()

	f.channels = make([][]int32, f.NumChannels)
	for ch := range f.channels {
		f.channels[ch] = make([]int32, numFrames)
	}
	for frame := 0; frame < numFrames; frame++ {
		for ch := 0; ch < int(f.NumChannels); ch++ {
			offset := frame*frameSize + ch*bytesPerSample
			f.channels[ch][frame] = leftJustifiedSample(p[offset:offset+bytesPerSample], int(f.BitsPerSample))
		}
	}
	return nil
}

// leftJustifiedSample decodes a little-endian signed PCM sample of
// bitsPerSample width and shifts it up into the high bitsPerSample bits of
// an int32, matching the sign-extension-then-shift convention every
// downstream codec adapter expects (spec.md §6, codec.leftJustify).
func leftJustifiedSample(raw []byte, bitsPerSample int) int32 {
	var v int32
	switch bitsPerSample {
	case 16:
		v = int32(int16(binary.LittleEndian.Uint16(raw)))
	case 24:
		u := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16
		if u&0x800000 != 0 {
			u |= 0xff000000 // sign-extend
		}
		v = int32(u)
	case 32:
		v = int32(binary.LittleEndian.Uint32(raw))
	}
	return v << uint(32-bitsPerSample)
}

// LabeledSamples resolves each entry of channelIDs (indices into the WAV
// file's source channels) against the parallel channelLabels list, returning
// a map from channel label to that channel's left-justified samples. The two
// slices must be the same length (spec.md §6 "channel_labels").
func (f *File) LabeledSamples(channelIDs []int, channelLabels []string) (map[string][]int32, error) {
	if len(channelIDs) != len(channelLabels) {
		return nil, ierrors.InvalidArgument("wav file has %d channel_ids but %d channel_labels", len(channelIDs), len(channelLabels))
	}
	out := make(map[string][]int32, len(channelIDs))
	for i, id := range channelIDs {
		if id < 0 || id >= len(f.channels) {
			return nil, ierrors.InvalidArgument("wav channel_id %d is out of range for a %d-channel file", id, len(f.channels))
		}
		out[channelLabels[i]] = f.channels[id]
	}
	return out, nil
}
