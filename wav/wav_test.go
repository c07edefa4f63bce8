package wav

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildWav assembles a minimal PCM RIFF/WAVE file with the given sample
// rate, bit depth, interleaved samples (numFrames x numChannels), and an
// extra junk chunk before the data chunk to exercise chunk skipping.
func buildWav(t *testing.T, sampleRate uint32, bitsPerSample uint16, numChannels uint16, frames [][]int32) []byte {
	t.Helper()
	bytesPerSample := int(bitsPerSample) / 8
	dataSize := len(frames) * int(numChannels) * bytesPerSample

	var data bytes.Buffer
	for _, frame := range frames {
		for _, s := range frame {
			raw := s >> uint(32-bitsPerSample)
			switch bitsPerSample {
			case 16:
				binary.Write(&data, binary.LittleEndian, int16(raw))
			case 24:
				u := uint32(raw) & 0xffffff
				data.WriteByte(byte(u))
				data.WriteByte(byte(u >> 8))
				data.WriteByte(byte(u >> 16))
			case 32:
				binary.Write(&data, binary.LittleEndian, int32(raw))
			}
		}
	}

	var fmtChunk bytes.Buffer
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(audioFormatPCM))
	binary.Write(&fmtChunk, binary.LittleEndian, numChannels)
	binary.Write(&fmtChunk, binary.LittleEndian, sampleRate)
	byteRate := sampleRate * uint32(numChannels) * uint32(bytesPerSample)
	binary.Write(&fmtChunk, binary.LittleEndian, byteRate)
	blockAlign := numChannels * uint16(bytesPerSample)
	binary.Write(&fmtChunk, binary.LittleEndian, blockAlign)
	binary.Write(&fmtChunk, binary.LittleEndian, bitsPerSample)

	var junk bytes.Buffer
	junk.WriteString("LIST")
	binary.Write(&junk, binary.LittleEndian, uint32(4))
	junk.WriteString("junk")

	var out bytes.Buffer
	out.WriteString("RIFF")
	riffSize := uint32(4 + (8+fmtChunk.Len()) + junk.Len() + (8 + dataSize))
	binary.Write(&out, binary.LittleEndian, riffSize)
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(fmtChunk.Len()))
	out.Write(fmtChunk.Bytes())

	out.Write(junk.Bytes())

	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataSize))
	out.Write(data.Bytes())

	return out.Bytes()
}

func TestReadStereo16BitLeftJustifiesSamples(t *testing.T) {
	frames := [][]int32{
		{1 << 16, -1 << 16},
		{2 << 16, -2 << 16},
	}
	raw := buildWav(t, 48000, 16, 2, frames)

	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.SampleRate != 48000 || f.BitsPerSample != 16 || f.NumChannels != 2 {
		t.Fatalf("unexpected header: %+v", f)
	}

	labeled, err := f.LabeledSamples([]int{0, 1}, []string{"L2", "R2"})
	if err != nil {
		t.Fatalf("LabeledSamples: %v", err)
	}
	if got, want := labeled["L2"], []int32{1 << 16, 2 << 16}; !equalInt32(got, want) {
		t.Fatalf("L2 = %v, want %v", got, want)
	}
	if got, want := labeled["R2"], []int32{-1 << 16, -2 << 16}; !equalInt32(got, want) {
		t.Fatalf("R2 = %v, want %v", got, want)
	}
}

func TestReadMonoSkipsJunkChunk(t *testing.T) {
	frames := [][]int32{{10 << 16}, {20 << 16}, {30 << 16}}
	raw := buildWav(t, 16000, 16, 1, frames)

	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	labeled, err := f.LabeledSamples([]int{0}, []string{"M"})
	if err != nil {
		t.Fatalf("LabeledSamples: %v", err)
	}
	want := []int32{10 << 16, 20 << 16, 30 << 16}
	if !equalInt32(labeled["M"], want) {
		t.Fatalf("M = %v, want %v", labeled["M"], want)
	}
}

func TestLabeledSamplesMismatchingChannelIdsAndLabels(t *testing.T) {
	raw := buildWav(t, 48000, 16, 2, [][]int32{{0, 0}})
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := f.LabeledSamples([]int{0, 1}, []string{"L2", "R2", "extra"}); err == nil {
		t.Fatal("expected error: channel_ids and channel_labels counts differ")
	}
}

func TestLabeledSamplesChannelIdOutOfRange(t *testing.T) {
	raw := buildWav(t, 48000, 16, 2, [][]int32{{0, 0}})
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := f.LabeledSamples([]int{0, 2}, []string{"L2", "R2"}); err == nil {
		t.Fatal("expected error: channel_id 2 is out of range for a 2-channel file")
	}
}

func TestReadRejectsNonPcmFormat(t *testing.T) {
	raw := buildWav(t, 48000, 16, 1, [][]int32{{0}})
	// Overwrite the fmt chunk's audio_format field (offset 20 in this
	// fixed layout: 12-byte RIFF header + 8-byte fmt chunk header).
	binary.LittleEndian.PutUint16(raw[20:22], 3) // IEEE float, unsupported
	if _, err := Read(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected error for non-PCM audio_format")
	}
}

func TestReadRejectsUnsupportedBitDepth(t *testing.T) {
	raw := buildWav(t, 48000, 16, 1, [][]int32{{0}})
	binary.LittleEndian.PutUint16(raw[34:36], 8) // bits_per_sample offset
	if _, err := Read(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected error for unsupported bits_per_sample")
	}
}

func TestRead24BitSignExtension(t *testing.T) {
	frames := [][]int32{{-1 << 24}, {1 << 24}}
	raw := buildWav(t, 48000, 24, 1, frames)
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	labeled, err := f.LabeledSamples([]int{0}, []string{"M"})
	if err != nil {
		t.Fatalf("LabeledSamples: %v", err)
	}
	want := []int32{-1 << 24, 1 << 24}
	if !equalInt32(labeled["M"], want) {
		t.Fatalf("M = %v, want %v", labeled["M"], want)
	}
}

func equalInt32(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
