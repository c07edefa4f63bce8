package obu

import (
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
)

func TestHeaderRejectsTrimmingStatusOnNonAudioFrame(t *testing.T) {
	h := Header{Type: TypeCodecConfig, TrimmingStatus: true}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := h.writeTo(wb, 0); err == nil {
		t.Errorf("expected error for trimming_status on a non audio-frame OBU")
	}
}

func TestHeaderRejectsRedundantCopyOnTemporalDelimiter(t *testing.T) {
	h := Header{Type: TypeTemporalDelimiter, RedundantCopy: true}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := h.writeTo(wb, 0); err == nil {
		t.Errorf("expected error for redundant_copy on a temporal delimiter")
	}
}

func TestWriteObuLeavesNothingWrittenOnFailure(t *testing.T) {
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	failing := &ArbitraryObu{ObuType: TypeCodecConfig, Payload: nil}
	// trimming_status is only legal on audio frame OBUs; TypeCodecConfig forces writeTo to reject it.
	header := Header{Type: TypeCodecConfig, TrimmingStatus: true}
	if err := WriteObu(wb, failing, header, leb128.NewMinimumGenerator()); err == nil {
		t.Fatalf("expected WriteObu to fail")
	}
	if wb.Size() != 0 {
		t.Errorf("expected no bytes written after a failed WriteObu, got %d bits", wb.Size())
	}
}

func TestWriteObuObuSizeMatchesPayloadLength(t *testing.T) {
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	cc := &CodecConfig{
		ID:                 0,
		NumSamplesPerFrame: 1024,
		AudioRollDistance:  0,
		DecoderConfig:      &LpcmDecoderConfig{SampleSize: LpcmSampleSize16, SampleRate: 48000},
	}
	header := Header{Type: TypeCodecConfig}
	if err := WriteObu(wb, cc, header, leb128.NewMinimumGenerator()); err != nil {
		t.Fatalf("WriteObu err %v", err)
	}
	written, err := wb.Bytes()
	if err != nil {
		t.Fatalf("Bytes err %v", err)
	}

	rb := bitbuffer.NewReadBuffer(written)
	if _, err := rb.ReadUnsignedLiteral(8); err != nil {
		t.Fatalf("read obu_header byte: %v", err)
	}
	obuSize, err := rb.ReadUleb128()
	if err != nil {
		t.Fatalf("read obu_size: %v", err)
	}
	payload, err := rb.ReadUint8Slice(int(obuSize))
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if obuSize != uint64(len(payload)) {
		t.Errorf("obu_size %d does not equal written payload length %d", obuSize, len(payload))
	}
	if rb.BitsRemaining() != 0 {
		t.Errorf("expected obu_size to cover the whole payload, %d bits left unread", rb.BitsRemaining())
	}
}

func TestWriteObuWritesTrimFieldsAheadOfPayload(t *testing.T) {
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	frame := &AudioFrame{SubstreamID: 0, AudioData: []byte{0xaa, 0xbb}}
	header := Header{Type: TypeAudioFrame, TrimmingStatus: true, NumSamplesToTrimAtStart: 10, NumSamplesToTrimAtEnd: 5}
	if err := WriteObu(wb, frame, header, leb128.NewMinimumGenerator()); err != nil {
		t.Fatalf("WriteObu err %v", err)
	}
	got, err := wb.Bytes()
	if err != nil {
		t.Fatalf("Bytes err %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected non-empty output")
	}
	// header byte, obu_size, then trim-at-end (5) and trim-at-start (10)
	// ahead of the audio_data.
	if len(got) < 4 || got[2] != 0x05 || got[3] != 0x0a {
		t.Errorf("got % x, want trim fields 05 0a right after the header and obu_size", got)
	}
}
