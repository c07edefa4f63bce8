// The iamf-tools sequencer package drives the multiplexer (spec.md §4.6):
// it interleaves descriptor OBUs, temporal delimiters, parameter blocks,
// audio frames, and user-declared arbitrary OBUs into one well-formed IAMF
// bitstream, in the order the specification mandates.
//
// Grounded on original_source/iamf/obu/arbitrary_obu.cc's
// WriteObusWithHook for hook interleaving, and on spec.md §4.6's five-step
// emission order.
package sequencer

import (
	"io"
	"sort"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/codec"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
	"github.com/BrandenAvalonCx/iamf-tools/logger"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// Sequencer owns the output writer and the ULEB128 generator; arbitrary
// OBUs are passed to each write call rather than stored.
type Sequencer struct {
	w   io.Writer
	gen leb128.Generator
}

// NewSequencer returns a Sequencer that writes complete OBUs to w, using
// gen for every ULEB128 field (including obu_size) it emits.
func NewSequencer(w io.Writer, gen leb128.Generator) *Sequencer {
	return &Sequencer{w: w, gen: gen}
}

// flush writes wb's bytes to the underlying io.Writer. wb must already be
// byte-aligned (true after any sequence of WriteObu calls).
func (s *Sequencer) flush(wb *bitbuffer.WriteBuffer) error {
	b, err := wb.Bytes()
	if err != nil {
		return err
	}
	_, err = s.w.Write(b)
	return err
}

// writeArbitrary emits every arbitrary OBU bound to hook, in declaration
// order, each with redundant_copy clear.
func (s *Sequencer) writeArbitrary(wb *bitbuffer.WriteBuffer, arbitrary []obu.ArbitraryObu, hook obu.InsertionHook) error {
	for i := range arbitrary {
		a := &arbitrary[i]
		if a.InsertionHook != hook {
			continue
		}
		if err := obu.WriteObu(wb, a, a.Header(false), s.gen); err != nil {
			return err
		}
	}
	return nil
}

// WriteDescriptors emits step 1-3 of spec.md §4.6: arbitrary OBUs bound to
// BeforeDescriptors, the IA Sequence Header, then codec configs, audio
// elements, and mix presentations, each interleaved with their named
// hooks. Every OBU is built into a scratch buffer first so a validation
// failure midway leaves nothing written to w (spec.md §4.6, §7).
func (s *Sequencer) WriteDescriptors(
	seqHeader obu.IASequenceHeader,
	codecConfigs []obu.CodecConfig,
	audioElements []obu.AudioElement,
	mixPresentations []obu.MixPresentation,
	arbitrary []obu.ArbitraryObu,
) error {
	scratch := bitbuffer.NewWriteBuffer(256, s.gen)

	if err := s.writeArbitrary(scratch, arbitrary, obu.HookBeforeDescriptors); err != nil {
		return err
	}
	if err := obu.WriteObu(scratch, &seqHeader, obu.Header{Type: obu.TypeSequenceHeader}, s.gen); err != nil {
		return err
	}
	if err := s.writeArbitrary(scratch, arbitrary, obu.HookAfterIASequenceHeader); err != nil {
		return err
	}

	for i := range codecConfigs {
		if err := obu.WriteObu(scratch, &codecConfigs[i], obu.Header{Type: obu.TypeCodecConfig}, s.gen); err != nil {
			return err
		}
	}
	if err := s.writeArbitrary(scratch, arbitrary, obu.HookAfterCodecConfigs); err != nil {
		return err
	}

	for i := range audioElements {
		if err := obu.WriteObu(scratch, &audioElements[i], obu.Header{Type: obu.TypeAudioElement}, s.gen); err != nil {
			return err
		}
	}
	if err := s.writeArbitrary(scratch, arbitrary, obu.HookAfterAudioElements); err != nil {
		return err
	}

	for i := range mixPresentations {
		if err := obu.WriteObu(scratch, &mixPresentations[i], obu.Header{Type: obu.TypeMixPresentation}, s.gen); err != nil {
			return err
		}
	}
	if err := s.writeArbitrary(scratch, arbitrary, obu.HookAfterMixPresentations); err != nil {
		return err
	}

	logger.T(logger.ObuContext("SequenceHeader"), "wrote descriptors:", len(codecConfigs), "codec configs,",
		len(audioElements), "audio elements,", len(mixPresentations), "mix presentations")
	return s.flush(scratch)
}

// WriteTemporalUnit emits step 4 of spec.md §4.6: an optional temporal
// delimiter, every parameter block whose start timestamp equals unitStart,
// every audio frame for this unit in ascending substream_id order, then
// arbitrary OBUs bound to AfterAudioFrame.
func (s *Sequencer) WriteTemporalUnit(
	unitStart uint64,
	emitDelimiter bool,
	paramDefs map[uint64]*obu.ParameterDefinition,
	paramBlocks []obu.ParameterBlockWithData,
	audioFrames []codec.AudioFrameWithData,
	arbitrary []obu.ArbitraryObu,
) error {
	scratch := bitbuffer.NewWriteBuffer(256, s.gen)

	if emitDelimiter {
		td := &obu.TemporalDelimiter{}
		if err := obu.WriteObu(scratch, td, td.Header(), s.gen); err != nil {
			return err
		}
	}

	if err := s.writeArbitrary(scratch, arbitrary, obu.HookBeforeParameterBlocks); err != nil {
		return err
	}

	for i := range paramBlocks {
		pb := &paramBlocks[i]
		if pb.StartTimestamp != unitStart {
			continue
		}
		if err := writeParameterBlock(scratch, pb, paramDefs, s.gen); err != nil {
			return err
		}
	}

	sortedFrames := make([]codec.AudioFrameWithData, len(audioFrames))
	copy(sortedFrames, audioFrames)
	sort.Slice(sortedFrames, func(i, j int) bool {
		return sortedFrames[i].AudioFrame.SubstreamID < sortedFrames[j].AudioFrame.SubstreamID
	})
	for i := range sortedFrames {
		f := &sortedFrames[i]
		frame := &f.AudioFrame
		hasTrim := f.TrimAtStart != 0 || f.TrimAtEnd != 0
		header := frame.Header(false, hasTrim)
		header.NumSamplesToTrimAtStart = f.TrimAtStart
		header.NumSamplesToTrimAtEnd = f.TrimAtEnd
		if err := obu.WriteObu(scratch, frame, header, s.gen); err != nil {
			return err
		}
	}

	if err := s.writeArbitrary(scratch, arbitrary, obu.HookAfterAudioFrame); err != nil {
		return err
	}

	return s.flush(scratch)
}

func writeParameterBlock(wb *bitbuffer.WriteBuffer, pb *obu.ParameterBlockWithData, defs map[uint64]*obu.ParameterDefinition, gen leb128.Generator) error {
	block := pb.ParameterBlock
	header := obu.Header{Type: obu.TypeParameterBlock}
	wrapped := &parameterBlockWriter{block: block, defs: defs}
	return obu.WriteObu(wb, wrapped, header, gen)
}

// parameterBlockWriter adapts ParameterBlock.WriteWithDefinitions to the
// obu.Obu interface, since the sequencer is the one caller that has the
// definitions map ParameterBlock.ValidateAndWritePayload alone cannot see.
type parameterBlockWriter struct {
	block *obu.ParameterBlock
	defs  map[uint64]*obu.ParameterDefinition
}

func (p *parameterBlockWriter) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	return p.block.WriteWithDefinitions(wb, p.defs)
}

func (p *parameterBlockWriter) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("parameter block decode is out of scope")
}

func (p *parameterBlockWriter) PrintObu(w io.Writer) {
	p.block.PrintObu(w)
}

// WriteRedundantDescriptors emits step 5 of spec.md §4.6: optional
// redundant copies of every descriptor OBU at end of stream, each with
// RedundantCopy set.
func (s *Sequencer) WriteRedundantDescriptors(
	seqHeader obu.IASequenceHeader,
	codecConfigs []obu.CodecConfig,
	audioElements []obu.AudioElement,
	mixPresentations []obu.MixPresentation,
) error {
	scratch := bitbuffer.NewWriteBuffer(256, s.gen)

	if err := obu.WriteObu(scratch, &seqHeader, obu.Header{Type: obu.TypeSequenceHeader, RedundantCopy: true}, s.gen); err != nil {
		return err
	}
	for i := range codecConfigs {
		if err := obu.WriteObu(scratch, &codecConfigs[i], obu.Header{Type: obu.TypeCodecConfig, RedundantCopy: true}, s.gen); err != nil {
			return err
		}
	}
	for i := range audioElements {
		if err := obu.WriteObu(scratch, &audioElements[i], obu.Header{Type: obu.TypeAudioElement, RedundantCopy: true}, s.gen); err != nil {
			return err
		}
	}
	for i := range mixPresentations {
		if err := obu.WriteObu(scratch, &mixPresentations[i], obu.Header{Type: obu.TypeMixPresentation, RedundantCopy: true}, s.gen); err != nil {
			return err
		}
	}

	logger.T(logger.ObuContext("SequenceHeader"), "wrote", 1+len(codecConfigs)+len(audioElements)+len(mixPresentations),
		"redundant descriptor copies")
	return s.flush(scratch)
}
