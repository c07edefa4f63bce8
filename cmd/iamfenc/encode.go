package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BrandenAvalonCx/iamf-tools/codec"
	"github.com/BrandenAvalonCx/iamf-tools/demix"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
	"github.com/BrandenAvalonCx/iamf-tools/parameters"
	"github.com/BrandenAvalonCx/iamf-tools/sequencer"
	"github.com/BrandenAvalonCx/iamf-tools/timing"
	"github.com/BrandenAvalonCx/iamf-tools/usermetadata"
	"github.com/BrandenAvalonCx/iamf-tools/wav"
)

func decodeConfig(data []byte) (*usermetadata.UserMetadata, error) {
	return usermetadata.Decode(data)
}

const mixGainParameterIDBase = 1 << 32 // keeps mix-gain synthetic ids clear of any user-declared parameter_id range

// Encode drives one full encode: it builds the descriptor OBUs from cfg,
// pulls PCM samples for each audio element from a WAV file under wavDir,
// runs every declared codec config's encoder over them, and multiplexes
// the result into out via the sequencer (spec.md §4.6).
func Encode(cfg *usermetadata.UserMetadata, wavDir string, out io.Writer) error {
	gen, err := buildLebGenerator(cfg.LebGenerator)
	if err != nil {
		return err
	}

	codecConfigsByID, orderedCodecConfigs, err := buildCodecConfigs(cfg.CodecConfigs)
	if err != nil {
		return err
	}

	audioElements, audioElementsByID, err := buildAudioElements(cfg.AudioElements)
	if err != nil {
		return err
	}

	mixPresentations, err := buildMixPresentations(cfg.MixPresentations, audioElementsByID)
	if err != nil {
		return err
	}

	paramDefs := collectParameterDefinitions(audioElements, mixPresentations)
	paramDefPtrs := make(map[uint64]*obu.ParameterDefinition, len(paramDefs))
	for id := range paramDefs {
		d := paramDefs[id]
		paramDefPtrs[id] = &d
	}

	timingModule := timing.NewModule()
	strayIDs := make([]uint64, len(cfg.ParameterBlocks))
	for i, pb := range cfg.ParameterBlocks {
		strayIDs[i] = pb.ParameterID
	}
	if err := timingModule.Initialize(audioElements, codecConfigsByID, paramDefs, strayIDs); err != nil {
		return err
	}

	paramsManager := parameters.NewManager(audioElementsByID)
	if err := paramsManager.Initialize(); err != nil {
		return err
	}

	fallbackDuration := uint32(0)
	if len(orderedCodecConfigs) > 0 {
		fallbackDuration = orderedCodecConfigs[0].NumSamplesPerFrame
	}
	paramBlocks, err := buildParameterBlocks(cfg.ParameterBlocks, paramDefs, timingModule, fallbackDuration)
	if err != nil {
		return err
	}
	for i := range paramBlocks {
		paramsManager.AddDemixingParameterBlock(&paramBlocks[i])
	}

	arbitrary, err := buildArbitraryObus(cfg.ArbitraryObus)
	if err != nil {
		return err
	}

	seq := sequencer.NewSequencer(out, gen)
	seqHeader := obu.IASequenceHeader{PrimaryProfile: obu.ProfileBase}
	if err := seq.WriteDescriptors(seqHeader, orderedCodecConfigs, audioElements, mixPresentations, arbitrary); err != nil {
		return err
	}

	allFrames, err := encodeAllAudioElements(cfg.AudioElements, audioElementsByID, codecConfigsByID, wavDir, timingModule, paramsManager)
	if err != nil {
		return err
	}

	unitStarts := collectUnitStarts(allFrames, paramBlocks)
	first := true
	for _, unitStart := range unitStarts {
		frames := framesStartingAt(allFrames, unitStart)
		if err := seq.WriteTemporalUnit(unitStart, first, paramDefPtrs, paramBlocks, frames, arbitrary); err != nil {
			return err
		}
		first = false
	}

	return seq.WriteRedundantDescriptors(seqHeader, orderedCodecConfigs, audioElements, mixPresentations)
}

// buildParameterBlocks turns each declared parameter_block_metadata entry
// into a ParameterBlockWithData, assigning timestamps through timingModule
// and inferring the subblock variant from the referenced definition's
// default payload (demixing vs mix-gain) since the configuration surface
// does not repeat the param_definition_type per block. Every definition
// built from configuration uses param_definition_mode (duration carried
// externally, not on the wire), so a block's duration is not recoverable
// from its definition; fallbackDuration (the first codec config's
// num_samples_per_frame) stands in for it, pairing each parameter block
// with one audio frame's worth of ticks.
func buildParameterBlocks(
	metas []usermetadata.ParameterBlockMetadata,
	defs map[uint64]obu.ParameterDefinition,
	timingModule *timing.Module,
	fallbackDuration uint32,
) ([]obu.ParameterBlockWithData, error) {
	out := make([]obu.ParameterBlockWithData, 0, len(metas))
	for _, meta := range metas {
		def, ok := defs[meta.ParameterID]
		if !ok {
			continue // stray parameter_id, already validated by timing.Module.Initialize
		}
		duration := def.ConstantSubblockDuration
		if duration == 0 {
			duration = def.Duration
		}
		if duration == 0 {
			duration = uint64(fallbackDuration)
		}
		start, end, err := timingModule.GetNextParameterBlockTimestamps(meta.ParameterID, meta.StartTimestamp, uint32(duration))
		if err != nil {
			return nil, err
		}

		block := &obu.ParameterBlock{ParameterID: meta.ParameterID}
		switch {
		case def.DemixingDefault != nil:
			block.Subblocks = []obu.ParameterSubblock{&obu.DemixingInfoParameterData{
				DMixPMode:  obu.DMixPMode(meta.DmixPMode),
				WIdxOffset: 0,
			}}
		case def.MixGainDefault != nil:
			block.Subblocks = []obu.ParameterSubblock{&obu.MixGainParameterData{
				AnimationType:   0,
				StartPointValue: meta.MixGain,
			}}
		default:
			return nil, ierrors.Unimplemented("parameter %d has no demixing or mix-gain default, no subblock variant to infer", meta.ParameterID)
		}

		out = append(out, obu.ParameterBlockWithData{
			ParameterBlock: block,
			StartTimestamp: start,
			EndTimestamp:   end,
		})
	}
	return out, nil
}

func buildLebGenerator(cfg usermetadata.LebGeneratorConfig) (leb128.Generator, error) {
	if cfg.Mode == usermetadata.LebGeneratorModeFixed {
		return leb128.NewFixedSizeGenerator(cfg.FixedSize)
	}
	return leb128.NewMinimumGenerator(), nil
}

func buildCodecConfigs(entries []usermetadata.CodecConfigMetadata) (map[uint64]obu.CodecConfig, []obu.CodecConfig, error) {
	byID := make(map[uint64]obu.CodecConfig, len(entries))
	ordered := make([]obu.CodecConfig, 0, len(entries))
	for _, e := range entries {
		dc, roll, err := buildDecoderConfig(e)
		if err != nil {
			return nil, nil, err
		}
		cc := obu.CodecConfig{
			ID:                 e.CodecConfigID,
			NumSamplesPerFrame: e.NumSamplesPerFrame,
			AudioRollDistance:  roll,
			DecoderConfig:      dc,
		}
		byID[e.CodecConfigID] = cc
		ordered = append(ordered, cc)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return byID, ordered, nil
}

func buildDecoderConfig(e usermetadata.CodecConfigMetadata) (obu.DecoderConfig, int16, error) {
	switch e.CodecID {
	case "ipcm":
		dc := &obu.LpcmDecoderConfig{
			BigEndian:  e.Lpcm.BigEndian,
			SampleSize: obu.LpcmSampleSize(e.Lpcm.SampleSize),
			SampleRate: e.Lpcm.SampleRate,
		}
		return dc, dc.RequiredAudioRollDistance(), nil
	case "Opus":
		dc := &obu.OpusDecoderConfig{
			Version:         e.Opus.Version,
			PreSkip:         e.Opus.PreSkip,
			InputSampleRate: e.Opus.InputSampleRate,
			OutputGain:      e.Opus.OutputGain,
			MappingFamily:   e.Opus.MappingFamily,
		}
		return dc, dc.RequiredAudioRollDistance(), nil
	case "mp4a":
		dc := &obu.AacLcDecoderConfig{
			SamplingFrequencyIndex: e.Aac.SamplingFrequencyIndex,
			SamplingFrequency:      e.Aac.SamplingFrequency,
			ChannelConfiguration:   e.Aac.ChannelConfiguration,
		}
		return dc, dc.RequiredAudioRollDistance(), nil
	case "fLaC":
		dc := &obu.FlacDecoderConfig{
			MinimumBlockSize:     e.Flac.MinimumBlockSize,
			MaximumBlockSize:     e.Flac.MaximumBlockSize,
			MinimumFrameSize:     e.Flac.MinimumFrameSize,
			MaximumFrameSize:     e.Flac.MaximumFrameSize,
			SampleRate:           e.Flac.SampleRate,
			NumChannels:          e.Flac.NumChannels,
			BitsPerSample:        e.Flac.BitsPerSample,
			TotalSamplesInStream: e.Flac.TotalSamplesInStream,
		}
		return dc, dc.RequiredAudioRollDistance(), nil
	default:
		return nil, 0, ierrors.InvalidArgument("unknown codec_id %q", e.CodecID)
	}
}

func channelLayerFromString(s string) (obu.ChannelAudioLayer, error) {
	switch s {
	case "mono":
		return obu.ChannelAudioLayerMono, nil
	case "stereo":
		return obu.ChannelAudioLayerStereo, nil
	case "5.1":
		return obu.ChannelAudioLayer5_1, nil
	case "5.1.2":
		return obu.ChannelAudioLayer5_1_2, nil
	case "5.1.4":
		return obu.ChannelAudioLayer5_1_4, nil
	case "7.1":
		return obu.ChannelAudioLayer7_1, nil
	case "7.1.2":
		return obu.ChannelAudioLayer7_1_2, nil
	case "7.1.4":
		return obu.ChannelAudioLayer7_1_4, nil
	case "3.1.2":
		return obu.ChannelAudioLayer3_1_2, nil
	case "binaural":
		return obu.ChannelAudioLayerBinaural, nil
	default:
		return 0, ierrors.InvalidArgument("unknown channel layer %q", s)
	}
}

func buildAudioElements(entries []usermetadata.AudioElementMetadata) ([]obu.AudioElement, map[uint64]obu.AudioElement, error) {
	ordered := make([]obu.AudioElement, 0, len(entries))
	byID := make(map[uint64]obu.AudioElement, len(entries))
	for _, e := range entries {
		if e.AudioElementType == "scene-based" {
			return nil, nil, ierrors.Unimplemented("scene-based audio elements need an explicit ambisonics config, not yet expressible in configuration")
		}
		if len(e.ChannelLayers) == 0 {
			return nil, nil, ierrors.InvalidArgument("audio element %d declares no channel_layers", e.AudioElementID)
		}
		layers := make([]obu.ChannelAudioLayerConfig, len(e.ChannelLayers))
		for i, l := range e.ChannelLayers {
			layer, err := channelLayerFromString(l.Layer)
			if err != nil {
				return nil, nil, err
			}
			layers[i] = obu.ChannelAudioLayerConfig{
				Layer:             layer,
				NumSubstreams:     l.NumSubstreams,
				CoupledSubstreams: l.CoupledSubstreams,
				OutputGainFlag:    l.OutputGainFlag,
				OutputGain:        l.OutputGain,
			}
		}

		var params []obu.AudioElementParam
		if e.DemixingParameterID != 0 {
			params = append(params, obu.AudioElementParam{
				Type: obu.ParamDefinitionTypeDemixing,
				Definition: &obu.ParameterDefinition{
					ParameterID:         e.DemixingParameterID,
					ParameterRate:       48000,
					ParamDefinitionMode: true,
					DemixingDefault: &obu.DemixingDefault{
						DMixPMode: obu.DMixPMode1,
						DefaultW:  e.DefaultW,
					},
				},
			})
		}

		ae := obu.AudioElement{
			ID:            e.AudioElementID,
			Type:          obu.AudioElementTypeChannelBased,
			CodecConfigID: e.CodecConfigID,
			SubstreamIDs:  e.SubstreamIDs,
			Params:        params,
			Config:        &obu.ScalableChannelLayoutConfig{Layers: layers},
		}
		ordered = append(ordered, ae)
		byID[ae.ID] = ae
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return ordered, byID, nil
}

func buildMixPresentations(entries []usermetadata.MixPresentationMetadata, audioElementsByID map[uint64]obu.AudioElement) ([]obu.MixPresentation, error) {
	out := make([]obu.MixPresentation, 0, len(entries))
	for _, e := range entries {
		if len(e.Elements) == 0 {
			return nil, ierrors.InvalidArgument("mix presentation %d has no elements", e.MixPresentationID)
		}
		subElements := make([]obu.SubMixAudioElement, len(e.Elements))
		for i, el := range e.Elements {
			if _, ok := audioElementsByID[el.AudioElementID]; !ok {
				return nil, ierrors.InvalidArgument("mix presentation %d references unknown audio_element_id %d", e.MixPresentationID, el.AudioElementID)
			}
			subElements[i] = obu.SubMixAudioElement{
				AudioElementID: el.AudioElementID,
				MixGain: obu.ElementMixGain{Definition: &obu.ParameterDefinition{
					ParameterID:         mixGainParameterIDBase + e.MixPresentationID<<8 + uint64(i),
					ParameterRate:       48000,
					ParamDefinitionMode: true,
					MixGainDefault:      &obu.MixGainDefault{DefaultMixGain: el.MixGain},
				}},
			}
		}
		out = append(out, obu.MixPresentation{
			ID: e.MixPresentationID,
			SubMixes: []obu.SubMix{
				{
					AudioElements: subElements,
					OutputMixGain: &obu.ParameterDefinition{
						ParameterID:         mixGainParameterIDBase + e.MixPresentationID<<8 + 0xff,
						ParameterRate:       48000,
						ParamDefinitionMode: true,
						MixGainDefault:      &obu.MixGainDefault{DefaultMixGain: e.OutputMixGain},
					},
					Layouts: []obu.MixedPresentationLayout{
						{Layout: obu.PlaybackLayout{LayoutType: 0, SoundSystem: obu.SoundSystem(e.SoundSystem)}},
					},
				},
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func collectParameterDefinitions(audioElements []obu.AudioElement, mixPresentations []obu.MixPresentation) map[uint64]obu.ParameterDefinition {
	defs := make(map[uint64]obu.ParameterDefinition)
	for _, ae := range audioElements {
		for _, p := range ae.Params {
			if p.Definition != nil {
				defs[p.Definition.ParameterID] = *p.Definition
			}
		}
	}
	for _, mp := range mixPresentations {
		for _, sm := range mp.SubMixes {
			for _, el := range sm.AudioElements {
				if el.MixGain.Definition != nil {
					defs[el.MixGain.Definition.ParameterID] = *el.MixGain.Definition
				}
			}
			if sm.OutputMixGain != nil {
				defs[sm.OutputMixGain.ParameterID] = *sm.OutputMixGain
			}
		}
	}
	return defs
}

func buildArbitraryObus(entries []usermetadata.ArbitraryObuMetadata) ([]obu.ArbitraryObu, error) {
	out := make([]obu.ArbitraryObu, len(entries))
	for i, e := range entries {
		hook, err := insertionHookFromString(e.InsertionHook)
		if err != nil {
			return nil, err
		}
		payload, err := hexDecode(e.PayloadHex)
		if err != nil {
			return nil, err
		}
		out[i] = obu.ArbitraryObu{
			ObuType:       obu.Type(e.ObuType),
			Payload:       payload,
			InsertionHook: hook,
		}
	}
	return out, nil
}

func insertionHookFromString(s string) (obu.InsertionHook, error) {
	switch s {
	case "BeforeDescriptors":
		return obu.HookBeforeDescriptors, nil
	case "AfterIASequenceHeader":
		return obu.HookAfterIASequenceHeader, nil
	case "AfterCodecConfigs":
		return obu.HookAfterCodecConfigs, nil
	case "AfterAudioElements":
		return obu.HookAfterAudioElements, nil
	case "AfterMixPresentations":
		return obu.HookAfterMixPresentations, nil
	case "BeforeParameterBlocks":
		return obu.HookBeforeParameterBlocks, nil
	case "AfterAudioFrame":
		return obu.HookAfterAudioFrame, nil
	default:
		return 0, ierrors.InvalidArgument("unknown insertion_hook %q", s)
	}
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, ierrors.InvalidArgument("payload_hex %q has odd length", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, ierrors.InvalidArgument("invalid hex digit %q", string(b))
	}
}

func newEncoderForCodecID(id obu.CodecID) (codec.Encoder, error) {
	switch id {
	case obu.CodecIDLpcm:
		return codec.NewLpcmEncoder(), nil
	case obu.CodecIDOpus:
		return codec.NewOpusEncoder(false), nil
	case obu.CodecIDAac:
		return codec.NewAacEncoder(0, 0)
	case obu.CodecIDFlac:
		return codec.NewFlacEncoder(), nil
	default:
		return nil, ierrors.InvalidArgument("no encoder available for codec_id %v", id)
	}
}

// encodeAllAudioElements reads each audio element's WAV file, encodes it
// with the codec its codec config names, and returns every coded frame
// across every audio element, with timestamps and trim counts attached.
func encodeAllAudioElements(
	metas []usermetadata.AudioElementMetadata,
	audioElementsByID map[uint64]obu.AudioElement,
	codecConfigsByID map[uint64]obu.CodecConfig,
	wavDir string,
	timingModule *timing.Module,
	paramsManager *parameters.Manager,
) ([]codec.AudioFrameWithData, error) {
	var allFrames []codec.AudioFrameWithData

	for _, meta := range metas {
		ae, ok := audioElementsByID[meta.AudioElementID]
		if !ok {
			continue
		}
		cc, ok := codecConfigsByID[meta.CodecConfigID]
		if !ok {
			return nil, ierrors.InvalidArgument("audio element %d references unknown codec_config_id %d", meta.AudioElementID, meta.CodecConfigID)
		}
		config, ok := ae.Config.(*obu.ScalableChannelLayoutConfig)
		if !ok {
			return nil, ierrors.Unimplemented("audio element %d config %T has no wav-driven encode path", meta.AudioElementID, ae.Config)
		}
		layerLabels, err := demix.ResolveLabels(*config, meta.ChannelLabels)
		if err != nil {
			return nil, err
		}

		rows, sampleRate, bitDepth, err := readWavRows(wavDir, meta)
		if err != nil {
			return nil, err
		}
		if cc.DecoderConfig.CodecID() == obu.CodecIDLpcm {
			lpcm := cc.DecoderConfig.(*obu.LpcmDecoderConfig)
			if lpcm.SampleRate != sampleRate {
				return nil, ierrors.InvalidArgument("audio element %d: codec config sample_rate %d does not match wav file sample_rate %d",
					meta.AudioElementID, lpcm.SampleRate, sampleRate)
			}
		}

		numChannels := 0
		for _, ll := range layerLabels {
			numChannels += len(ll.Labels)
		}
		encoder, err := newEncoderForCodecID(cc.DecoderConfig.CodecID())
		if err != nil {
			return nil, err
		}
		if err := encoder.Initialize(cc, numChannels); err != nil {
			return nil, err
		}

		substreamID := ae.SubstreamIDs[0]
		frames, err := encodeSubstream(encoder, rows, bitDepth, cc.NumSamplesPerFrame,
			demix.Trim{AtStart: meta.SamplesToTrimAtStart, AtEnd: meta.SamplesToTrimAtEnd},
			substreamID, timingModule)
		if err != nil {
			return nil, err
		}
		allFrames = append(allFrames, frames...)

		if paramsManager.DemixingParamDefinitionAvailable(meta.AudioElementID) {
			if err := paramsManager.UpdateDemixingState(meta.AudioElementID, 0); err != nil {
				return nil, err
			}
		}
	}

	return allFrames, nil
}

func readWavRows(wavDir string, meta usermetadata.AudioElementMetadata) ([][]int32, uint32, int, error) {
	name := meta.WavFilename
	if name == "" {
		return nil, 0, 0, ierrors.InvalidArgument("audio element %d has no wav_filename", meta.AudioElementID)
	}
	f, err := os.Open(filepath.Join(wavDir, name))
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	file, err := wav.Read(f)
	if err != nil {
		return nil, 0, 0, err
	}
	channelIDs := make([]int, len(meta.ChannelLabels))
	for i := range channelIDs {
		channelIDs[i] = i
	}
	labeled, err := file.LabeledSamples(channelIDs, meta.ChannelLabels)
	if err != nil {
		return nil, 0, 0, err
	}
	rows := make([][]int32, len(meta.ChannelLabels))
	for i, label := range meta.ChannelLabels {
		rows[i] = labeled[label]
	}
	return rows, file.SampleRate, int(file.BitsPerSample), nil
}

// encodeSubstream chunks rows into frames of frameSize samples, encoding
// each with encoder, tagging the first frame with trim.AtStart and the
// last with trim.AtEnd (spec.md §6 "samples_to_trim_at_start/end").
func encodeSubstream(
	enc codec.Encoder,
	rows [][]int32,
	bitDepth int,
	frameSize uint32,
	trim demix.Trim,
	substreamID uint64,
	timingModule *timing.Module,
) ([]codec.AudioFrameWithData, error) {
	if len(rows) == 0 {
		return nil, ierrors.InvalidArgument("substream %d has no channel rows", substreamID)
	}
	totalSamples := len(rows[0])
	numFrames := (totalSamples + int(frameSize) - 1) / int(frameSize)
	if numFrames == 0 {
		numFrames = 1
	}
	if err := demix.ValidateTrim(trim, frameSize); err != nil {
		return nil, err
	}

	var out []codec.AudioFrameWithData
	for i := 0; i < numFrames; i++ {
		start := i * int(frameSize)
		end := start + int(frameSize)
		tickSamples := make([][]int32, 0, frameSize)
		for tick := start; tick < end; tick++ {
			row := make([]int32, len(rows))
			for ch := range rows {
				if tick < len(rows[ch]) {
					row[ch] = rows[ch][tick]
				}
			}
			tickSamples = append(tickSamples, row)
		}

		frameStart, frameEnd, err := timingModule.GetNextAudioFrameTimestamps(substreamID, frameSize)
		if err != nil {
			return nil, err
		}
		partial := codec.AudioFrameWithData{
			AudioFrame:     obu.AudioFrame{SubstreamID: substreamID},
			StartTimestamp: frameStart,
			EndTimestamp:   frameEnd,
		}
		if i == 0 {
			partial.TrimAtStart = trim.AtStart
		}
		if i == numFrames-1 {
			partial.TrimAtEnd = trim.AtEnd
		}
		if err := enc.EncodeAudioFrame(bitDepth, tickSamples, partial); err != nil {
			return nil, err
		}
		if frame, ok := enc.Pop(); ok {
			out = append(out, frame)
		}
	}
	if err := enc.Finalize(); err != nil {
		return nil, err
	}
	for {
		frame, ok := enc.Pop()
		if !ok {
			break
		}
		out = append(out, frame)
	}
	return out, nil
}

// collectUnitStarts returns every distinct temporal-unit start timestamp
// across both audio frames and parameter blocks, ascending, so a parameter
// block covering a span with no audio frame of its own still gets emitted.
func collectUnitStarts(frames []codec.AudioFrameWithData, paramBlocks []obu.ParameterBlockWithData) []uint64 {
	seen := make(map[uint64]bool)
	var starts []uint64
	for _, f := range frames {
		if !seen[f.StartTimestamp] {
			seen[f.StartTimestamp] = true
			starts = append(starts, f.StartTimestamp)
		}
	}
	for _, pb := range paramBlocks {
		if !seen[pb.StartTimestamp] {
			seen[pb.StartTimestamp] = true
			starts = append(starts, pb.StartTimestamp)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	return starts
}

func framesStartingAt(frames []codec.AudioFrameWithData, start uint64) []codec.AudioFrameWithData {
	var out []codec.AudioFrameWithData
	for _, f := range frames {
		if f.StartTimestamp == start {
			out = append(out, f)
		}
	}
	return out
}
