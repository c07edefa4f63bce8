// The iamf-tools timing package implements the Global Timing Module
// (spec.md §4.3): per-substream and per-parameter-id running tick counters,
// plus the coverage check that ties a parameter block's timestamps to the
// audio frame it must span.
//
// Grounded on original_source/iamf/cli/global_timing_module.h's two
// flat_hash_map<DecodedUleb128, int32_t> state and rendered here as two Go
// maps guarded by nothing (the core is single-threaded per spec.md §5).
package timing

import (
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// Module assigns and validates start/end timestamps, in ticks at the input
// sample rate of the codec config backing a substream or parameter.
type Module struct {
	substreamTicks map[uint64]uint64
	paramTicks     map[uint64]uint64

	// lastFrame records the most recently assigned [start,end) tick range
	// per substream, so ValidateParameterBlockCoversAudioFrame can check
	// coverage against "the frame whose start equals the current substream
	// tick or the last-emitted frame" (spec.md §4.3).
	lastFrameStart map[uint64]uint64
	lastFrameEnd   map[uint64]uint64
}

// NewModule returns an uninitialized Module; call Initialize before use.
func NewModule() *Module {
	return &Module{
		substreamTicks: make(map[uint64]uint64),
		paramTicks:     make(map[uint64]uint64),
		lastFrameStart: make(map[uint64]uint64),
		lastFrameEnd:   make(map[uint64]uint64),
	}
}

// Initialize registers every substream of every audio element with a
// zeroed tick counter, and every parameter definition's parameter_id with
// a zeroed tick counter. Per spec.md §4.3:
//   - duplicate substream ids across audio elements fail InvalidArgument.
//   - a parameter definition with ParameterRate == 0 fails InvalidArgument.
//   - stray parameter blocks (parameter ids with no definition) are
//     permitted only when exactly one codec config exists, in which case an
//     implicit zeroed tick counter is created for them (spec.md §3 Open
//     Questions: kept as documented behavior, see DESIGN.md). The module
//     records no parameter_rate for stray ids, nor for defined ones.
func (m *Module) Initialize(
	audioElements []obu.AudioElement,
	codecConfigs map[uint64]obu.CodecConfig,
	paramDefinitions map[uint64]obu.ParameterDefinition,
	strayParameterIDs []uint64,
) error {
	for _, ae := range audioElements {
		for _, substreamID := range ae.SubstreamIDs {
			if _, exists := m.substreamTicks[substreamID]; exists {
				return ierrors.InvalidArgument("duplicate substream id %d across audio elements", substreamID)
			}
			m.substreamTicks[substreamID] = 0
		}
	}

	for parameterID, def := range paramDefinitions {
		if def.ParameterRate == 0 {
			return ierrors.InvalidArgument("parameter %d has parameter_rate == 0", parameterID)
		}
		m.paramTicks[parameterID] = 0
	}

	for _, parameterID := range strayParameterIDs {
		if _, ok := paramDefinitions[parameterID]; ok {
			continue
		}
		if len(codecConfigs) != 1 {
			return ierrors.InvalidArgument(
				"parameter block references unknown parameter_id %d with %d codec configs present, exactly 1 is required for a stray parameter_rate",
				parameterID, len(codecConfigs))
		}
		m.paramTicks[parameterID] = 0
	}

	return nil
}

// GetNextAudioFrameTimestamps returns (t, t+duration) for substreamID and
// advances its tick counter by duration.
func (m *Module) GetNextAudioFrameTimestamps(substreamID uint64, duration uint32) (start, end uint64, err error) {
	t, ok := m.substreamTicks[substreamID]
	if !ok {
		return 0, 0, ierrors.InvalidArgument("unknown substream id %d", substreamID)
	}
	start = t
	end = t + uint64(duration)
	m.substreamTicks[substreamID] = end
	m.lastFrameStart[substreamID] = start
	m.lastFrameEnd[substreamID] = end
	return start, end, nil
}

// GetNextParameterBlockTimestamps returns (t, t+duration) for parameterID,
// requiring inputStart == t (spec.md §4.3).
func (m *Module) GetNextParameterBlockTimestamps(parameterID uint64, inputStart uint64, duration uint32) (start, end uint64, err error) {
	t, ok := m.paramTicks[parameterID]
	if !ok {
		return 0, 0, ierrors.InvalidArgument("unknown parameter id %d", parameterID)
	}
	if inputStart != t {
		return 0, 0, ierrors.InvalidArgument("parameter %d input_start %d does not match expected tick %d", parameterID, inputStart, t)
	}
	start = t
	end = t + uint64(duration)
	m.paramTicks[parameterID] = end
	return start, end, nil
}

// ValidateParameterBlockCoversAudioFrame asserts pStart <= frameStart and
// pEnd >= frameEnd for the most recently assigned frame on substreamID
// (spec.md §4.3, §8).
func (m *Module) ValidateParameterBlockCoversAudioFrame(parameterID uint64, pStart, pEnd uint64, substreamID uint64) error {
	frameStart, ok := m.lastFrameStart[substreamID]
	if !ok {
		return ierrors.InvalidArgument("no audio frame has been timestamped yet for substream %d", substreamID)
	}
	frameEnd := m.lastFrameEnd[substreamID]
	if pStart > frameStart {
		return ierrors.InvalidArgument(
			"parameter %d block starts at %d, after audio frame start %d on substream %d", parameterID, pStart, frameStart, substreamID)
	}
	if pEnd < frameEnd {
		return ierrors.InvalidArgument(
			"parameter %d block ends at %d, before audio frame end %d on substream %d", parameterID, pEnd, frameEnd, substreamID)
	}
	return nil
}
