// The iamf-tools parameters package implements the Parameters Manager
// (spec.md §4.4): resolving the down-mixing coefficients in force for each
// (audio_element_id, frame) pair, and maintaining the recursive w_idx state
// variable across frames.
//
// Grounded on original_source/iamf/cli/parameters_manager.h's
// DemixingState struct, generalized per spec.md §4.4 to hold a FIFO of
// pending parameter blocks rather than a single pointer, since multiple
// audio elements may share one parameter_id and advance through the same
// queue at different rates.
package parameters

import (
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

// WIdxToW is the IAMF-published lookup table mapping w_idx in [0,10] to the
// down-mix weight w. Values sourced from the public IAMF specification
// §3.6.3 "Demixing Parameters"; spec.md §9 names only the two endpoints
// (w_idx=0 -> 0.0, w_idx=10 -> 0.5) plus w_idx=1 -> 0.0179, so the interior
// entries are reproduced verbatim from the published table here rather
// than re-derived.
var WIdxToW = [11]float64{
	0.0, 0.0179, 0.0391, 0.0658, 0.1038, 0.25,
	0.3962, 0.4321, 0.4547, 0.4733, 0.5,
}

const (
	minWIdx = 0
	maxWIdx = 10
)

func clampWIdx(w int) int {
	if w < minWIdx {
		return minWIdx
	}
	if w > maxWIdx {
		return maxWIdx
	}
	return w
}

// DownMixingParams are the coefficients in force for one audio element at
// one frame (spec.md §4.4).
type DownMixingParams struct {
	DMixPMode  obu.DMixPMode
	WIdxOffset int8
	WIdxUsed   int
	W          float64
}

type demixingState struct {
	definition  *obu.DemixingDefault
	parameterID uint64
	wIdx        int
}

// Manager resolves per-frame down-mixing parameters for each audio element
// (spec.md §4.4).
//
// The pending-block queue is keyed by parameter_id, not by audio element:
// per spec.md §4.4, "the head-of-queue block is shared across multiple
// audio elements that reference the same parameter_id" — if element A has
// already advanced past frame n, element B requesting frame n via the same
// parameter id fails, because the head now refers to frame n+1.
type Manager struct {
	audioElements map[uint64]obu.AudioElement
	states        map[uint64]*demixingState
	pending       map[uint64][]*obu.ParameterBlockWithData
}

// NewManager returns a Manager over audioElements; call Initialize before
// use.
func NewManager(audioElements map[uint64]obu.AudioElement) *Manager {
	return &Manager{
		audioElements: audioElements,
		states:        make(map[uint64]*demixingState),
		pending:       make(map[uint64][]*obu.ParameterBlockWithData),
	}
}

// Initialize scans each audio element's parameter definitions for its
// demixing parameter definition (there may be at most one, enforced by
// obu.AudioElement.ValidateAndWritePayload as well, but the manager must
// reject it independently since it may run before any OBU is serialized).
func (m *Manager) Initialize() error {
	for id, ae := range m.audioElements {
		var found *obu.AudioElementParam
		count := 0
		for i := range ae.Params {
			if ae.Params[i].Type == obu.ParamDefinitionTypeDemixing {
				count++
				found = &ae.Params[i]
			}
		}
		if count > 1 {
			return ierrors.InvalidArgument("audio element %d has %d demixing parameter definitions, at most 1 is allowed", id, count)
		}
		if found == nil || found.Definition == nil || found.Definition.DemixingDefault == nil {
			continue
		}
		m.states[id] = &demixingState{
			definition:  found.Definition.DemixingDefault,
			parameterID: found.Definition.ParameterID,
			wIdx:        0,
		}
	}
	return nil
}

// DemixingParamDefinitionAvailable reports whether audioElementID has a
// demixing parameter definition.
func (m *Manager) DemixingParamDefinitionAvailable(audioElementID uint64) bool {
	_, ok := m.states[audioElementID]
	return ok
}

// AddDemixingParameterBlock enqueues block on the shared queue for its
// parameter_id.
func (m *Manager) AddDemixingParameterBlock(block *obu.ParameterBlockWithData) {
	if block == nil || block.ParameterBlock == nil {
		return
	}
	id := block.ParameterBlock.ParameterID
	m.pending[id] = append(m.pending[id], block)
}

// GetDownMixingParameters returns the coefficients derived from the
// head-of-queue parameter block and the element's current w_idx, without
// popping the queue. When the queue is empty or audioElementID is unknown,
// it returns the element's (or a zero) default.
func (m *Manager) GetDownMixingParameters(audioElementID uint64) (DownMixingParams, error) {
	s, ok := m.states[audioElementID]
	if !ok {
		return DownMixingParams{}, nil
	}
	queue := m.pending[s.parameterID]
	if len(queue) == 0 {
		return DownMixingParams{
			DMixPMode: s.definition.DMixPMode,
			WIdxUsed:  s.wIdx,
			W:         WIdxToW[s.wIdx],
		}, nil
	}
	head := queue[0]
	data, err := demixingDataFromBlock(head.ParameterBlock)
	if err != nil {
		return DownMixingParams{}, err
	}
	return DownMixingParams{
		DMixPMode:  data.DMixPMode,
		WIdxOffset: data.WIdxOffset,
		WIdxUsed:   s.wIdx,
		W:          WIdxToW[s.wIdx],
	}, nil
}

func demixingDataFromBlock(block *obu.ParameterBlock) (*obu.DemixingInfoParameterData, error) {
	if len(block.Subblocks) == 0 {
		return nil, ierrors.InvalidArgument("demixing parameter block %d has no subblocks", block.ParameterID)
	}
	data, ok := block.Subblocks[0].(*obu.DemixingInfoParameterData)
	if !ok {
		return nil, ierrors.InvalidArgument("parameter block %d's first subblock is %T, not demixing data", block.ParameterID, block.Subblocks[0])
	}
	return data, nil
}

// UpdateDemixingState asserts expectedTimestamp matches the head-of-queue
// block's start timestamp, then pops it and advances w_idx by the popped
// block's w_idx_offset, clamped to [0,10]. If there is no head block, the
// call is a silent no-op and succeeds even for an unknown audioElementID
// (spec.md §4.4, §9 Open Questions: kept as documented, see DESIGN.md).
func (m *Manager) UpdateDemixingState(audioElementID uint64, expectedTimestamp uint64) error {
	s, ok := m.states[audioElementID]
	if !ok {
		return nil
	}
	queue := m.pending[s.parameterID]
	if len(queue) == 0 {
		return nil
	}
	head := queue[0]
	if head.StartTimestamp != expectedTimestamp {
		return ierrors.InvalidArgument(
			"audio element %d expected demixing block at timestamp %d, head of queue starts at %d",
			audioElementID, expectedTimestamp, head.StartTimestamp)
	}
	data, err := demixingDataFromBlock(head.ParameterBlock)
	if err != nil {
		return err
	}
	m.pending[s.parameterID] = queue[1:]
	s.wIdx = clampWIdx(s.wIdx + int(data.WIdxOffset))
	return nil
}
