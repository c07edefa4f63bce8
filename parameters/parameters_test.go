package parameters

import (
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/obu"
)

func demixingAudioElement(id, parameterID uint64) obu.AudioElement {
	return obu.AudioElement{
		ID: id,
		Params: []obu.AudioElementParam{
			{
				Type: obu.ParamDefinitionTypeDemixing,
				Definition: &obu.ParameterDefinition{
					ParameterID:   parameterID,
					ParameterRate: 48000,
					DemixingDefault: &obu.DemixingDefault{
						DMixPMode: obu.DMixPMode1,
						DefaultW:  0,
					},
				},
			},
		},
	}
}

func TestDefaultsWhenQueueEmpty(t *testing.T) {
	elements := map[uint64]obu.AudioElement{0: demixingAudioElement(0, 0)}
	m := NewManager(elements)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	params, err := m.GetDownMixingParameters(0)
	if err != nil {
		t.Fatalf("GetDownMixingParameters: %v", err)
	}
	if params.W != 0.0 {
		t.Fatalf("got w=%v, want 0.0", params.W)
	}
}

func TestWIdxAdvancesAfterUpdate(t *testing.T) {
	elements := map[uint64]obu.AudioElement{0: demixingAudioElement(0, 0)}
	m := NewManager(elements)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	first := &obu.ParameterBlockWithData{
		ParameterBlock: &obu.ParameterBlock{
			ParameterID: 0,
			Subblocks:   []obu.ParameterSubblock{&obu.DemixingInfoParameterData{DMixPMode: obu.DMixPMode3, WIdxOffset: 1}},
		},
		StartTimestamp: 0,
		EndTimestamp:   128,
	}
	m.AddDemixingParameterBlock(first)

	params, err := m.GetDownMixingParameters(0)
	if err != nil {
		t.Fatalf("GetDownMixingParameters: %v", err)
	}
	if params.W != 0.0 {
		t.Fatalf("first frame: got w=%v, want 0.0", params.W)
	}

	if err := m.UpdateDemixingState(0, 0); err != nil {
		t.Fatalf("UpdateDemixingState: %v", err)
	}

	second := &obu.ParameterBlockWithData{
		ParameterBlock: &obu.ParameterBlock{
			ParameterID: 0,
			Subblocks:   []obu.ParameterSubblock{&obu.DemixingInfoParameterData{DMixPMode: obu.DMixPMode3, WIdxOffset: 1}},
		},
		StartTimestamp: 128,
		EndTimestamp:   256,
	}
	m.AddDemixingParameterBlock(second)

	params, err = m.GetDownMixingParameters(0)
	if err != nil {
		t.Fatalf("GetDownMixingParameters: %v", err)
	}
	if params.W != WIdxToW[1] {
		t.Fatalf("second frame: got w=%v, want %v", params.W, WIdxToW[1])
	}
}

func TestUpdateDemixingStateRejectsWrongTimestamp(t *testing.T) {
	elements := map[uint64]obu.AudioElement{0: demixingAudioElement(0, 0)}
	m := NewManager(elements)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.AddDemixingParameterBlock(&obu.ParameterBlockWithData{
		ParameterBlock: &obu.ParameterBlock{
			ParameterID: 0,
			Subblocks:   []obu.ParameterSubblock{&obu.DemixingInfoParameterData{DMixPMode: obu.DMixPMode1, WIdxOffset: 0}},
		},
		StartTimestamp: 128,
	})
	if err := m.UpdateDemixingState(0, 0); err == nil {
		t.Fatal("expected error for mismatched expected timestamp")
	}
}

func TestUpdateDemixingStateUnknownIDIsNoop(t *testing.T) {
	m := NewManager(map[uint64]obu.AudioElement{})
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := m.UpdateDemixingState(999, 0); err != nil {
		t.Fatalf("expected no-op success for unknown audio element id, got %v", err)
	}
}

func TestTwoDemixingDefinitionsOnOneElementFails(t *testing.T) {
	ae := demixingAudioElement(0, 0)
	ae.Params = append(ae.Params, ae.Params[0])
	m := NewManager(map[uint64]obu.AudioElement{0: ae})
	if err := m.Initialize(); err == nil {
		t.Fatal("expected error for two demixing parameter definitions on one audio element")
	}
}

func TestSharedParameterIDQueueIsConsumedOnce(t *testing.T) {
	elements := map[uint64]obu.AudioElement{
		0: demixingAudioElement(0, 7),
		1: demixingAudioElement(1, 7),
	}
	m := NewManager(elements)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.AddDemixingParameterBlock(&obu.ParameterBlockWithData{
		ParameterBlock: &obu.ParameterBlock{
			ParameterID: 7,
			Subblocks:   []obu.ParameterSubblock{&obu.DemixingInfoParameterData{DMixPMode: obu.DMixPMode1, WIdxOffset: 0}},
		},
		StartTimestamp: 0,
		EndTimestamp:   128,
	})
	m.AddDemixingParameterBlock(&obu.ParameterBlockWithData{
		ParameterBlock: &obu.ParameterBlock{
			ParameterID: 7,
			Subblocks:   []obu.ParameterSubblock{&obu.DemixingInfoParameterData{DMixPMode: obu.DMixPMode1, WIdxOffset: 0}},
		},
		StartTimestamp: 128,
		EndTimestamp:   256,
	})

	// Element 0 advances past frame 0.
	if err := m.UpdateDemixingState(0, 0); err != nil {
		t.Fatalf("UpdateDemixingState(0): %v", err)
	}
	// Element 1 requesting frame 0 now fails: the shared queue's head has
	// already advanced to frame 1's block (start 128).
	if err := m.UpdateDemixingState(1, 0); err == nil {
		t.Fatal("expected error: shared parameter_id queue already advanced past this frame")
	}
}
