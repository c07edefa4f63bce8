package obu

import (
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
)

func TestDemixingInfoParameterDataRejectsBadOffset(t *testing.T) {
	d := &DemixingInfoParameterData{DMixPMode: DMixPMode1, WIdxOffset: 2}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb); err == nil {
		t.Errorf("expected error for w_idx_offset outside {-1,0,1}")
	}
}

func TestDemixingInfoParameterDataWriteTo(t *testing.T) {
	d := &DemixingInfoParameterData{DMixPMode: DMixPMode2, WIdxOffset: -1}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}

func TestMixGainParameterDataStepAnimation(t *testing.T) {
	m := &MixGainParameterData{AnimationType: 0, StartPointValue: 100}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := m.writeTo(wb); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}

func TestMixGainParameterDataRejectsUnknownAnimationType(t *testing.T) {
	m := &MixGainParameterData{AnimationType: 9}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := m.writeTo(wb); err == nil {
		t.Errorf("expected error for unknown animation_type")
	}
}

func TestReconGainParameterDataRejectsCountMismatch(t *testing.T) {
	r := &ReconGainParameterData{ReconGainFlags: 0b101, ReconGain: []uint8{1}} // 2 flags set, only 1 value
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := r.writeTo(wb); err == nil {
		t.Errorf("expected error for recon_gain count mismatch against flags")
	}
}

func TestReconGainParameterDataWriteTo(t *testing.T) {
	r := &ReconGainParameterData{ReconGainFlags: 0b101, ReconGain: []uint8{200, 100}}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := r.writeTo(wb); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}

func TestParameterBlockRejectsNoSubblocks(t *testing.T) {
	p := &ParameterBlock{ParameterID: 1}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := p.ValidateAndWritePayload(wb); err == nil {
		t.Errorf("expected error for parameter block with no subblocks")
	}
}

func TestParameterBlockWriteWithDefinitionsRejectsUnknownID(t *testing.T) {
	p := &ParameterBlock{
		ParameterID: 99,
		Subblocks:   []ParameterSubblock{&DemixingInfoParameterData{DMixPMode: DMixPMode1}},
	}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := p.WriteWithDefinitions(wb, map[uint64]*ParameterDefinition{}); err == nil {
		t.Errorf("expected error for parameter block referencing unknown parameter_id")
	}
}

func TestParameterBlockWriteWithDefinitionsRejectsSubblockCountMismatch(t *testing.T) {
	def := &ParameterDefinition{ParameterID: 1, ParameterRate: 48000, NumSubblocks: 2}
	p := &ParameterBlock{
		ParameterID: 1,
		Subblocks:   []ParameterSubblock{&DemixingInfoParameterData{DMixPMode: DMixPMode1}},
	}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := p.WriteWithDefinitions(wb, map[uint64]*ParameterDefinition{1: def}); err == nil {
		t.Errorf("expected error: definition requires 2 subblocks, block has 1")
	}
}

func TestParameterBlockValidateAndWritePayload(t *testing.T) {
	p := &ParameterBlock{
		ParameterID: 1,
		Subblocks:   []ParameterSubblock{&DemixingInfoParameterData{DMixPMode: DMixPMode1, WIdxOffset: 0}},
	}
	wb := bitbuffer.NewWriteBuffer(8, leb128.NewMinimumGenerator())
	if err := p.ValidateAndWritePayload(wb); err != nil {
		t.Fatalf("ValidateAndWritePayload err %v", err)
	}
}
