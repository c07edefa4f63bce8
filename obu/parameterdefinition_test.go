package obu

import (
	"testing"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/leb128"
)

func TestParameterDefinitionDemixingWritePayload(t *testing.T) {
	d := &ParameterDefinition{
		ParameterID:         3,
		ParameterRate:       48000,
		ParamDefinitionMode: true,
		DemixingDefault:     &DemixingDefault{DMixPMode: DMixPMode1, DefaultW: 10},
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb, ParamDefinitionTypeDemixing); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}

func TestParameterDefinitionRejectsZeroRate(t *testing.T) {
	d := &ParameterDefinition{
		ParameterID:     3,
		DemixingDefault: &DemixingDefault{DMixPMode: DMixPMode1},
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb, ParamDefinitionTypeDemixing); err == nil {
		t.Errorf("expected error for parameter_rate == 0")
	}
}

func TestParameterDefinitionRejectsMissingDemixingDefault(t *testing.T) {
	d := &ParameterDefinition{
		ParameterID:         3,
		ParameterRate:       48000,
		ParamDefinitionMode: true,
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb, ParamDefinitionTypeDemixing); err == nil {
		t.Errorf("expected error for demixing definition missing its default payload")
	}
}

func TestParameterDefinitionRejectsSubblockDurationMismatch(t *testing.T) {
	d := &ParameterDefinition{
		ParameterID:         4,
		ParameterRate:       48000,
		ParamDefinitionMode: false,
		NumSubblocks:        3,
		SubblockDurations:   []uint64{1024, 1024}, // only 2, want 3
		MixGainDefault:      &MixGainDefault{DefaultMixGain: 0},
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb, ParamDefinitionTypeMixGain); err == nil {
		t.Errorf("expected error for subblock_durations length mismatch")
	}
}

func TestParameterDefinitionMixGainWritePayload(t *testing.T) {
	d := &ParameterDefinition{
		ParameterID:             4,
		ParameterRate:           48000,
		ParamDefinitionMode:     false,
		Duration:                1024,
		NumSubblocks:            1,
		ConstantSubblockDuration: 1024,
		MixGainDefault:          &MixGainDefault{DefaultMixGain: -512},
	}
	wb := bitbuffer.NewWriteBuffer(32, leb128.NewMinimumGenerator())
	if err := d.writeTo(wb, ParamDefinitionTypeMixGain); err != nil {
		t.Fatalf("writeTo err %v", err)
	}
}
