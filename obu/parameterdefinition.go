package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// DMixPMode selects which of the four published coefficient sets
// (alpha/beta/gamma/delta) a demixing parameter block uses, per spec.md §3.
type DMixPMode uint8

const (
	DMixPMode1 DMixPMode = 1
	DMixPMode2 DMixPMode = 2
	DMixPMode3 DMixPMode = 3
	// kDMixPMode3_n denotes mode 3 with an alternate numeric suffix in the
	// published spec's table; it shares the same on-wire value as mode 3.
)

func validDMixPMode(m DMixPMode) bool { return m >= DMixPMode1 && m <= DMixPMode3 }

// DemixingDefault is the default-value payload carried by a demixing
// parameter definition.
type DemixingDefault struct {
	DMixPMode DMixPMode
	DefaultW  uint8 // index into parameters.WIdxToW, 0-10
}

// MixGainDefault is the default-value payload carried by a mix-gain
// parameter definition.
type MixGainDefault struct {
	DefaultMixGain int16
}

// ReconGainDefault is the (empty) default-value payload carried by a
// recon-gain parameter definition: recon gain has no definition-level
// default, each parameter block supplies its own per-channel values.
type ReconGainDefault struct{}

// ParameterDefinition is the shared descriptor referenced by parameter
// blocks via parameter_id (spec.md §3).
type ParameterDefinition struct {
	ParameterID             uint64
	ParameterRate           uint32
	ParamDefinitionMode     bool
	Duration                uint64
	NumSubblocks            uint64
	ConstantSubblockDuration uint64
	SubblockDurations       []uint64

	DemixingDefault  *DemixingDefault
	MixGainDefault   *MixGainDefault
	ReconGainDefault *ReconGainDefault
}

func (d *ParameterDefinition) validate(paramType ParamDefinitionType) error {
	if d.ParameterRate == 0 {
		return ierrors.InvalidArgument("parameter %d has parameter_rate == 0", d.ParameterID)
	}
	if !d.ParamDefinitionMode {
		if d.ConstantSubblockDuration == 0 && uint64(len(d.SubblockDurations)) != d.NumSubblocks {
			return ierrors.InvalidArgument("parameter %d has %d explicit subblock durations, want %d",
				d.ParameterID, len(d.SubblockDurations), d.NumSubblocks)
		}
	}
	switch paramType {
	case ParamDefinitionTypeDemixing:
		if d.DemixingDefault == nil {
			return ierrors.InvalidArgument("parameter %d is a demixing definition with no default payload", d.ParameterID)
		}
		if !validDMixPMode(d.DemixingDefault.DMixPMode) {
			return ierrors.InvalidArgument("parameter %d has invalid default dmixp_mode %d", d.ParameterID, d.DemixingDefault.DMixPMode)
		}
		if d.DemixingDefault.DefaultW > 10 {
			return ierrors.InvalidArgument("parameter %d has default_w %d outside [0,10]", d.ParameterID, d.DemixingDefault.DefaultW)
		}
	case ParamDefinitionTypeMixGain:
		if d.MixGainDefault == nil {
			return ierrors.InvalidArgument("parameter %d is a mix-gain definition with no default payload", d.ParameterID)
		}
	case ParamDefinitionTypeReconGain:
		// No default fields to validate.
	}
	return nil
}

// writeTo writes parameter_id, parameter_rate, param_definition_mode,
// subblock structure (when mode is clear), and the type-specific default
// payload.
func (d *ParameterDefinition) writeTo(wb *bitbuffer.WriteBuffer, paramType ParamDefinitionType) error {
	if err := d.validate(paramType); err != nil {
		return err
	}
	if err := wb.WriteUleb128(d.ParameterID); err != nil {
		return err
	}
	if err := wb.WriteUleb128(uint64(d.ParameterRate)); err != nil {
		return err
	}
	mode := boolBit(d.ParamDefinitionMode)
	if err := wb.WriteUnsignedLiteral(mode, 1); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 7); err != nil { // reserved
		return err
	}
	if !d.ParamDefinitionMode {
		if err := wb.WriteUleb128(d.Duration); err != nil {
			return err
		}
		if err := wb.WriteUleb128(d.NumSubblocks); err != nil {
			return err
		}
		if err := wb.WriteUleb128(d.ConstantSubblockDuration); err != nil {
			return err
		}
		if d.ConstantSubblockDuration == 0 {
			for _, sub := range d.SubblockDurations {
				if err := wb.WriteUleb128(sub); err != nil {
					return err
				}
			}
		}
	}

	switch paramType {
	case ParamDefinitionTypeDemixing:
		if err := wb.WriteUnsignedLiteral(uint64(d.DemixingDefault.DMixPMode), 3); err != nil {
			return err
		}
		if err := wb.WriteUnsignedLiteral(0, 5); err != nil { // reserved
			return err
		}
		if err := wb.WriteUnsignedLiteral(uint64(d.DemixingDefault.DefaultW), 4); err != nil {
			return err
		}
		return wb.WriteUnsignedLiteral(0, 4) // reserved
	case ParamDefinitionTypeMixGain:
		return wb.WriteSigned16(d.MixGainDefault.DefaultMixGain)
	case ParamDefinitionTypeReconGain:
		return nil
	default:
		return nil
	}
}

func (d *ParameterDefinition) print(w io.Writer) {
	fmt.Fprintf(w, "    parameter_id= %d parameter_rate= %d param_definition_mode= %v\n",
		d.ParameterID, d.ParameterRate, d.ParamDefinitionMode)
}
