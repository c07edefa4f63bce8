package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// DemixingInfoParameterData is the per-subblock payload of a demixing
// parameter block. WIdxOffset drives the parameters manager's recursive
// w_idx state: new_w_idx = clamp(w_idx + WIdxOffset, 0, 10).
type DemixingInfoParameterData struct {
	DMixPMode   DMixPMode
	WIdxOffset  int8 // one of -1, 0, +1
}

func (d *DemixingInfoParameterData) validate() error {
	if !validDMixPMode(d.DMixPMode) {
		return ierrors.InvalidArgument("demixing subblock has invalid dmixp_mode %d", d.DMixPMode)
	}
	if d.WIdxOffset < -1 || d.WIdxOffset > 1 {
		return ierrors.InvalidArgument("demixing subblock w_idx_offset %d not in {-1,0,1}", d.WIdxOffset)
	}
	return nil
}

func (d *DemixingInfoParameterData) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := d.validate(); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(d.DMixPMode), 3); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(0, 5); err != nil { // reserved
		return err
	}
	// w_idx_offset is encoded as a 2-bit two's complement value.
	return wb.WriteUnsignedLiteral(uint64(uint8(d.WIdxOffset))&0x3, 2)
}

// MixGainParameterData is the per-subblock payload of a mix-gain parameter
// block: a piecewise-linear animation of mix_gain over the subblock.
type MixGainParameterData struct {
	AnimationType uint8 // 0 step, 1 linear, 2 bezier
	StartPointValue int16
	EndPointValue   int16
	ControlPointValue int16
	ControlPointRelativeTime uint8
}

func (m *MixGainParameterData) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUnsignedLiteral(uint64(m.AnimationType), 8); err != nil {
		return err
	}
	if err := wb.WriteSigned16(m.StartPointValue); err != nil {
		return err
	}
	switch m.AnimationType {
	case 0: // step
		return nil
	case 1: // linear
		return wb.WriteSigned16(m.EndPointValue)
	case 2: // bezier
		if err := wb.WriteSigned16(m.EndPointValue); err != nil {
			return err
		}
		if err := wb.WriteSigned16(m.ControlPointValue); err != nil {
			return err
		}
		return wb.WriteUnsignedLiteral(uint64(m.ControlPointRelativeTime), 8)
	default:
		return ierrors.InvalidArgument("mix gain animation_type %d not in {0,1,2}", m.AnimationType)
	}
}

// ReconGainParameterData is the per-subblock payload of a recon-gain
// parameter block: one gain byte per channel flagged in the bitmask.
type ReconGainParameterData struct {
	ReconGainFlags uint32
	ReconGain      []uint8
}

func (r *ReconGainParameterData) writeTo(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUleb128(uint64(r.ReconGainFlags)); err != nil {
		return err
	}
	wantFlags := popcount32(r.ReconGainFlags)
	if len(r.ReconGain) != wantFlags {
		return ierrors.InvalidArgument("recon_gain has %d values, want %d set flags", len(r.ReconGain), wantFlags)
	}
	for _, g := range r.ReconGain {
		if err := wb.WriteUnsignedLiteral(uint64(g), 8); err != nil {
			return err
		}
	}
	return nil
}

func popcount32(v uint32) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// ParameterSubblock is implemented by the per-type subblock payloads.
type ParameterSubblock interface {
	writeTo(wb *bitbuffer.WriteBuffer) error
}

// ParameterBlock is the "Parameter Block" OBU payload (spec.md §3, §4.2).
// Its subblock durations and type are resolved against the caller-supplied
// definitions map, since the wire format omits them when
// param_definition_mode is clear on the definition.
type ParameterBlock struct {
	ParameterID uint64
	Subblocks   []ParameterSubblock
}

// ValidateAndWritePayload writes parameter_id followed by each subblock's
// payload in order. It has no definitions map, so the subblock count is not
// checked against num_subblocks; WriteWithDefinitions does that.
func (p *ParameterBlock) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	return p.validateAndWritePayload(wb, nil)
}

// WriteWithDefinitions is the form the sequencer actually calls: it checks
// the subblock count against the referenced ParameterDefinition when one is
// supplied.
func (p *ParameterBlock) WriteWithDefinitions(wb *bitbuffer.WriteBuffer, defs map[uint64]*ParameterDefinition) error {
	return p.validateAndWritePayload(wb, defs)
}

func (p *ParameterBlock) validateAndWritePayload(wb *bitbuffer.WriteBuffer, defs map[uint64]*ParameterDefinition) error {
	if len(p.Subblocks) == 0 {
		return ierrors.InvalidArgument("parameter block %d has no subblocks", p.ParameterID)
	}
	if defs != nil {
		def, ok := defs[p.ParameterID]
		if !ok {
			return ierrors.InvalidArgument("parameter block references unknown parameter_id %d", p.ParameterID)
		}
		if !def.ParamDefinitionMode && uint64(len(p.Subblocks)) != def.NumSubblocks {
			return ierrors.InvalidArgument("parameter block %d has %d subblocks, definition requires %d",
				p.ParameterID, len(p.Subblocks), def.NumSubblocks)
		}
	}
	if err := wb.WriteUleb128(p.ParameterID); err != nil {
		return err
	}
	for _, sb := range p.Subblocks {
		if err := sb.writeTo(wb); err != nil {
			return err
		}
	}
	return nil
}

func (p *ParameterBlock) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	return ierrors.Unimplemented("parameter block decode is out of scope")
}

func (p *ParameterBlock) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "Parameter Block OBU:\n")
	fmt.Fprintf(w, "  parameter_id= %d num_subblocks= %d\n", p.ParameterID, len(p.Subblocks))
}

// ParameterBlockWithData bundles a ParameterBlock with the timestamps the
// global timing module assigned it, grounded on
// original_source/iamf/cli/parameters_manager.h's borrowed-pointer usage of
// ParameterBlockWithData.
type ParameterBlockWithData struct {
	ParameterBlock *ParameterBlock
	StartTimestamp uint64
	EndTimestamp   uint64
}
