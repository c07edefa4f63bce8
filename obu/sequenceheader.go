package obu

import (
	"fmt"
	"io"

	"github.com/BrandenAvalonCx/iamf-tools/bitbuffer"
	"github.com/BrandenAvalonCx/iamf-tools/ierrors"
)

// IASequenceHeaderCode is the FourCC identifying an IA Sequence Header OBU,
// written as four raw bytes ahead of the profile byte.
var IASequenceHeaderCode = [4]byte{'i', 'a', 'm', 'f'}

// Profile enumerates the IAMF profile a sequence declares conformance to.
type Profile uint8

const (
	ProfileSimple     Profile = 0
	ProfileBase       Profile = 1
	ProfileBaseEnhanced Profile = 2
)

// IASequenceHeader is the "IA Sequence Header" OBU payload (spec.md §4.6
// step 2): the first descriptor OBU in every sequence, carrying the ia_code
// FourCC and the profile(s) the stream conforms to.
type IASequenceHeader struct {
	PrimaryProfile   Profile
	AdditionalProfile Profile
}

func (s *IASequenceHeader) ValidateAndWritePayload(wb *bitbuffer.WriteBuffer) error {
	if err := wb.WriteUint8Slice(IASequenceHeaderCode[:]); err != nil {
		return err
	}
	if err := wb.WriteUnsignedLiteral(uint64(s.PrimaryProfile), 8); err != nil {
		return err
	}
	return wb.WriteUnsignedLiteral(uint64(s.AdditionalProfile), 8)
}

func (s *IASequenceHeader) ValidateAndReadPayload(rb *bitbuffer.ReadBuffer) error {
	code, err := rb.ReadUint8Slice(4)
	if err != nil {
		return err
	}
	if string(code) != string(IASequenceHeaderCode[:]) {
		return ierrors.InvalidArgument("ia_code %q does not match %q", code, IASequenceHeaderCode[:])
	}
	p, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	s.PrimaryProfile = Profile(p)
	a, err := rb.ReadUnsignedLiteral(8)
	if err != nil {
		return err
	}
	s.AdditionalProfile = Profile(a)
	return nil
}

func (s *IASequenceHeader) PrintObu(w io.Writer) {
	fmt.Fprintf(w, "IA Sequence Header OBU:\n")
	fmt.Fprintf(w, "  ia_code= %q\n", IASequenceHeaderCode[:])
	fmt.Fprintf(w, "  primary_profile= %d additional_profile= %d\n", s.PrimaryProfile, s.AdditionalProfile)
}
