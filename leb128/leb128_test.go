package leb128

import (
	"bytes"
	"testing"
)

func TestEncodeUleb128Minimum(t *testing.T) {
	pvs := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{18, []byte{0x12}},
	}
	g := NewMinimumGenerator()
	for _, pv := range pvs {
		got, err := g.EncodeUleb128(pv.v)
		if err != nil {
			t.Errorf("EncodeUleb128(%d) err %v", pv.v, err)
			continue
		}
		if !bytes.Equal(got, pv.want) {
			t.Errorf("EncodeUleb128(%d) = %x, want %x", pv.v, got, pv.want)
		}
	}
}

func TestFixedSizeAlwaysEmitsExactWidth(t *testing.T) {
	for k := 1; k <= MaxSize; k++ {
		g, err := NewFixedSizeGenerator(k)
		if err != nil {
			t.Fatalf("NewFixedSizeGenerator(%d) err %v", k, err)
		}
		got, err := g.EncodeUleb128(1)
		if err != nil {
			t.Fatalf("EncodeUleb128 err %v", err)
		}
		if len(got) != k {
			t.Errorf("fixed size %d: got %d bytes", k, len(got))
		}
	}
}

func TestFixedSizeTooSmallFails(t *testing.T) {
	g, err := NewFixedSizeGenerator(1)
	if err != nil {
		t.Fatalf("NewFixedSizeGenerator err %v", err)
	}
	if _, err := g.EncodeUleb128(200); err == nil {
		t.Errorf("expected error encoding 200 into a 1-byte fixed leb128")
	}
}

func TestFixedSizeOutOfRange(t *testing.T) {
	if _, err := NewFixedSizeGenerator(0); err == nil {
		t.Errorf("expected error for size 0")
	}
	if _, err := NewFixedSizeGenerator(9); err == nil {
		t.Errorf("expected error for size 9")
	}
}

func TestUleb128RoundTrip(t *testing.T) {
	vs := []uint64{0, 1, 18, 127, 128, 300, 1 << 20, 1<<35 + 7}
	g := NewMinimumGenerator()
	for _, v := range vs {
		encoded, err := g.EncodeUleb128(v)
		if err != nil {
			t.Fatalf("EncodeUleb128(%d) err %v", v, err)
		}
		got, n, err := DecodeUleb128(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("DecodeUleb128 err %v", err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if n != len(encoded) {
			t.Errorf("round trip %d: consumed %d bytes, want %d", v, n, len(encoded))
		}
	}
}

func TestSleb128RoundTrip(t *testing.T) {
	vs := []int64{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000}
	g := NewMinimumGenerator()
	for _, v := range vs {
		encoded, err := g.EncodeSleb128(v)
		if err != nil {
			t.Fatalf("EncodeSleb128(%d) err %v", v, err)
		}
		got, n, err := DecodeSleb128(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("DecodeSleb128 err %v", err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if n != len(encoded) {
			t.Errorf("round trip %d: consumed %d bytes, want %d", v, n, len(encoded))
		}
	}
}

func TestFixedSizeSignedRoundTrip(t *testing.T) {
	g, err := NewFixedSizeGenerator(4)
	if err != nil {
		t.Fatalf("NewFixedSizeGenerator err %v", err)
	}
	vs := []int64{0, 1, -1, 63, -64}
	for _, v := range vs {
		encoded, err := g.EncodeSleb128(v)
		if err != nil {
			t.Fatalf("EncodeSleb128(%d) err %v", v, err)
		}
		if len(encoded) != 4 {
			t.Fatalf("EncodeSleb128(%d) = %d bytes, want 4", v, len(encoded))
		}
		got, _, err := DecodeSleb128(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("DecodeSleb128 err %v", err)
		}
		if got != v {
			t.Errorf("fixed-size round trip %d: got %d", v, got)
		}
	}
}
