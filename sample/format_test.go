// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample_test

import "testing"

import "github.com/soundpatch/ipatch/sample"

func TestFormatRoundTrip(t *testing.T) {
	f, err := sample.NewFormat(sample.Width24In32, 6, true, true)
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}
	if f.Width() != sample.Width24In32 {
		t.Fatalf("Width = %v", f.Width())
	}
	if f.Channels() != 6 {
		t.Fatalf("Channels = %d, want 6", f.Channels())
	}
	if !f.Unsigned() {
		t.Fatal("expected unsigned")
	}
	if !f.BigEndian() {
		t.Fatal("expected big-endian")
	}
}

func TestFormatUnsignedFloatInvalid(t *testing.T) {
	if _, err := sample.NewFormat(sample.WidthFloat32, 1, true, false); err == nil {
		t.Fatal("expected error for unsigned float")
	}
}

func TestFormatChannelsOutOfRange(t *testing.T) {
	if _, err := sample.NewFormat(sample.Width16, 9, false, false); err == nil {
		t.Fatal("expected error for 9 channels")
	}
	if _, err := sample.NewFormat(sample.Width16, 0, false, false); err == nil {
		t.Fatal("expected error for 0 channels")
	}
}

func TestEffectiveBits(t *testing.T) {
	cases := []struct {
		width sample.Width
		want  int
	}{
		{sample.WidthFloat32, 23},
		{sample.WidthFloat64, 52},
		{sample.Width24In32, 24},
		{sample.Width24In3Bytes, 24},
		{sample.Width16, 16},
	}
	for _, c := range cases {
		f, err := sample.NewFormat(c.width, 1, false, false)
		if err != nil {
			t.Fatalf("NewFormat(%v): %v", c.width, err)
		}
		if got := f.EffectiveBits(); got != c.want {
			t.Fatalf("EffectiveBits(%v) = %d, want %d", c.width, got, c.want)
		}
	}
}
