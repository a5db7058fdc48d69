// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli_test

import (
	"bytes"
	"testing"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/internal/memstream"
	"github.com/soundpatch/ipatch/sample"
	"github.com/soundpatch/ipatch/sli"
)

// TestWriteReadRoundTrip builds a two-instrument group sharing one
// sample, writes it to an in-memory backend, reads it back, and checks
// that structure and sample bytes survive intact (spec.md §8 scenario 6
// covers partitioning; this covers the wire round trip itself).
func TestWriteReadRoundTrip(t *testing.T) {
	f, err := sample.NewFormat(sample.Width16, 1, false, false)
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	ram := sample.NewRAM(f, 4, 44100, sample.WithBuffer(pcm))

	shared := &sli.Sample{
		Name:       "Snare",
		RootNote:   60,
		Channels:   1,
		SampleRate: 44100,
		Store:      ram,
	}

	zone1 := &sli.Zone{KeyLow: 0, KeyHigh: 63, VelLow: 0, VelHigh: 127, Sample: shared, Generators: sli.Generators{}}
	zone1.Generators.Set(sli.GenAttenuation, 5)
	zone2 := &sli.Zone{KeyLow: 64, KeyHigh: 127, VelLow: 0, VelHigh: 127, Sample: shared, Generators: sli.Generators{}}

	inst1 := &sli.Instrument{Name: "Lead", SoundID: 1, Zones: []*sli.Zone{zone1}}
	inst2 := &sli.Instrument{Name: "Pad", SoundID: 2, Zones: []*sli.Zone{zone2}}

	patch := &sli.Patch{Instruments: []*sli.Instrument{inst1, inst2}}

	backend := memstream.New(nil)
	h := filehandle.New(backend)

	if _, err := sli.WriteFile(h, patch, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	decoded, err := sli.ReadFile(h, nil)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if len(decoded.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(decoded.Groups))
	}
	g := decoded.Groups[0]
	if len(g.Instruments) != 2 {
		t.Fatalf("got %d instruments, want 2", len(g.Instruments))
	}
	if g.Instruments[0].Name != "Lead" || g.Instruments[1].Name != "Pad" {
		t.Fatalf("instrument names = %q, %q", g.Instruments[0].Name, g.Instruments[1].Name)
	}
	if len(g.Samples) != 1 {
		t.Fatalf("got %d samples, want 1 (deduped)", len(g.Samples))
	}

	z := g.Instruments[0].Zones[0]
	if z.KeyLow != 0 || z.KeyHigh != 63 {
		t.Fatalf("zone key range = %d..%d, want 0..63", z.KeyLow, z.KeyHigh)
	}
	if got := z.Generators.Get(sli.GenAttenuation); got != 5 {
		t.Fatalf("attenuation = %d, want 5", got)
	}
	if g.Instruments[1].Zones[0].Sample != z.Sample {
		t.Fatal("expected both zones to resolve to the same deduped sample")
	}

	store := z.Sample.Store
	if store.FrameCount() != 4 {
		t.Fatalf("FrameCount = %d, want 4", store.FrameCount())
	}
	sh, err := store.Open(sample.ModeRead)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	out := make([]byte, 8)
	if err := sh.Read(0, 4, out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(out, pcm) {
		t.Fatalf("sample data = %v, want %v", out, pcm)
	}
}
