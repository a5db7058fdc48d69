// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample_test

import (
	"bytes"
	"testing"

	"github.com/soundpatch/ipatch/sample"
)

func mustFormat(t *testing.T, width sample.Width, channels int) sample.Format {
	t.Helper()
	f, err := sample.NewFormat(width, channels, false, false)
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}
	return f
}

// TestVirtualStoreContiguousMerge checks that two adjacent, same-source
// runs are merged into one on insert.
func TestVirtualStoreContiguousMerge(t *testing.T) {
	f := mustFormat(t, sample.Width16, 1)
	src := sample.NewRAM(f, 100, 44100)

	v := sample.NewVirtual(f, 44100)
	if err := v.AppendRun(0, 10, src, 0, 0); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := v.AppendRun(0, 10, src, 10, 0); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	runs := v.Runs(0)
	if len(runs) != 1 {
		t.Fatalf("expected merged single run, got %d: %+v", len(runs), runs)
	}
	if runs[0].Length != 20 {
		t.Fatalf("merged run length = %d, want 20", runs[0].Length)
	}
}

// TestVirtualStoreNonContiguousNotMerged checks that a gap in the source
// range produces two distinct runs.
func TestVirtualStoreNonContiguousNotMerged(t *testing.T) {
	f := mustFormat(t, sample.Width16, 1)
	src := sample.NewRAM(f, 100, 44100)

	v := sample.NewVirtual(f, 44100)
	if err := v.AppendRun(0, 10, src, 0, 0); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := v.AppendRun(0, 10, src, 20, 0); err != nil { // gap: 10 frames skipped
		t.Fatalf("AppendRun: %v", err)
	}
	runs := v.Runs(0)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

// TestVirtualStoreRead checks that reading across a run boundary returns
// the correct, source-resolved samples.
func TestVirtualStoreRead(t *testing.T) {
	f := mustFormat(t, sample.Width16, 1)
	srcA := sample.NewRAM(f, 4, 44100, sample.WithBuffer([]byte{
		1, 0, 2, 0, 3, 0, 4, 0,
	}))
	srcB := sample.NewRAM(f, 4, 44100, sample.WithBuffer([]byte{
		10, 0, 20, 0, 30, 0, 40, 0,
	}))

	v := sample.NewVirtual(f, 44100)
	if err := v.AppendRun(0, 2, srcA, 0, 0); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := v.AppendRun(0, 2, srcB, 2, 0); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}

	h, err := v.Open(sample.ModeRead)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	out := make([]byte, 8)
	if err := h.Read(0, 4, out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []byte{1, 0, 2, 0, 30, 0, 40, 0}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}
