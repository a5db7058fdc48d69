// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package filehandle_test

import (
	"errors"
	"io"
	"testing"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/internal/memstream"
)

func TestReadTyped(t *testing.T) {
	backend := memstream.New([]byte{
		0x01,
		0x02, 0x01, // u16 LE = 0x0102
		0x04, 0x03, 0x02, 0x01, // u32 LE = 0x01020304
	})
	h := filehandle.New(backend)

	u8, err := h.ReadU8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("ReadU8 = %v, %v", u8, err)
	}
	u16, err := h.ReadU16()
	if err != nil || u16 != 0x0102 {
		t.Fatalf("ReadU16 = %v, %v", u16, err)
	}
	u32, err := h.ReadU32()
	if err != nil || u32 != 0x01020304 {
		t.Fatalf("ReadU32 = %v, %v", u32, err)
	}
}

func TestReadShort(t *testing.T) {
	backend := memstream.New([]byte{0x01})
	h := filehandle.New(backend)
	if _, err := h.ReadU32(); !errors.Is(err, filehandle.ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestWriteCommitFlow(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)

	h.WriteU32(0xAABBCCDD)
	if !h.Dirty() {
		t.Fatal("expected dirty stage buffer after Write")
	}
	if _, err := h.Seek(0, io.SeekStart); !errors.Is(err, filehandle.ErrStageDirty) {
		t.Fatalf("expected ErrStageDirty, got %v", err)
	}
	if err := h.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if h.Dirty() {
		t.Fatal("expected clean stage buffer after Commit")
	}
	pos, err := h.Position()
	if err != nil || pos != 4 {
		t.Fatalf("Position = %d, %v, want 4", pos, err)
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got, err := h.ReadU32()
	if err != nil || got != 0xAABBCCDD {
		t.Fatalf("ReadU32 = %#x, %v", got, err)
	}
}

func TestPatchU32At(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)

	h.WriteU32(0) // placeholder size field
	h.Write([]byte("DATA"))
	if err := h.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	posAfterHeader, err := h.Position()
	if err != nil {
		t.Fatal(err)
	}

	if err := h.PatchU32At(0, 0x12345678); err != nil {
		t.Fatalf("PatchU32At: %v", err)
	}
	posAfterPatch, err := h.Position()
	if err != nil {
		t.Fatal(err)
	}
	if posAfterPatch != posAfterHeader {
		t.Fatalf("position not restored: before=%d after=%d", posAfterHeader, posAfterPatch)
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	got, err := h.ReadU32()
	if err != nil || got != 0x12345678 {
		t.Fatalf("patched value = %#x, %v", got, err)
	}
}

func TestBufSeekAndZero(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)

	h.WriteBufZero(8)
	if h.BufSize() != 8 {
		t.Fatalf("BufSize = %d, want 8", h.BufSize())
	}
	if err := h.BufSeek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	h.WriteU16(0xBEEF)
	if err := h.BufSeek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	h.Write([]byte{0xFF})
	if h.BufSize() != 9 {
		t.Fatalf("BufSize = %d, want 9", h.BufSize())
	}
	if err := h.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestBufSetSize(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)
	h.Write([]byte{1, 2, 3, 4})
	h.BufSetSize(2)
	if h.BufSize() != 2 {
		t.Fatalf("BufSize = %d, want 2", h.BufSize())
	}
	h.BufSetSize(5)
	if h.BufSize() != 5 {
		t.Fatalf("BufSize = %d, want 5", h.BufSize())
	}
}

func TestSetEndian(t *testing.T) {
	backend := memstream.New([]byte{0x00, 0x01, 0x02, 0x03})
	h := filehandle.New(backend)
	h.SetBigEndian()
	v, err := h.ReadU32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x00010203 {
		t.Fatalf("ReadU32 (big-endian) = %#x, want 0x00010203", v)
	}
}
