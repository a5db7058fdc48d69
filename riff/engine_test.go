// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package riff_test

import (
	"bytes"
	"testing"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/internal/memstream"
	"github.com/soundpatch/ipatch/riff"
)

// TestWriteMinimalRIFF builds RIFF('INFO' ICMT("Hi")) and checks the
// resulting bytes. The outer RIFF size field must be the payload size,
// 0x0E (4 bytes of "INFO" + 8-byte ICMT header + 2-byte payload), not the
// total file size including the outer 8-byte header.
func TestWriteMinimalRIFF(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	e.StartWrite()
	if _, err := e.WriteChunk(riff.KindRIFF, riff.TagRIFF, riff.Tag("INFO")); err != nil {
		t.Fatalf("WriteChunk RIFF: %v", err)
	}
	if _, err := e.WriteChunk(riff.KindSUB, riff.Tag("ICMT"), riff.FourCC{}); err != nil {
		t.Fatalf("WriteChunk ICMT: %v", err)
	}
	h.Write([]byte("Hi"))
	if err := h.Commit(); err != nil {
		t.Fatalf("Commit payload: %v", err)
	}
	if err := e.CloseChunk(-1); err != nil { // close ICMT
		t.Fatalf("CloseChunk ICMT: %v", err)
	}
	if err := e.CloseChunk(-1); err != nil { // close RIFF
		t.Fatalf("CloseChunk RIFF: %v", err)
	}
	if e.Status() != riff.StatusFinished {
		t.Fatalf("Status = %v, want Finished", e.Status())
	}

	want := []byte{
		'R', 'I', 'F', 'F', 0x0E, 0x00, 0x00, 0x00,
		'I', 'N', 'F', 'O',
		'I', 'C', 'M', 'T', 0x02, 0x00, 0x00, 0x00,
		'H', 'i',
	}
	if got := backend.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("bytes =\n% X\nwant\n% X", got, want)
	}
}

// TestReadMinimalRIFF reads back the exact bytes TestWriteMinimalRIFF
// produces and verifies the chunk tree.
func TestReadMinimalRIFF(t *testing.T) {
	raw := []byte{
		'R', 'I', 'F', 'F', 0x0E, 0x00, 0x00, 0x00,
		'I', 'N', 'F', 'O',
		'I', 'C', 'M', 'T', 0x02, 0x00, 0x00, 0x00,
		'H', 'i',
	}
	backend := memstream.New(raw)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	outer, err := e.StartRead()
	if err != nil {
		t.Fatalf("StartRead: %v", err)
	}
	if outer.Kind != riff.KindRIFF || outer.ListID != riff.Tag("INFO") {
		t.Fatalf("outer = %+v", outer)
	}
	if h.BigEndian() {
		t.Fatal("expected little-endian for RIFF")
	}

	sub, err := e.ReadChunkVerify(riff.KindSUB, riff.Tag("ICMT"))
	if err != nil {
		t.Fatalf("ReadChunkVerify: %v", err)
	}
	if sub.Size != 2 {
		t.Fatalf("ICMT size = %d, want 2", sub.Size)
	}
	payload := make([]byte, 2)
	if err := h.Read(payload); err != nil {
		t.Fatalf("Read payload: %v", err)
	}
	if string(payload) != "Hi" {
		t.Fatalf("payload = %q, want %q", payload, "Hi")
	}
	if err := e.CloseChunk(-1); err != nil { // close ICMT
		t.Fatalf("CloseChunk ICMT: %v", err)
	}

	next, err := e.ReadChunk()
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if next != nil {
		t.Fatalf("expected chunk end, got %+v", next)
	}
	if e.Status() != riff.StatusChunkEnd {
		t.Fatalf("Status = %v, want ChunkEnd", e.Status())
	}

	if err := e.CloseChunk(-1); err != nil { // close RIFF
		t.Fatalf("CloseChunk RIFF: %v", err)
	}
	if e.Status() != riff.StatusFinished {
		t.Fatalf("Status = %v, want Finished", e.Status())
	}
}

// TestWriteOddPayloadPad builds a SUB chunk with a 3-byte (odd) payload
// and checks that the writer emits a single pad byte, that the pad isn't
// counted in the declared size, and that the parent's declared size does
// include the pad byte.
func TestWriteOddPayloadPad(t *testing.T) {
	backend := memstream.New(nil)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	e.StartWrite()
	if _, err := e.WriteChunk(riff.KindRIFF, riff.TagRIFF, riff.Tag("data")); err != nil {
		t.Fatalf("WriteChunk RIFF: %v", err)
	}
	if _, err := e.WriteChunk(riff.KindSUB, riff.Tag("DATA"), riff.FourCC{}); err != nil {
		t.Fatalf("WriteChunk DATA: %v", err)
	}
	h.Write([]byte("odd"))
	if err := h.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := e.CloseChunk(-1); err != nil { // close DATA: expect pad
		t.Fatalf("CloseChunk DATA: %v", err)
	}
	if err := e.CloseChunk(-1); err != nil { // close RIFF
		t.Fatalf("CloseChunk RIFF: %v", err)
	}

	want := []byte{
		'R', 'I', 'F', 'F', 0x10, 0x00, 0x00, 0x00, // 4(listid) + 4(DATA) + 4(size) + 3(payload) + 1(pad) = 16
		'd', 'a', 't', 'a',
		'D', 'A', 'T', 'A', 0x03, 0x00, 0x00, 0x00,
		'o', 'd', 'd', 0x00,
	}
	// RIFF payload = listID(4) + DATA header(8) + payload(3) + pad(1) = 16 = 0x10
	want[4], want[5], want[6], want[7] = 0x10, 0x00, 0x00, 0x00
	if got := backend.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("bytes =\n% X\nwant\n% X", got, want)
	}
}

// TestStartReadRIFX verifies big-endian auto-detection from the "RIFX"
// outer tag.
func TestStartReadRIFX(t *testing.T) {
	raw := []byte{
		'R', 'I', 'F', 'X', 0x00, 0x00, 0x00, 0x10,
		'f', 'm', 't', ' ',
		'S', 'U', 'B', ' ', 0x00, 0x00, 0x00, 0x04,
		0x01, 0x02, 0x03, 0x04,
	}
	backend := memstream.New(raw)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	outer, err := e.StartRead()
	if err != nil {
		t.Fatalf("StartRead: %v", err)
	}
	if outer.ID != riff.TagRIFX || outer.Kind != riff.KindRIFF {
		t.Fatalf("outer = %+v", outer)
	}
	if !h.BigEndian() {
		t.Fatal("expected big-endian mode after RIFX")
	}

	sub, err := e.ReadChunkVerify(riff.KindSUB, riff.Tag("SUB "))
	if err != nil {
		t.Fatalf("ReadChunkVerify: %v", err)
	}
	if sub.Size != 4 {
		t.Fatalf("SUB size = %d, want 4", sub.Size)
	}
}

// TestNestedRIFFRejected checks that a RIFF/RIFX tag nested below the
// outermost level fails with ErrUnexpectedID.
func TestNestedRIFFRejected(t *testing.T) {
	raw := []byte{
		'R', 'I', 'F', 'F', 0x0C, 0x00, 0x00, 0x00,
		'w', 'a', 'v', 'e',
		'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00,
	}
	backend := memstream.New(raw)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	if _, err := e.StartRead(); err != nil {
		t.Fatalf("StartRead: %v", err)
	}
	if _, err := e.ReadChunk(); err == nil {
		t.Fatal("expected error reading nested RIFF chunk")
	}
	if e.Status() != riff.StatusFail {
		t.Fatalf("Status = %v, want Fail", e.Status())
	}
}

// TestSizeExceededRejected checks that a child chunk whose declared size
// would overrun its parent's declared size fails with ErrSizeExceeded.
func TestSizeExceededRejected(t *testing.T) {
	raw := []byte{
		'R', 'I', 'F', 'F', 0x08, 0x00, 0x00, 0x00,
		'w', 'a', 'v', 'e',
		'b', 'i', 'g', ' ', 0xFF, 0x00, 0x00, 0x00,
	}
	backend := memstream.New(raw)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	if _, err := e.StartRead(); err != nil {
		t.Fatalf("StartRead: %v", err)
	}
	if _, err := e.ReadChunk(); err == nil {
		t.Fatal("expected size-exceeded error")
	}
}

// TestPushPopState verifies that lookahead via PushState/PopState restores
// both the chunk stack and the underlying cursor.
func TestPushPopState(t *testing.T) {
	raw := []byte{
		'R', 'I', 'F', 'F', 0x18, 0x00, 0x00, 0x00,
		'l', 'i', 's', 't',
		'a', 'a', 'a', 'a', 0x02, 0x00, 0x00, 0x00, 0x01, 0x02,
		'b', 'b', 'b', 'b', 0x02, 0x00, 0x00, 0x00, 0x03, 0x04,
	}
	backend := memstream.New(raw)
	h := filehandle.New(backend)
	e := riff.NewEngine(h)

	if _, err := e.StartRead(); err != nil {
		t.Fatalf("StartRead: %v", err)
	}
	if err := e.PushState(); err != nil {
		t.Fatalf("PushState: %v", err)
	}
	first, err := e.ReadChunk()
	if err != nil || first.ID != riff.Tag("aaaa") {
		t.Fatalf("ReadChunk first = %+v, %v", first, err)
	}
	if err := e.CloseChunk(-1); err != nil {
		t.Fatalf("CloseChunk: %v", err)
	}

	if err := e.PopState(); err != nil {
		t.Fatalf("PopState: %v", err)
	}
	again, err := e.ReadChunk()
	if err != nil || again.ID != riff.Tag("aaaa") {
		t.Fatalf("ReadChunk after PopState = %+v, %v", again, err)
	}
}
