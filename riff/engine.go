// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package riff

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soundpatch/ipatch/filehandle"
)

// Status is the engine's current state machine position (spec.md §4.2.1).
type Status int

const (
	// StatusBegin means the engine has never been driven.
	StatusBegin Status = iota
	// StatusNormal means at least one chunk is open and more may follow.
	StatusNormal
	// StatusChunkEnd means the current innermost list chunk has no more
	// children, or the current chunk is a SUB chunk.
	StatusChunkEnd
	// StatusFinished means the outermost chunk has been closed.
	StatusFinished
	// StatusFail is sticky: no further operations succeed until Reset.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusBegin:
		return "BEGIN"
	case StatusNormal:
		return "NORMAL"
	case StatusChunkEnd:
		return "CHUNK_END"
	case StatusFinished:
		return "FINISHED"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Mode selects whether the Engine is reading or writing.
type Mode int

const (
	ModeUnset Mode = iota
	ModeRead
	ModeWrite
)

// Engine walks or emits a tree of FOURCC chunks over a filehandle.Handle,
// maintaining the chunk stack and its invariants (spec.md §4.2). A failure
// in any method is sticky: Status becomes StatusFail and every subsequent
// call returns the stored error until Reset is called.
type Engine struct {
	h      *filehandle.Handle
	mode   Mode
	status Status
	err    error

	chunks          []Chunk
	sizeFieldOffset []uint32
	savedStates     []savedState
}

type savedState struct {
	chunks []Chunk
}

// NewEngine creates an Engine over h. The engine starts in StatusBegin.
func NewEngine(h *filehandle.Handle) *Engine {
	return &Engine{h: h, status: StatusBegin}
}

// Status returns the engine's current status.
func (e *Engine) Status() Status { return e.status }

// Mode returns the engine's current read/write mode.
func (e *Engine) Mode() Mode { return e.mode }

// Err returns the sticky error that put the engine into StatusFail, or nil.
func (e *Engine) Err() error { return e.err }

// Reset clears any failure and returns the engine to StatusBegin, ready to
// be driven again (e.g. over a new file handle).
func (e *Engine) Reset() {
	e.mode = ModeUnset
	e.status = StatusBegin
	e.err = nil
	e.chunks = nil
	e.sizeFieldOffset = nil
	e.savedStates = nil
}

// Chunks returns a copy of the current chunk stack, outermost first.
func (e *Engine) Chunks() []Chunk {
	cp := make([]Chunk, len(e.chunks))
	copy(cp, e.chunks)
	return cp
}

// Current returns the innermost open chunk, or false if none is open.
func (e *Engine) Current() (Chunk, bool) {
	if len(e.chunks) == 0 {
		return Chunk{}, false
	}
	return e.chunks[len(e.chunks)-1], true
}

func (e *Engine) checkFail() error {
	if e.status == StatusFail {
		return e.err
	}
	return nil
}

func (e *Engine) fail(err error) error {
	e.status = StatusFail
	e.err = err
	return err
}

// syncPositions recomputes every open chunk's Position from the current
// underlying file offset (spec.md §4.2.4): each chunk's Position is
// current_file_offset - chunk.FileOffset.
func (e *Engine) syncPositions() error {
	if len(e.chunks) == 0 {
		return nil
	}
	pos, err := e.h.Position()
	if err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	for i := range e.chunks {
		e.chunks[i].Position = int32(pos) - int32(e.chunks[i].FileOffset)
	}
	return nil
}

func classify(tag FourCC) Kind {
	switch tag {
	case TagLIST:
		return KindLIST
	case TagRIFF, TagRIFX:
		return KindRIFF
	default:
		return KindSUB
	}
}

// ---- read protocol ----

// StartRead resets the engine, reads the outermost chunk, requires it to
// be RIFF or RIFX, and configures the handle's endian mode accordingly
// (little for "RIFF", big for "RIFX"). It fails with ErrNotRIFF otherwise.
func (e *Engine) StartRead() (*Chunk, error) {
	e.Reset()
	e.mode = ModeRead

	var tag FourCC
	if err := e.h.Read(tag[:]); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	switch tag {
	case TagRIFF:
		e.h.SetLittleEndian()
	case TagRIFX:
		e.h.SetBigEndian()
	default:
		return nil, e.fail(fmt.Errorf("%w: got %q", ErrNotRIFF, tag.String()))
	}
	ck, err := e.finishReadHeader(tag)
	if err != nil {
		return nil, err
	}
	e.status = StatusNormal
	return ck, nil
}

// StartReadChunk resets the engine and reads the outermost chunk like
// StartRead, but accepts any chunk kind and does not auto-detect endian.
func (e *Engine) StartReadChunk() (*Chunk, error) {
	e.Reset()
	e.mode = ModeRead

	var tag FourCC
	if err := e.h.Read(tag[:]); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	ck, err := e.finishReadHeader(tag)
	if err != nil {
		return nil, err
	}
	e.status = StatusNormal
	return ck, nil
}

// ReadChunk reads the next chunk at the current nesting level. It returns
// (nil, nil) and sets Status to StatusChunkEnd if the innermost chunk is a
// SUB chunk or has no more children.
func (e *Engine) ReadChunk() (*Chunk, error) {
	if err := e.checkFail(); err != nil {
		return nil, err
	}
	if len(e.chunks) > 0 {
		top := &e.chunks[len(e.chunks)-1]
		if top.Kind == KindSUB || top.remaining() <= 0 {
			e.status = StatusChunkEnd
			return nil, nil
		}
	}
	var tag FourCC
	if err := e.h.Read(tag[:]); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	ck, err := e.finishReadHeader(tag)
	if err != nil {
		return nil, err
	}
	e.status = StatusNormal
	return ck, nil
}

// finishReadHeader reads the size (and, for list kinds, the secondary
// FourCC) following an already-read tag, validates it, enforces the
// parent-bounds invariant, and pushes the new chunk.
func (e *Engine) finishReadHeader(tag FourCC) (*Chunk, error) {
	kind := classify(tag)
	if kind == KindRIFF && len(e.chunks) > 0 {
		return nil, e.fail(fmt.Errorf("%w: nested RIFF chunk %q", ErrUnexpectedID, tag.String()))
	}
	if !tag.Valid() {
		return nil, e.fail(fmt.Errorf("%w: %q", ErrInvalidID, tag.String()))
	}
	size, err := e.h.ReadU32()
	if err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	isList := kind == KindLIST || kind == KindRIFF
	var listID FourCC
	if isList {
		if size%2 != 0 {
			return nil, e.fail(fmt.Errorf("%w: %q size=%d", ErrOddSize, tag.String(), size))
		}
		if err := e.h.Read(listID[:]); err != nil {
			return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
		}
	}
	pos, err := e.h.Position()
	if err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	var fileOffset uint32
	var startPos int32
	if isList {
		fileOffset = uint32(pos) - 4
		startPos = 4
	} else {
		fileOffset = uint32(pos)
		startPos = 0
	}
	ck := Chunk{Kind: kind, ID: tag, ListID: listID, Size: size, FileOffset: fileOffset, Position: startPos}
	if len(e.chunks) > 0 {
		parent := &e.chunks[len(e.chunks)-1]
		childEnd := int64(ck.FileOffset-parent.FileOffset) + int64(roundUpEven(ck.Size))
		if childEnd > int64(parent.Size) {
			return nil, e.fail(fmt.Errorf(
				"%w: %s",
				ErrSizeExceeded,
				e.MessageDetail("child %q size=%d exceeds parent %q size=%d", tag.String(), size, parent.ID.String(), parent.Size),
			))
		}
	}
	e.chunks = append(e.chunks, ck)
	return &e.chunks[len(e.chunks)-1], nil
}

// ReadChunkVerify reads the next chunk and fails with ErrUnexpectedID if it
// doesn't match kind/id, or ErrUnexpectedChunkEnd if the list was empty.
func (e *Engine) ReadChunkVerify(kind Kind, id FourCC) (*Chunk, error) {
	ck, err := e.ReadChunk()
	if err != nil {
		return nil, err
	}
	if ck == nil {
		return nil, e.fail(fmt.Errorf("%w: expected %q", ErrUnexpectedChunkEnd, id.String()))
	}
	if ck.Kind != kind || ck.ID != id {
		return nil, e.fail(fmt.Errorf(
			"%w: expected kind=%v id=%q, got kind=%v id=%q",
			ErrUnexpectedID, kind, id.String(), ck.Kind, ck.ID.String(),
		))
	}
	return ck, nil
}

// SkipChunks reads and closes the next n chunks at the current nesting
// level.
func (e *Engine) SkipChunks(n int) error {
	for i := 0; i < n; i++ {
		ck, err := e.ReadChunk()
		if err != nil {
			return err
		}
		if ck == nil {
			return nil
		}
		if err := e.CloseChunk(-1); err != nil {
			return err
		}
	}
	return nil
}

// ---- write protocol ----

// StartWrite resets the engine for writing. Callers should set the desired
// endian mode on the handle (SetLittleEndian/SetBigEndian) before the
// first WriteChunk call that writes the outer "RIFF"/"RIFX" tag.
func (e *Engine) StartWrite() {
	e.Reset()
	e.mode = ModeWrite
}

// WriteChunk writes an 8-byte chunk header (12 bytes for list kinds,
// including the secondary FourCC) with a placeholder size to be patched
// on CloseChunk, and pushes the new chunk.
func (e *Engine) WriteChunk(kind Kind, id FourCC, listID FourCC) (*Chunk, error) {
	if err := e.checkFail(); err != nil {
		return nil, err
	}
	if !id.Valid() {
		return nil, e.fail(fmt.Errorf("%w: %q", ErrInvalidID, id.String()))
	}
	if kind == KindRIFF && len(e.chunks) > 0 {
		return nil, e.fail(fmt.Errorf("%w: nested RIFF chunk %q", ErrUnexpectedID, id.String()))
	}
	isList := kind == KindLIST || kind == KindRIFF
	if isList && !listID.Valid() {
		return nil, e.fail(fmt.Errorf("%w: %q", ErrInvalidID, listID.String()))
	}

	headerStart, err := e.h.Position()
	if err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	e.h.Write(id[:])
	e.h.WriteU32(0)
	if isList {
		e.h.Write(listID[:])
	}
	if err := e.h.Commit(); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	pos, err := e.h.Position()
	if err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	var fileOffset uint32
	var startPos int32
	if isList {
		fileOffset = uint32(pos) - 4
		startPos = 4
	} else {
		fileOffset = uint32(pos)
		startPos = 0
	}
	ck := Chunk{
		Kind: kind, ID: id, ListID: listID, Size: 0,
		FileOffset: fileOffset, Position: startPos,
	}
	e.chunks = append(e.chunks, ck)
	e.sizeFieldOffset = append(e.sizeFieldOffset, uint32(headerStart)+4)
	if err := e.syncPositions(); err != nil {
		return nil, err
	}
	e.status = StatusNormal
	return &e.chunks[len(e.chunks)-1], nil
}

// CloseChunk closes chunks from the innermost through level (inclusive).
// A negative level is resolved Python-style against the current stack
// depth, so level == -1 closes exactly the innermost chunk.
func (e *Engine) CloseChunk(level int) error {
	if err := e.checkFail(); err != nil {
		return err
	}
	if len(e.chunks) == 0 {
		return e.fail(ErrNoOpenChunk)
	}
	idx := level
	if level < 0 {
		idx = len(e.chunks) + level
	}
	if idx < 0 || idx > len(e.chunks) {
		return e.fail(ErrInvalidCloseLevel)
	}
	// Payload bytes read or written by the caller since the last chunk
	// operation have moved the file position; bring Position up to date
	// before it is used as the skip distance or the final size.
	if err := e.syncPositions(); err != nil {
		return err
	}
	switch e.mode {
	case ModeRead:
		return e.closeChunkRead(idx)
	case ModeWrite:
		return e.closeChunkWrite(idx)
	default:
		return e.fail(errors.New("riff: engine mode not set"))
	}
}

func (e *Engine) closeChunkRead(idx int) error {
	for len(e.chunks) > idx {
		top := e.chunks[len(e.chunks)-1]
		toSkip := int64(roundUpEven(top.Size)) - int64(top.Position)
		if toSkip > 0 {
			if _, err := e.h.Seek(toSkip, io.SeekCurrent); err != nil {
				return e.fail(fmt.Errorf("%w: %v", ErrIO, err))
			}
		}
		e.chunks = e.chunks[:len(e.chunks)-1]
		if err := e.syncPositions(); err != nil {
			return err
		}
	}
	if len(e.chunks) == 0 {
		e.status = StatusFinished
	} else {
		e.status = StatusNormal
	}
	return nil
}

func (e *Engine) closeChunkWrite(idx int) error {
	for len(e.chunks) > idx {
		i := len(e.chunks) - 1
		finalSize := uint32(e.chunks[i].Position)
		if finalSize%2 != 0 {
			e.h.WriteU8(0)
			if err := e.h.Commit(); err != nil {
				return e.fail(fmt.Errorf("%w: %v", ErrIO, err))
			}
			if err := e.syncPositions(); err != nil {
				return err
			}
		}
		off := e.sizeFieldOffset[i]
		if err := e.h.PatchU32At(int64(off), finalSize); err != nil {
			return e.fail(fmt.Errorf("%w: %v", ErrIO, err))
		}
		e.chunks[i].Size = finalSize
		e.chunks = e.chunks[:i]
		e.sizeFieldOffset = e.sizeFieldOffset[:i]
		if err := e.syncPositions(); err != nil {
			return err
		}
	}
	if len(e.chunks) == 0 {
		e.status = StatusFinished
	} else {
		e.status = StatusNormal
	}
	return nil
}

// ---- state save/restore ----

// PushState deep-copies the chunk stack onto an internal stack of saved
// states.
func (e *Engine) PushState() error {
	if err := e.checkFail(); err != nil {
		return err
	}
	cp := make([]Chunk, len(e.chunks))
	copy(cp, e.chunks)
	e.savedStates = append(e.savedStates, savedState{chunks: cp})
	return nil
}

// PopState restores the most recently pushed chunk stack and seeks the
// underlying stream to the restored innermost chunk's current position.
// A seek failure here is fatal: it fails the engine.
func (e *Engine) PopState() error {
	if err := e.checkFail(); err != nil {
		return err
	}
	if len(e.savedStates) == 0 {
		return e.fail(errors.New("riff: no saved state to restore"))
	}
	st := e.savedStates[len(e.savedStates)-1]
	e.savedStates = e.savedStates[:len(e.savedStates)-1]
	e.chunks = st.chunks

	if len(e.chunks) == 0 {
		e.status = StatusFinished
		return nil
	}
	inner := e.chunks[len(e.chunks)-1]
	target := int64(inner.FileOffset) + int64(inner.Position)
	if _, err := e.h.Seek(target, io.SeekStart); err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	if err := e.syncPositions(); err != nil {
		return err
	}
	e.status = StatusNormal
	return nil
}

// ---- diagnostics ----

// MessageDetail formats msg (sprintf-style) and appends the offset within
// the outermost chunk plus a parent->child trace of every open chunk.
func (e *Engine) MessageDetail(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if len(e.chunks) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	fmt.Fprintf(&b, " (ofs=%d): ", e.chunks[0].Position)
	for i, ck := range e.chunks {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "'%s' ofs=%d size=%d", ck.ID.String(), ck.Position, ck.Size)
	}
	return b.String()
}
