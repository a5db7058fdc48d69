// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package filehandle

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Backend is the minimal interface a host environment must provide. It is
// satisfied by *os.File and by an in-memory implementation for tests.
type Backend interface {
	io.Reader
	io.Writer
	io.Seeker
}

// Handle is a byte-oriented stream with seek, configurable endianness, and
// a deferred-commit write-staging buffer.
type Handle struct {
	backend Backend
	order   binary.ByteOrder

	stage    []byte
	stagePos int
}

// New wraps backend in a Handle. The initial endian mode is little-endian;
// callers typically set it explicitly after sniffing the outer RIFF tag
// (see riff.Engine.StartRead).
func New(backend Backend) *Handle {
	return &Handle{
		backend: backend,
		order:   binary.LittleEndian,
	}
}

// SetLittleEndian configures subsequent typed reads/writes to use
// little-endian byte order. It does not transform any bytes already on
// disk.
func (h *Handle) SetLittleEndian() { h.order = binary.LittleEndian }

// SetBigEndian configures subsequent typed reads/writes to use big-endian
// byte order. It does not transform any bytes already on disk.
func (h *Handle) SetBigEndian() { h.order = binary.BigEndian }

// BigEndian reports whether the handle is currently in big-endian mode.
func (h *Handle) BigEndian() bool {
	return h.order == binary.BigEndian
}

// Order returns the handle's current byte order.
func (h *Handle) Order() binary.ByteOrder { return h.order }

// Read blocks until len(out) bytes have been read from the underlying
// stream or an error occurs. A short read (fewer bytes available than
// requested) is reported as ErrShortRead wrapping the underlying cause.
func (h *Handle) Read(out []byte) error {
	if len(out) == 0 {
		return nil
	}
	n, err := io.ReadFull(h.backend, out)
	if err != nil {
		return fmt.Errorf("%w: read %d of %d bytes: %v", ErrShortRead, n, len(out), err)
	}
	return nil
}

// Write appends n_bytes from buf to the stage buffer at the current stage
// cursor, overwriting any bytes already staged there and growing the
// stage buffer as needed. Staged bytes are not visible on the underlying
// stream until Commit.
func (h *Handle) Write(buf []byte) {
	need := h.stagePos + len(buf)
	if need > len(h.stage) {
		grown := make([]byte, need)
		copy(grown, h.stage)
		h.stage = grown
	}
	copy(h.stage[h.stagePos:need], buf)
	h.stagePos = need
}

// WriteBufZero reserves and zero-fills n_bytes in the stage buffer at the
// current cursor, advancing the cursor by n_bytes. It is used to reserve a
// header region (e.g. a chunk size field) that will be patched later via
// BufSeek + a typed write.
func (h *Handle) WriteBufZero(n int) {
	need := h.stagePos + n
	if need > len(h.stage) {
		grown := make([]byte, need)
		copy(grown, h.stage)
		h.stage = grown
	} else {
		for i := h.stagePos; i < need; i++ {
			h.stage[i] = 0
		}
	}
	h.stagePos = need
}

// BufSeek seeks within the stage buffer only; it never touches the
// underlying stream.
func (h *Handle) BufSeek(offset int, whence int) error {
	var base int
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = h.stagePos
	case io.SeekEnd:
		base = len(h.stage)
	default:
		return fmt.Errorf("filehandle: invalid whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return ErrNegativePosition
	}
	h.stagePos = pos
	return nil
}

// BufSize returns the current size of the stage buffer.
func (h *Handle) BufSize() int { return len(h.stage) }

// BufPos returns the current cursor position within the stage buffer.
func (h *Handle) BufPos() int { return h.stagePos }

// BufSetSize truncates or extends the stage buffer to exactly n_bytes,
// zero-filling any newly added region. The cursor is clamped to the new
// size if it would otherwise point past the end.
func (h *Handle) BufSetSize(n int) {
	switch {
	case n == len(h.stage):
	case n < len(h.stage):
		h.stage = h.stage[:n]
	default:
		grown := make([]byte, n)
		copy(grown, h.stage)
		h.stage = grown
	}
	if h.stagePos > n {
		h.stagePos = n
	}
}

// Commit flushes the stage buffer to the underlying stream at the current
// file position, advances the file position by the number of bytes
// flushed, and clears the stage buffer. Commit is a no-op if the stage
// buffer is empty.
func (h *Handle) Commit() error {
	if len(h.stage) == 0 {
		return nil
	}
	if _, err := h.backend.Write(h.stage); err != nil {
		return fmt.Errorf("filehandle: commit: %w", err)
	}
	h.stage = h.stage[:0]
	h.stagePos = 0
	return nil
}

// Dirty reports whether the stage buffer holds uncommitted bytes.
func (h *Handle) Dirty() bool { return len(h.stage) > 0 }

// Seek seeks the underlying stream. It fails with ErrStageDirty if the
// stage buffer holds uncommitted bytes; the caller must Commit first.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	if h.Dirty() {
		return 0, ErrStageDirty
	}
	pos, err := h.backend.Seek(offset, whence)
	if err != nil {
		return 0, fmt.Errorf("filehandle: seek: %w", err)
	}
	return pos, nil
}

// Position returns the current position of the underlying stream.
func (h *Handle) Position() (int64, error) {
	return h.Seek(0, io.SeekCurrent)
}

// Size returns the total size of the underlying stream, restoring the
// current position afterward.
func (h *Handle) Size() (int64, error) {
	cur, err := h.Position()
	if err != nil {
		return 0, err
	}
	end, err := h.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := h.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// ---- typed readers ----

// ReadU8 reads an unsigned 8-bit integer.
func (h *Handle) ReadU8() (uint8, error) {
	var buf [1]byte
	if err := h.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadS8 reads a signed 8-bit integer.
func (h *Handle) ReadS8() (int8, error) {
	v, err := h.ReadU8()
	return int8(v), err
}

// ReadU16 reads an unsigned 16-bit integer in the handle's endian mode.
func (h *Handle) ReadU16() (uint16, error) {
	var buf [2]byte
	if err := h.Read(buf[:]); err != nil {
		return 0, err
	}
	return h.order.Uint16(buf[:]), nil
}

// ReadS16 reads a signed 16-bit integer in the handle's endian mode.
func (h *Handle) ReadS16() (int16, error) {
	v, err := h.ReadU16()
	return int16(v), err
}

// ReadU32 reads an unsigned 32-bit integer in the handle's endian mode.
func (h *Handle) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := h.Read(buf[:]); err != nil {
		return 0, err
	}
	return h.order.Uint32(buf[:]), nil
}

// ReadS32 reads a signed 32-bit integer in the handle's endian mode.
func (h *Handle) ReadS32() (int32, error) {
	v, err := h.ReadU32()
	return int32(v), err
}

// ---- typed writers (staged; call Commit to flush) ----

// WriteU8 stages an unsigned 8-bit integer.
func (h *Handle) WriteU8(v uint8) { h.Write([]byte{v}) }

// WriteS8 stages a signed 8-bit integer.
func (h *Handle) WriteS8(v int8) { h.WriteU8(uint8(v)) }

// WriteU16 stages an unsigned 16-bit integer in the handle's endian mode.
func (h *Handle) WriteU16(v uint16) {
	var buf [2]byte
	h.order.PutUint16(buf[:], v)
	h.Write(buf[:])
}

// WriteS16 stages a signed 16-bit integer in the handle's endian mode.
func (h *Handle) WriteS16(v int16) { h.WriteU16(uint16(v)) }

// WriteU32 stages an unsigned 32-bit integer in the handle's endian mode.
func (h *Handle) WriteU32(v uint32) {
	var buf [4]byte
	h.order.PutUint32(buf[:], v)
	h.Write(buf[:])
}

// WriteS32 stages a signed 32-bit integer in the handle's endian mode.
func (h *Handle) WriteS32(v int32) { h.WriteU32(uint32(v)) }

// PatchU32At overwrites a previously staged-and-committed u32 field at
// absolute underlying-stream offset off with v. It is a convenience for
// the "write directly, then seek back to patch" contract (spec.md §4.1):
// it seeks to off, stages the 4 bytes, commits, then seeks back to the
// position the stream was at before the call.
func (h *Handle) PatchU32At(off int64, v uint32) error {
	cur, err := h.Position()
	if err != nil {
		return err
	}
	if _, err := h.Seek(off, io.SeekStart); err != nil {
		return err
	}
	h.WriteU32(v)
	if err := h.Commit(); err != nil {
		return err
	}
	_, err = h.Seek(cur, io.SeekStart)
	return err
}
