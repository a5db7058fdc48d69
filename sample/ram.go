// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample

import "sync"

// RAMOption configures a RAMStore at construction, following the same
// functional-options shape used throughout this module's configuration
// surfaces.
type RAMOption func(*RAMStore)

// WithBuffer supplies a caller-owned backing buffer. The store will not
// free or reallocate it; buf must be at least frameCount frames long in
// the store's format.
func WithBuffer(buf []byte) RAMOption {
	return func(s *RAMStore) {
		s.buf = buf
		s.owned = false
		s.allocated = true
	}
}

// RAMStore is an in-memory sample store (spec.md §4.4). When no buffer is
// supplied, one is lazily allocated on first Open and owned by the store.
type RAMStore struct {
	format     Format
	frameCount int64
	sampleRate uint32

	mu        sync.Mutex
	buf       []byte
	owned     bool
	allocated bool
}

// NewRAM constructs a RAMStore with the given format, frame count, and
// sample rate. By default the store owns and lazily allocates its buffer.
func NewRAM(format Format, frameCount int64, sampleRate uint32, opts ...RAMOption) *RAMStore {
	s := &RAMStore{
		format:     format,
		frameCount: frameCount,
		sampleRate: sampleRate,
		owned:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RAMStore) Format() Format        { return s.format }
func (s *RAMStore) FrameCount() int64     { return s.frameCount }
func (s *RAMStore) SampleRate() uint32    { return s.sampleRate }

func (s *RAMStore) ensureAllocated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allocated {
		return
	}
	s.buf = make([]byte, s.frameCount*int64(s.format.FrameBytes()))
	s.allocated = true
}

// Open returns a Handle over the store's buffer. Read/write bodies do not
// lock: callers are expected to coordinate a single logical writer per
// region, per the store's concurrency contract.
func (s *RAMStore) Open(mode Mode) (Handle, error) {
	s.ensureAllocated()
	return &ramHandle{store: s, mode: mode}, nil
}

// Release drops the store's reference to an owned buffer. It is a no-op
// for caller-supplied buffers (WithBuffer).
func (s *RAMStore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owned {
		s.buf = nil
		s.allocated = false
	}
}

type ramHandle struct {
	store *RAMStore
	mode  Mode
}

func (h *ramHandle) Read(frameOffset int64, frameCount int, out []byte) error {
	s := h.store
	if err := checkRange(s.frameCount, frameOffset, frameCount); err != nil {
		return err
	}
	frameBytes := s.format.FrameBytes()
	start := frameOffset * int64(frameBytes)
	n := int64(frameCount) * int64(frameBytes)
	if int64(len(out)) < n {
		return newErr(KindBounds, "out buffer too small")
	}
	copy(out[:n], s.buf[start:start+n])
	return nil
}

func (h *ramHandle) Write(frameOffset int64, frameCount int, in []byte) error {
	s := h.store
	if err := checkRange(s.frameCount, frameOffset, frameCount); err != nil {
		return err
	}
	frameBytes := s.format.FrameBytes()
	start := frameOffset * int64(frameBytes)
	n := int64(frameCount) * int64(frameBytes)
	if int64(len(in)) < n {
		return newErr(KindBounds, "in buffer too small")
	}
	copy(s.buf[start:start+n], in[:n])
	return nil
}

func (h *ramHandle) Close() error { return nil }
