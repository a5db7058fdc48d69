// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample

import (
	"io"
	"sync"

	"github.com/soundpatch/ipatch/filehandle"
)

// FileStore is a sample store backed by a byte range of a filehandle.Handle
// (spec.md §4.4). Frame coordinates translate to file positions as
// baseOffset + frameOffset*frameBytes.
type FileStore struct {
	h          *filehandle.Handle
	baseOffset int64
	format     Format
	frameCount int64
	sampleRate uint32

	mu sync.Mutex
}

// NewFile wraps a byte range of h, starting at baseOffset, as a
// read/write sample store. The handle is shared by every Handle opened
// on the returned store, so reads and writes are serialized internally.
func NewFile(h *filehandle.Handle, baseOffset int64, format Format, frameCount int64, sampleRate uint32) *FileStore {
	return &FileStore{
		h:          h,
		baseOffset: baseOffset,
		format:     format,
		frameCount: frameCount,
		sampleRate: sampleRate,
	}
}

func (s *FileStore) Format() Format     { return s.format }
func (s *FileStore) FrameCount() int64  { return s.frameCount }
func (s *FileStore) SampleRate() uint32 { return s.sampleRate }

func (s *FileStore) Open(mode Mode) (Handle, error) {
	return &fileHandle{store: s, mode: mode}, nil
}

type fileHandle struct {
	store *FileStore
	mode  Mode
}

func (h *fileHandle) Read(frameOffset int64, frameCount int, out []byte) error {
	s := h.store
	if err := checkRange(s.frameCount, frameOffset, frameCount); err != nil {
		return err
	}
	frameBytes := s.format.FrameBytes()
	n := frameCount * frameBytes
	if len(out) < n {
		return newErr(KindBounds, "out buffer too small")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.baseOffset + frameOffset*int64(frameBytes)
	if _, err := s.h.Seek(pos, io.SeekStart); err != nil {
		return newErr(KindIO, err.Error())
	}
	if err := s.h.Read(out[:n]); err != nil {
		return newErr(KindIO, err.Error())
	}
	return nil
}

func (h *fileHandle) Write(frameOffset int64, frameCount int, in []byte) error {
	s := h.store
	if err := checkRange(s.frameCount, frameOffset, frameCount); err != nil {
		return err
	}
	frameBytes := s.format.FrameBytes()
	n := frameCount * frameBytes
	if len(in) < n {
		return newErr(KindBounds, "in buffer too small")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.baseOffset + frameOffset*int64(frameBytes)
	if _, err := s.h.Seek(pos, io.SeekStart); err != nil {
		return newErr(KindIO, err.Error())
	}
	s.h.Write(in[:n])
	if err := s.h.Commit(); err != nil {
		return newErr(KindIO, err.Error())
	}
	return nil
}

func (h *fileHandle) Close() error { return nil }
