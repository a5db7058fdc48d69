// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memstream provides a tiny in-memory io.ReadWriteSeeker used by
// the test suites of filehandle, riff, and sli so they can exercise
// round-trip read/write behavior without touching the filesystem.
package memstream

import "io"

// Stream is an in-memory, growable, seekable byte buffer.
type Stream struct {
	buf []byte
	pos int64
}

// New creates a Stream pre-loaded with initial (copied, not aliased).
func New(initial []byte) *Stream {
	b := make([]byte, len(initial))
	copy(b, initial)
	return &Stream{buf: b}
}

// Bytes returns the current contents of the stream.
func (s *Stream) Bytes() []byte { return s.buf }

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write implements io.Writer, growing the buffer as needed.
func (s *Stream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, io.ErrNoProgress
	}
	pos := base + offset
	if pos < 0 {
		return 0, io.ErrShortBuffer
	}
	s.pos = pos
	return pos, nil
}
