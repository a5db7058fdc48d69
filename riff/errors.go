// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package riff

import "errors"

// Kind of error, as named in spec.md §7. Exposed as sentinel values so
// callers can use errors.Is against a returned, wrapped error.
var (
	ErrNotRIFF             = errors.New("riff: outer chunk is not RIFF/RIFX")
	ErrUnexpectedID        = errors.New("riff: unexpected chunk id")
	ErrUnexpectedChunkEnd  = errors.New("riff: unexpected end of list chunk")
	ErrInvalidID           = errors.New("riff: invalid FourCC")
	ErrOddSize             = errors.New("riff: list chunk has odd declared size")
	ErrSizeExceeded        = errors.New("riff: child chunk size exceeds parent bounds")
	ErrIO                  = errors.New("riff: i/o error")
	ErrFailed              = errors.New("riff: engine is in failed state")
	ErrNoOpenChunk         = errors.New("riff: no open chunk")
	ErrInvalidCloseLevel   = errors.New("riff: invalid close level")
)
