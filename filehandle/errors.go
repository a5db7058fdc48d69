// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package filehandle

import "errors"

// ErrStageDirty is returned by Seek when the stage buffer holds bytes that
// have not yet been committed to the underlying stream. The caller must
// Commit (or discard, via BufSetSize(0)) before seeking the real stream.
var ErrStageDirty = errors.New("filehandle: seek attempted with uncommitted stage buffer")

// ErrShortRead is returned by Read when fewer bytes are available than
// requested.
var ErrShortRead = errors.New("filehandle: short read")

// ErrNegativePosition is returned by BufSeek when the resulting stage
// cursor would be negative.
var ErrNegativePosition = errors.New("filehandle: negative stage buffer position")
