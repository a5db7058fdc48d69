// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package filehandle provides the byte-oriented, seekable, endian-aware
stream abstraction that the riff and sli packages are built on.

A Handle wraps any io.ReadWriteSeeker (typically an *os.File) and adds:

  - a per-handle endian mode that governs every typed read/write (u8/s8/
    u16/s16/u32/s32);
  - a small write-staging buffer that defers commits to the underlying
    stream, so a caller can build up a header region, seek around inside
    it with BufSeek, patch fields, and flush it to the real stream exactly
    once with Commit;
  - the invariant that Seek on the underlying stream is refused while the
    stage buffer holds uncommitted bytes, preventing silent corruption of
    a half-written region.

See riff.Engine and sli.WriteFile for the two back-patching idioms this
supports (spec.md §4.1's write contract): writing directly and seeking
back to patch (riff), and staging an entire region before one commit
(sli).
*/
package filehandle
