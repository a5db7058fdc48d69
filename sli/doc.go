// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sli implements the Spectralis SLI/SLC container: a RIFF-shaped
// but RIFF-incompatible format that groups instruments sharing sample
// data into "instrument groups", each with its own 64 KiB header budget
// (spec.md §4.3). It is read and written directly against a
// filehandle.Handle rather than through the riff package, since its
// invariants (header size budget, footer layout, reserved fields) don't
// fit the generic RIFF chunk stack.
package sli
