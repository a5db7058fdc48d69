// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package riff implements the RIFF/RIFX chunk container engine: reading
// and writing trees of FOURCC-tagged chunks over a filehandle.Handle,
// with endian auto-detection, chunk-stack invariants, and state
// save/restore for lookahead parsing.
package riff
