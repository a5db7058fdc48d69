// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hostorder exposes the CPU's native byte order as a compile-time
// constant selected by build tags, so the transform pipeline can decide at
// construction time whether an endian-swap primitive is required.
package hostorder
