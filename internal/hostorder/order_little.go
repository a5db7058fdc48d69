// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build arm || arm64 || 386 || amd64 || ppc64le || mipsle || mips64le || riscv64 || wasm

package hostorder

import "encoding/binary"

// IsBigEndian is true when the host CPU is big-endian.
const IsBigEndian = false

// Native is the byte order of the host CPU.
var Native = binary.LittleEndian
