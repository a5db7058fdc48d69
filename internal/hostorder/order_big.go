// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build ppc64 || mips || mips64 || s390x

package hostorder

import "encoding/binary"

// IsBigEndian is true when the host CPU is big-endian.
const IsBigEndian = true

// Native is the byte order of the host CPU.
var Native = binary.BigEndian
