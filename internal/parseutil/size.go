// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parseutil provides small command-line argument parsers shared by
// the diagnostic cmd/ tools.
package parseutil

import (
	"strconv"
	"strings"
)

// SizeInBytes parses a size in bytes given as a command-line argument. For
// convenience, a suffix of k, K, m, M, g, or G indicates the value is in
// KiB, MiB, or GiB respectively (e.g. "64k" or "1M" for sampleconvert's
// transform scratch-buffer budget). Any text before such a
// suffix must be a valid unsigned integer as parsed by strconv.ParseUint.
func SizeInBytes(arg string) (uint64, error) {
	var mult uint64 = 1
	arg = strings.ToLower(arg)
	switch {
	case arg == "":
	case strings.HasSuffix(arg, "k"):
		mult = 1024
		arg = strings.TrimSuffix(arg, "k")
	case strings.HasSuffix(arg, "m"):
		mult = 1024 * 1024
		arg = strings.TrimSuffix(arg, "m")
	case strings.HasSuffix(arg, "g"):
		mult = 1024 * 1024 * 1024
		arg = strings.TrimSuffix(arg, "g")
	}
	size, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, err
	}
	return size * mult, nil
}
