// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample

import "fmt"

// ChannelMap is a packed 24-bit field of eight 3-bit source-channel
// indices (spec.md §3): entry k names the source channel feeding
// destination channel k.
type ChannelMap uint32

// IdentityMap returns the channel map that feeds source channel k into
// destination channel k for k in [0, n).
func IdentityMap(n int) ChannelMap {
	var m ChannelMap
	for k := 0; k < n; k++ {
		m = m.With(k, k)
	}
	return m
}

// MonoToStereo duplicates the single source channel into both outputs.
func MonoToStereo() ChannelMap {
	return ChannelMap(0).With(0, 0).With(1, 0)
}

// StereoToLeft and StereoToRight select one side of a stereo source and
// route it to a mono destination.
func StereoToLeft() ChannelMap  { return ChannelMap(0).With(0, 0) }
func StereoToRight() ChannelMap { return ChannelMap(0).With(0, 1) }

// At returns the source channel index feeding destination channel k.
func (m ChannelMap) At(k int) int {
	return int((m >> uint(k*3)) & 0x7)
}

// With returns a copy of m with destination channel k set to source
// channel src.
func (m ChannelMap) With(k, src int) ChannelMap {
	shift := uint(k * 3)
	cleared := m &^ (ChannelMap(0x7) << shift)
	return cleared | (ChannelMap(src&0x7) << shift)
}

// Valid reports whether every entry in the first dstChannels slots
// references a source channel below srcChannels.
func (m ChannelMap) Valid(srcChannels, dstChannels int) bool {
	if dstChannels < 1 || dstChannels > 8 {
		return false
	}
	for k := 0; k < dstChannels; k++ {
		if m.At(k) >= srcChannels {
			return false
		}
	}
	return true
}

func (m ChannelMap) String() string {
	return fmt.Sprintf("%024b", uint32(m))
}
