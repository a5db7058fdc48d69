// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

import "github.com/soundpatch/ipatch/sample"

// Sample is one sample-data record, resolved to a concrete sample.Store
// covering its on-disk byte range (spec.md §4.3.1, sample headers).
type Sample struct {
	Name          string
	RootNote      uint8
	Channels      uint8
	BitsPerSample uint8
	SampleRate    uint32
	FineTune      int8
	LoopStart     uint32
	LoopEnd       uint32
	Store         sample.Store
}

// Zone is a key/velocity-range record referencing a Sample directly and
// carrying the sparse generator set that differs from the format default.
type Zone struct {
	KeyLow, KeyHigh uint8
	VelLow, VelHigh uint8
	Sample          *Sample
	Generators      Generators
}

// Instrument is a named collection of zones (spec.md §4.3.1, instrument
// headers).
type Instrument struct {
	Name     string
	SoundID  uint32
	Category uint16
	Zones    []*Zone
}

// Group is one instrument-group region: the instruments that share
// samples transitively, plus the samples deduped within the group
// (spec.md §4.3.4 step 2). Samples is indexed in the order the group's
// sample headers were written or read; Zone.Sample pointers are resolved
// independently of that order.
type Group struct {
	Instruments []*Instrument
	Samples     []*Sample
}

// File is the full decoded contents of an SLI container: its instrument
// groups.
type File struct {
	Groups []*Group
}

// Patch is the ungrouped input to WriteFile: a flat list of instruments
// whose zones reference samples directly. WriteFile partitions them into
// groups by transitive sample sharing (spec.md §4.3.4 step 2) before
// encoding.
type Patch struct {
	Instruments []*Instrument
}
