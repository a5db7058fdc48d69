// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

// GeneratorID names one of the zone's generator slots (spec.md §4.3.3). A
// zone stores only the generators whose value differs from the table
// below; everything else is implied to be the default.
type GeneratorID int

const (
	GenKeyRangeLow GeneratorID = iota
	GenKeyRangeHigh
	GenVelRangeLow
	GenVelRangeHigh
	GenSampleStartCoarse
	GenSampleStartFine
	GenCoarseTune
	GenFineTune
	GenSampleMode
	GenRootNoteOverride
	GenScaleTuning
	GenModLFOToPitch
	GenVibLFOToPitch
	GenEnvToPitch
	GenFilterCutoff
	GenFilterQ
	GenModLFOToFilter
	GenEnvToFilter
	GenModLFOToVolume
	GenModLFOFreq
	GenVibLFOFreq
	GenEnvSustain1
	GenEnvSustain2
	GenKeynumToEnvHold
	GenKeynumToEnvDecay
	GenKeynumToModEnvHold
	GenKeynumToModEnvDecay
	GenEnvPan
	GenEnvDelay1
	GenEnvAttack1
	GenEnvHold1
	GenEnvDecay1
	GenEnvRelease1
	GenEnvDelay2
	GenEnvAttack2
	GenEnvHold2
	GenEnvDecay2
	GenEnvRelease2
	GenAttenuation

	genCount
)

// defaults holds the format default for every generator. Values not
// present in a zone's sparse map take this default (spec.md §4.3.3: "a
// zone stores only generators whose value differs from the format
// default"). ScaleTuning's default of 100 is the one non-zero default,
// matching the conventional one-semitone-per-key pitch mapping.
var defaults = func() [genCount]int16 {
	var d [genCount]int16
	d[GenScaleTuning] = 100
	return d
}()

// Default returns the format default value for id.
func Default(id GeneratorID) int16 {
	if id < 0 || id >= genCount {
		return 0
	}
	return defaults[id]
}

// Generators is a zone's sparse, differs-from-default generator set.
type Generators map[GeneratorID]int16

// Set stores v for id if it differs from the default, and removes any
// existing entry otherwise, keeping the map minimal.
func (g Generators) Set(id GeneratorID, v int16) {
	if v == Default(id) {
		delete(g, id)
		return
	}
	g[id] = v
}

// Get returns the effective value of id: the stored value if present,
// otherwise the format default.
func (g Generators) Get(id GeneratorID) int16 {
	if v, ok := g[id]; ok {
		return v
	}
	return Default(id)
}
