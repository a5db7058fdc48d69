// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

import (
	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/logging"
)

// modulatorOrder and envelopeOrder fix the wire order of the zone
// record's sixteen s16 modulator slots and eleven s8 envelope slots
// (spec.md §4.3.3).
var modulatorOrder = [16]GeneratorID{
	GenModLFOToPitch, GenVibLFOToPitch, GenEnvToPitch,
	GenFilterCutoff, GenFilterQ,
	GenModLFOToFilter, GenEnvToFilter,
	GenModLFOToVolume,
	GenModLFOFreq, GenVibLFOFreq,
	GenEnvSustain1, GenEnvSustain2,
	GenKeynumToEnvHold, GenKeynumToEnvDecay,
	GenKeynumToModEnvHold, GenKeynumToModEnvDecay,
}

var envelopeOrder = [11]GeneratorID{
	GenEnvPan,
	GenEnvDelay1, GenEnvAttack1, GenEnvHold1, GenEnvDecay1, GenEnvRelease1,
	GenEnvDelay2, GenEnvAttack2, GenEnvHold2, GenEnvDecay2, GenEnvRelease2,
}

// zoneRecord is the wire-level 76-byte zone record: key/velocity range,
// a group-local sample index, and the sparse set of generators that
// differ from the format default (spec.md §4.3.3). The public Zone type
// (model.go) replaces the index with a resolved *Sample pointer; reader
// and writer translate between the two at group boundaries.
type zoneRecord struct {
	KeyLow, KeyHigh uint8
	VelLow, VelHigh uint8
	SampleIndex     uint16
	Generators      Generators
}

func readZone(h *filehandle.Handle, lg logging.Logger) (zoneRecord, error) {
	var z zoneRecord
	z.Generators = Generators{}

	var err error
	if z.KeyLow, err = h.ReadU8(); err != nil {
		return z, err
	}
	if z.KeyHigh, err = h.ReadU8(); err != nil {
		return z, err
	}
	if z.VelLow, err = h.ReadU8(); err != nil {
		return z, err
	}
	if z.VelHigh, err = h.ReadU8(); err != nil {
		return z, err
	}

	startA, err := h.ReadU32()
	if err != nil {
		return z, err
	}
	startB, err := h.ReadU32()
	if err != nil {
		return z, err
	}
	if startA != startB {
		lg.Printf("sli: zone sample start offset copies disagree: %d != %d", startA, startB)
	}
	z.Generators.Set(GenSampleStartCoarse, int16(uint16(startA>>16)))
	z.Generators.Set(GenSampleStartFine, int16(uint16((startA&0xFFFF)/2)))

	unknown1, err := h.ReadU32()
	if err != nil {
		return z, err
	}
	if unknown1 != 0 {
		lg.Printf("sli: zone reserved field 1 is nonzero: %d", unknown1)
	}
	unknown2, err := h.ReadU32()
	if err != nil {
		return z, err
	}
	if unknown2 != 0 {
		lg.Printf("sli: zone reserved field 2 is nonzero: %d", unknown2)
	}

	coarseTune, err := h.ReadS8()
	if err != nil {
		return z, err
	}
	fineTune, err := h.ReadS8()
	if err != nil {
		return z, err
	}

	sampleMode, err := h.ReadU8()
	if err != nil {
		return z, err
	}
	z.Generators.Set(GenSampleMode, int16(sampleMode))

	rootOverride, err := h.ReadS8()
	if err != nil {
		return z, err
	}
	z.Generators.Set(GenRootNoteOverride, int16(rootOverride))

	scaleTuning, err := h.ReadU16()
	if err != nil {
		return z, err
	}
	z.Generators.Set(GenScaleTuning, int16(scaleTuning))

	coarseTune2, err := h.ReadS8()
	if err != nil {
		return z, err
	}
	fineTune2, err := h.ReadS8()
	if err != nil {
		return z, err
	}
	if coarseTune != coarseTune2 {
		lg.Printf("sli: zone coarse tune copies disagree: %d != %d", coarseTune, coarseTune2)
	}
	if fineTune != fineTune2 {
		lg.Printf("sli: zone fine tune copies disagree: %d != %d", fineTune, fineTune2)
	}
	z.Generators.Set(GenCoarseTune, int16(coarseTune))
	z.Generators.Set(GenFineTune, int16(fineTune))

	for _, id := range modulatorOrder {
		v, err := h.ReadS16()
		if err != nil {
			return z, err
		}
		z.Generators.Set(id, v)
	}

	for _, id := range envelopeOrder {
		v, err := h.ReadS8()
		if err != nil {
			return z, err
		}
		z.Generators.Set(id, int16(v))
	}

	attenuation, err := h.ReadU8()
	if err != nil {
		return z, err
	}
	z.Generators.Set(GenAttenuation, int16(attenuation))

	if z.SampleIndex, err = h.ReadU16(); err != nil {
		return z, err
	}
	reserved, err := h.ReadU16()
	if err != nil {
		return z, err
	}
	if reserved != 0 {
		lg.Printf("sli: zone trailing reserved field is nonzero: %d", reserved)
	}
	return z, nil
}

func writeZone(h *filehandle.Handle, z zoneRecord) {
	h.WriteU8(z.KeyLow)
	h.WriteU8(z.KeyHigh)
	h.WriteU8(z.VelLow)
	h.WriteU8(z.VelHigh)

	coarse := uint32(uint16(z.Generators.Get(GenSampleStartCoarse)))
	fine := uint32(uint16(z.Generators.Get(GenSampleStartFine)))
	start := (coarse << 16) | (fine * 2)
	h.WriteU32(start)
	h.WriteU32(start)

	h.WriteU32(0) // reserved, always zero on write
	h.WriteU32(0) // reserved, always zero on write

	coarseTune := int8(z.Generators.Get(GenCoarseTune))
	fineTune := int8(z.Generators.Get(GenFineTune))
	h.WriteS8(coarseTune)
	h.WriteS8(fineTune)

	h.WriteU8(uint8(z.Generators.Get(GenSampleMode)))
	h.WriteS8(int8(z.Generators.Get(GenRootNoteOverride)))
	h.WriteU16(uint16(z.Generators.Get(GenScaleTuning)))

	h.WriteS8(coarseTune)
	h.WriteS8(fineTune)

	for _, id := range modulatorOrder {
		h.WriteS16(z.Generators.Get(id))
	}
	for _, id := range envelopeOrder {
		h.WriteS8(int8(z.Generators.Get(id)))
	}

	h.WriteU8(uint8(z.Generators.Get(GenAttenuation)))
	h.WriteU16(z.SampleIndex)
	h.WriteU16(0) // reserved, always zero on write
}
