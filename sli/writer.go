// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

import (
	"fmt"
	"io"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/logging"
	"github.com/soundpatch/ipatch/sample"
	"github.com/soundpatch/ipatch/transform"
)

// WriteFile encodes patch as an SLI container to h (spec.md §4.3.4): it
// partitions instruments into instrument groups by transitive sample
// sharing, stages each group's header region under the 64 KiB budget,
// streams sample data in the fixed 16-bit little-endian output format,
// and patches the final SiFi size once everything is written. The
// caller owns patch outright by the time it is passed in, which is what
// isolates the write from concurrent edits (spec.md §9 design notes,
// step 1) without a separate deep-copy step.
//
// The returned File rebinds every sample to a fresh file-backed store
// over the just-written byte ranges, for the caller to swap in for the
// in-memory copies that were written (spec.md §4.3.4 step 6).
func WriteFile(h *filehandle.Handle, patch *Patch, lg logging.Logger) (*File, error) {
	groups := Partition(patch.Instruments)
	if len(groups) > 0xFFFF {
		return nil, newErr(KindInvalidData, "too many instrument groups")
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	writeFileHeader(h, fileHeader{
		TotalSize:     0,
		Version:       versionCurrent,
		GroupCount:    uint16(len(groups)),
		FirstGroupOff: fileHeaderSize,
	})
	if err := h.Commit(); err != nil {
		return nil, err
	}

	out := &File{}
	for _, instGroup := range groups {
		g, err := writeGroup(h, instGroup)
		if err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, g)
	}

	finalSize, err := h.Size()
	if err != nil {
		return nil, err
	}
	if err := h.PatchU32At(4, uint32(finalSize-8)); err != nil {
		return nil, err
	}
	return out, nil
}

func writeGroup(h *filehandle.Handle, instGroup []*Instrument) (*Group, error) {
	samples, sampleIndex := dedupSamples(instGroup)

	totalZones := 0
	maxZonesPerInst := 0
	for _, inst := range instGroup {
		totalZones += len(inst.Zones)
		if len(inst.Zones) > maxZonesPerInst {
			maxZonesPerInst = len(inst.Zones)
		}
	}

	const restFieldsBytes = groupHeaderSize - 8
	instOffsetRel := restFieldsBytes
	zonesOffsetRel := instOffsetRel + len(instGroup)*instHeaderSize
	sampleHdrOffsetRel := zonesOffsetRel + totalZones*zoneRecordSize
	sampleDataOffsetRel := sampleHdrOffsetRel + len(samples)*sampleHeaderSize

	headerBytes := 8 + sampleDataOffsetRel
	if headerBytes >= maxGroupHeaderBytes {
		return nil, newErr(KindSizeExceeded, fmt.Sprintf(
			"group header region %d bytes reaches the %d byte budget", headerBytes, maxGroupHeaderBytes))
	}
	if sampleDataOffsetRel > 0xFFFF || instOffsetRel > 0xFFFF || zonesOffsetRel > 0xFFFF || sampleHdrOffsetRel > 0xFFFF {
		return nil, newErr(KindSizeExceeded, "group header offsets exceed 16-bit range")
	}

	var sampleDataBytes int64
	sampleByteOffset := make([]int64, len(samples))
	for i, s := range samples {
		frameBytes := int64(2 * int(s.Channels))
		sampleByteOffset[i] = sampleDataBytes
		sampleDataBytes += s.Store.FrameCount()*frameBytes + int64(zeroPadFrames)*frameBytes
	}

	groupSize := uint32(int64(sampleDataOffsetRel) + sampleDataBytes)

	writeGroupHeader(h, groupHeader{
		GroupSize:        groupSize,
		Version:          versionCurrent,
		InstOffset:       uint16(instOffsetRel),
		InstCount:        uint16(len(instGroup)),
		ZonesOffset:      uint16(zonesOffsetRel),
		TotalZones:       uint16(totalZones),
		SampleHdrOffset:  uint16(sampleHdrOffsetRel),
		MaxZonesPerInst:  uint16(maxZonesPerInst),
		SampleDataOffset: uint16(sampleDataOffsetRel),
	})

	zoneStart := 0
	for _, inst := range instGroup {
		var name [instNameSize]byte
		copy(name[:], inst.Name)
		writeInstHeader(h, instHeader{
			Name:           name,
			SoundID:        inst.SoundID,
			Category:       inst.Category,
			FirstZoneIndex: uint16(zoneStart),
			ZoneCount:      uint16(len(inst.Zones)),
		})
		zoneStart += len(inst.Zones)
	}

	for _, inst := range instGroup {
		for _, z := range inst.Zones {
			writeZone(h, zoneRecord{
				KeyLow:      z.KeyLow,
				KeyHigh:     z.KeyHigh,
				VelLow:      z.VelLow,
				VelHigh:     z.VelHigh,
				SampleIndex: uint16(sampleIndex[z.Sample]),
				Generators:  z.Generators,
			})
		}
	}

	for _, s := range samples {
		frameCount := s.Store.FrameCount()
		var name [sampleNameSize]byte
		copy(name[:], s.Name)
		writeSampleHeader(h, sampleHeader{
			Name:          name,
			Start:         0,
			End:           uint32(frameCount),
			LoopStart:     s.LoopStart,
			LoopEnd:       s.LoopEnd,
			FineTune:      s.FineTune,
			RootNote:      s.RootNote,
			Channels:      s.Channels,
			BitsPerSample: 16,
			SampleRate:    s.SampleRate,
		})
	}

	if err := h.Commit(); err != nil {
		return nil, err
	}

	sampleDataStart, err := h.Position()
	if err != nil {
		return nil, err
	}
	g := &Group{}
	for i, s := range samples {
		frameCount := s.Store.FrameCount()
		if err := writeSampleData(h, s); err != nil {
			return nil, err
		}
		dstFormat, err := sample.NewFormat(sample.Width16, int(s.Channels), false, false)
		if err != nil {
			return nil, err
		}
		g.Samples = append(g.Samples, &Sample{
			Name:          s.Name,
			RootNote:      s.RootNote,
			Channels:      s.Channels,
			BitsPerSample: 16,
			SampleRate:    s.SampleRate,
			FineTune:      s.FineTune,
			LoopStart:     s.LoopStart,
			LoopEnd:       s.LoopEnd,
			Store:         sample.NewFile(h, sampleDataStart+sampleByteOffset[i], dstFormat, frameCount, s.SampleRate),
		})
	}

	for range instGroup {
		writeFooter(h)
	}
	if err := h.Commit(); err != nil {
		return nil, err
	}

	// Rebuild instruments and zones against the rebound samples rather
	// than returning the caller's originals (spec.md §4.3.4 step 6).
	for _, inst := range instGroup {
		newInst := &Instrument{Name: inst.Name, SoundID: inst.SoundID, Category: inst.Category}
		for _, z := range inst.Zones {
			newZone := &Zone{
				KeyLow: z.KeyLow, KeyHigh: z.KeyHigh,
				VelLow: z.VelLow, VelHigh: z.VelHigh,
				Generators: z.Generators,
			}
			if z.Sample != nil {
				newZone.Sample = g.Samples[sampleIndex[z.Sample]]
			}
			newInst.Zones = append(newInst.Zones, newZone)
		}
		g.Instruments = append(g.Instruments, newInst)
	}
	return g, nil
}

// dedupSamples collects the distinct samples referenced by instGroup's
// zones in first-encountered order (spec.md §4.3.4 step 4).
func dedupSamples(instGroup []*Instrument) ([]*Sample, map[*Sample]int) {
	var samples []*Sample
	index := map[*Sample]int{}
	for _, inst := range instGroup {
		for _, z := range inst.Zones {
			if z.Sample == nil {
				continue
			}
			if _, ok := index[z.Sample]; !ok {
				index[z.Sample] = len(samples)
				samples = append(samples, z.Sample)
			}
		}
	}
	return samples, index
}

// writeSampleData streams s's data through a Pipeline into the fixed
// 16-bit little-endian output format, followed by 64 zero frames
// (64*channels zero samples) (spec.md §4.3.1, §4.3.4 step 4).
func writeSampleData(h *filehandle.Handle, s *Sample) error {
	dstFormat, err := sample.NewFormat(sample.Width16, int(s.Channels), false, false)
	if err != nil {
		return err
	}
	pipeline, err := transform.New(s.Store.Format(), dstFormat, 0)
	if err != nil {
		return err
	}

	const chunkFrames = 4096
	tf := transform.NewTransformFrames(pipeline, chunkFrames)

	srcH, err := s.Store.Open(sample.ModeRead)
	if err != nil {
		return err
	}
	defer srcH.Close()

	srcFrameBytes := s.Store.Format().FrameBytes()
	dstFrameBytes := dstFormat.FrameBytes()
	srcBuf := make([]byte, chunkFrames*srcFrameBytes)
	dstBuf := make([]byte, chunkFrames*dstFrameBytes)

	frameCount := s.Store.FrameCount()
	for offset := int64(0); offset < frameCount; {
		n := chunkFrames
		if remaining := frameCount - offset; int64(n) > remaining {
			n = int(remaining)
		}
		if err := srcH.Read(offset, n, srcBuf[:n*srcFrameBytes]); err != nil {
			return err
		}
		if err := tf.Run(dstBuf[:n*dstFrameBytes], srcBuf[:n*srcFrameBytes], n); err != nil {
			return err
		}
		h.Write(dstBuf[:n*dstFrameBytes])
		if err := h.Commit(); err != nil {
			return err
		}
		offset += int64(n)
	}

	pad := make([]byte, zeroPadFrames*dstFrameBytes)
	h.Write(pad)
	return h.Commit()
}
