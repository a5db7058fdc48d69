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
)

// ReadFile decodes an entire SLI container from h (spec.md §4.3.2). lg
// receives non-fatal warnings (size reconciliation, disagreeing
// duplicate fields, nonzero reserved fields); a nil lg discards them.
func ReadFile(h *filehandle.Handle, lg logging.Logger) (*File, error) {
	lg = logging.OrNop(lg)

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	fh, err := readFileHeader(h)
	if err != nil {
		return nil, err
	}

	actualSize, err := h.Size()
	if err != nil {
		return nil, err
	}
	declaredSize := int64(fh.TotalSize) + 8
	switch {
	case declaredSize > actualSize:
		return nil, newErr(KindSizeMismatch, fmt.Sprintf(
			"declared total size %d exceeds actual file size %d", declaredSize, actualSize))
	case declaredSize != actualSize:
		lg.Printf("sli: declared total size %d does not match actual file size %d", declaredSize, actualSize)
	}

	f := &File{}
	tagOffset := int64(fh.FirstGroupOff)
	for i := 0; i < int(fh.GroupCount); i++ {
		g, next, err := readGroup(h, lg, tagOffset)
		if err != nil {
			return nil, err
		}
		f.Groups = append(f.Groups, g)
		tagOffset = next
	}
	return f, nil
}

func readGroup(h *filehandle.Handle, lg logging.Logger, tagOffset int64) (*Group, int64, error) {
	if _, err := h.Seek(tagOffset, io.SeekStart); err != nil {
		return nil, 0, err
	}
	gh, err := readGroupHeader(h)
	if err != nil {
		return nil, 0, err
	}
	payloadStart := tagOffset + 8

	actualSize, err := h.Size()
	if err != nil {
		return nil, 0, err
	}
	if payloadStart+int64(gh.GroupSize) > actualSize {
		return nil, 0, newErr(KindSizeMismatch, "group extends past end of file")
	}

	sampleCount := (int(gh.SampleDataOffset) - int(gh.SampleHdrOffset)) / sampleHeaderSize
	if sampleCount < 0 {
		return nil, 0, newErr(KindInvalidData, "sample header region has negative size")
	}

	g := &Group{}

	// Sample headers, then materialize each as a file-backed store over
	// the packed sample data region (spec.md §4.3.2: "Each distinct
	// sample index is materialized once per group as a file-backed
	// sample store").
	if _, err := h.Seek(payloadStart+int64(gh.SampleHdrOffset), io.SeekStart); err != nil {
		return nil, 0, err
	}
	sampleDataStart := payloadStart + int64(gh.SampleDataOffset)
	for i := 0; i < sampleCount; i++ {
		sh, err := readSampleHeader(h)
		if err != nil {
			return nil, 0, err
		}
		if sh.Channels > 2 {
			return nil, 0, newErr(KindInvalidData, fmt.Sprintf("sample channel count %d exceeds 2", sh.Channels))
		}
		format, err := sample.NewFormat(widthFromBits(sh.BitsPerSample), int(sh.Channels), false, false)
		if err != nil {
			return nil, 0, newErr(KindInvalidData, err.Error())
		}
		frameCount := int64(sh.End) - int64(sh.Start)
		if frameCount < 0 {
			return nil, 0, newErr(KindInvalidData, "sample end precedes start")
		}
		baseOffset := sampleDataStart + int64(sh.Start)*int64(format.FrameBytes())
		g.Samples = append(g.Samples, &Sample{
			Name:          nameString(sh.Name[:]),
			RootNote:      sh.RootNote,
			Channels:      sh.Channels,
			BitsPerSample: sh.BitsPerSample,
			SampleRate:    sh.SampleRate,
			FineTune:      sh.FineTune,
			LoopStart:     sh.LoopStart,
			LoopEnd:       sh.LoopEnd,
			Store:         sample.NewFile(h, baseOffset, format, frameCount, sh.SampleRate),
		})
	}

	// All zones, contiguous, referenced by instrument via a
	// first-index/count slice (spec.md §4.3.1).
	if _, err := h.Seek(payloadStart+int64(gh.ZonesOffset), io.SeekStart); err != nil {
		return nil, 0, err
	}
	zones := make([]*Zone, gh.TotalZones)
	for i := range zones {
		zr, err := readZone(h, lg)
		if err != nil {
			return nil, 0, err
		}
		if int(zr.SampleIndex) >= len(g.Samples) {
			return nil, 0, newErr(KindInvalidData, fmt.Sprintf("zone references out-of-range sample index %d", zr.SampleIndex))
		}
		zones[i] = &Zone{
			KeyLow:     zr.KeyLow,
			KeyHigh:    zr.KeyHigh,
			VelLow:     zr.VelLow,
			VelHigh:    zr.VelHigh,
			Sample:     g.Samples[zr.SampleIndex],
			Generators: zr.Generators,
		}
	}

	// Instrument headers, each slicing into the shared zone array.
	if _, err := h.Seek(payloadStart+int64(gh.InstOffset), io.SeekStart); err != nil {
		return nil, 0, err
	}
	for i := 0; i < int(gh.InstCount); i++ {
		ih, err := readInstHeader(h)
		if err != nil {
			return nil, 0, err
		}
		end := int(ih.FirstZoneIndex) + int(ih.ZoneCount)
		if end > len(zones) {
			return nil, 0, newErr(KindInvalidData, "instrument zone range exceeds total zones")
		}
		g.Instruments = append(g.Instruments, &Instrument{
			Name:     nameString(ih.Name[:]),
			SoundID:  ih.SoundID,
			Category: ih.Category,
			Zones:    append([]*Zone(nil), zones[ih.FirstZoneIndex:end]...),
		})
	}

	footerStart := payloadStart + int64(gh.GroupSize)
	if _, err := h.Seek(footerStart, io.SeekStart); err != nil {
		return nil, 0, err
	}
	for i := 0; i < int(gh.InstCount); i++ {
		if _, err := readFooter(h); err != nil {
			return nil, 0, err
		}
	}
	nextTagOffset, err := h.Position()
	if err != nil {
		return nil, 0, err
	}
	return g, nextTagOffset, nil
}

func widthFromBits(bits uint8) sample.Width {
	switch bits {
	case 8:
		return sample.Width8
	case 24:
		return sample.Width24In32
	case 32:
		return sample.Width32
	default:
		return sample.Width16
	}
}
