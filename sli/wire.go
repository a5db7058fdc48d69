// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

import (
	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/riff"
)

// FourCC tags used by the SLI container. SLI reuses riff.FourCC for the
// tag type (raw 4-byte comparison) without reusing riff.Engine, since SLI
// chunk framing does not satisfy the RIFF invariants (spec.md §4.3).
var (
	tagSiFi = riff.Tag("SiFi")
	tagSiIg = riff.Tag("SiIg")
	tagSiDp = riff.Tag("SiDp")
)

const (
	versionCurrent = 0x0100

	fileHeaderSize  = 16
	groupHeaderSize = 28
	instHeaderSize  = 40
	zoneRecordSize  = 76
	sampleHeaderSize = 48
	footerSize      = 12

	instNameSize   = 24
	sampleNameSize = 24

	// maxGroupHeaderBytes is the hard budget on a group's combined
	// SiIg + instrument + zone + sample header region (spec.md §4.3.4
	// step 4); a region of this size or larger is rejected.
	maxGroupHeaderBytes = 64 * 1024

	// zeroPadFrames is the number of silent frames appended after every
	// sample's data region on write (spec.md §4.3.1).
	zeroPadFrames = 64
)

// fileHeader is the 16-byte SiFi region.
type fileHeader struct {
	TotalSize     uint32
	Version       uint16
	Reserved      uint16
	GroupCount    uint16
	FirstGroupOff uint16
}

func readFileHeader(h *filehandle.Handle) (fileHeader, error) {
	var fh fileHeader
	tag, err := readTag(h)
	if err != nil {
		return fh, err
	}
	if tag != tagSiFi {
		return fh, newErr(KindUnexpectedID, "expected SiFi, got "+tag.String())
	}
	if fh.TotalSize, err = h.ReadU32(); err != nil {
		return fh, err
	}
	if fh.Version, err = h.ReadU16(); err != nil {
		return fh, err
	}
	if fh.Reserved, err = h.ReadU16(); err != nil {
		return fh, err
	}
	if fh.GroupCount, err = h.ReadU16(); err != nil {
		return fh, err
	}
	if fh.FirstGroupOff, err = h.ReadU16(); err != nil {
		return fh, err
	}
	return fh, nil
}

func writeFileHeader(h *filehandle.Handle, fh fileHeader) {
	writeTag(h, tagSiFi)
	h.WriteU32(fh.TotalSize)
	h.WriteU16(fh.Version)
	h.WriteU16(fh.Reserved)
	h.WriteU16(fh.GroupCount)
	h.WriteU16(fh.FirstGroupOff)
}

// groupHeader is the 28-byte SiIg region preceding each group's
// instrument/zone/sample headers.
type groupHeader struct {
	GroupSize        uint32
	Version          uint16
	Reserved         uint16
	InstOffset       uint16
	InstCount        uint16
	ZonesOffset      uint16
	TotalZones       uint16
	SampleHdrOffset  uint16
	MaxZonesPerInst  uint16
	SampleDataOffset uint16
	Reserved2        uint16
}

func readGroupHeader(h *filehandle.Handle) (groupHeader, error) {
	var g groupHeader
	tag, err := readTag(h)
	if err != nil {
		return g, err
	}
	if tag != tagSiIg {
		return g, newErr(KindUnexpectedID, "expected SiIg, got "+tag.String())
	}
	if g.GroupSize, err = h.ReadU32(); err != nil {
		return g, err
	}
	for _, p := range [...]*uint16{
		&g.Version, &g.Reserved, &g.InstOffset, &g.InstCount,
		&g.ZonesOffset, &g.TotalZones, &g.SampleHdrOffset,
		&g.MaxZonesPerInst, &g.SampleDataOffset, &g.Reserved2,
	} {
		if *p, err = h.ReadU16(); err != nil {
			return g, err
		}
	}
	return g, nil
}

func writeGroupHeader(h *filehandle.Handle, g groupHeader) {
	writeTag(h, tagSiIg)
	h.WriteU32(g.GroupSize)
	h.WriteU16(g.Version)
	h.WriteU16(g.Reserved)
	h.WriteU16(g.InstOffset)
	h.WriteU16(g.InstCount)
	h.WriteU16(g.ZonesOffset)
	h.WriteU16(g.TotalZones)
	h.WriteU16(g.SampleHdrOffset)
	h.WriteU16(g.MaxZonesPerInst)
	h.WriteU16(g.SampleDataOffset)
	h.WriteU16(g.Reserved2)
}

// instHeader is the 40-byte per-instrument header.
type instHeader struct {
	Name           [instNameSize]byte
	SoundID        uint32
	Reserved       uint32
	Category       uint16
	Reserved2      uint16
	FirstZoneIndex uint16
	ZoneCount      uint16
}

func readInstHeader(h *filehandle.Handle) (instHeader, error) {
	var ih instHeader
	if err := h.Read(ih.Name[:]); err != nil {
		return ih, err
	}
	var err error
	if ih.SoundID, err = h.ReadU32(); err != nil {
		return ih, err
	}
	if ih.Reserved, err = h.ReadU32(); err != nil {
		return ih, err
	}
	if ih.Category, err = h.ReadU16(); err != nil {
		return ih, err
	}
	if ih.Reserved2, err = h.ReadU16(); err != nil {
		return ih, err
	}
	if ih.FirstZoneIndex, err = h.ReadU16(); err != nil {
		return ih, err
	}
	if ih.ZoneCount, err = h.ReadU16(); err != nil {
		return ih, err
	}
	return ih, nil
}

func writeInstHeader(h *filehandle.Handle, ih instHeader) {
	h.Write(ih.Name[:])
	h.WriteU32(ih.SoundID)
	h.WriteU32(ih.Reserved)
	h.WriteU16(ih.Category)
	h.WriteU16(ih.Reserved2)
	h.WriteU16(ih.FirstZoneIndex)
	h.WriteU16(ih.ZoneCount)
}

// sampleHeader is the 48-byte per-sample header.
type sampleHeader struct {
	Name          [sampleNameSize]byte
	Start         uint32
	End           uint32
	LoopStart     uint32
	LoopEnd       uint32
	FineTune      int8
	RootNote      uint8
	Channels      uint8
	BitsPerSample uint8
	SampleRate    uint32
}

func readSampleHeader(h *filehandle.Handle) (sampleHeader, error) {
	var sh sampleHeader
	if err := h.Read(sh.Name[:]); err != nil {
		return sh, err
	}
	var err error
	if sh.Start, err = h.ReadU32(); err != nil {
		return sh, err
	}
	if sh.End, err = h.ReadU32(); err != nil {
		return sh, err
	}
	if sh.LoopStart, err = h.ReadU32(); err != nil {
		return sh, err
	}
	if sh.LoopEnd, err = h.ReadU32(); err != nil {
		return sh, err
	}
	if sh.FineTune, err = h.ReadS8(); err != nil {
		return sh, err
	}
	rootNote, err := h.ReadU8()
	if err != nil {
		return sh, err
	}
	sh.RootNote = rootNote
	channels, err := h.ReadU8()
	if err != nil {
		return sh, err
	}
	sh.Channels = channels
	bits, err := h.ReadU8()
	if err != nil {
		return sh, err
	}
	sh.BitsPerSample = bits
	if sh.SampleRate, err = h.ReadU32(); err != nil {
		return sh, err
	}
	return sh, nil
}

func writeSampleHeader(h *filehandle.Handle, sh sampleHeader) {
	h.Write(sh.Name[:])
	h.WriteU32(sh.Start)
	h.WriteU32(sh.End)
	h.WriteU32(sh.LoopStart)
	h.WriteU32(sh.LoopEnd)
	h.WriteS8(sh.FineTune)
	h.WriteU8(sh.RootNote)
	h.WriteU8(sh.Channels)
	h.WriteU8(sh.BitsPerSample)
	h.WriteU32(sh.SampleRate)
}

// footer is the 12-byte per-instrument SiDp record.
type footer struct {
	Size     uint32
	Version  uint16
	Reserved uint16
}

func readFooter(h *filehandle.Handle) (footer, error) {
	var f footer
	tag, err := readTag(h)
	if err != nil {
		return f, err
	}
	if tag != tagSiDp {
		return f, newErr(KindUnexpectedID, "expected SiDp, got "+tag.String())
	}
	if f.Size, err = h.ReadU32(); err != nil {
		return f, err
	}
	if f.Version, err = h.ReadU16(); err != nil {
		return f, err
	}
	if f.Reserved, err = h.ReadU16(); err != nil {
		return f, err
	}
	return f, nil
}

func writeFooter(h *filehandle.Handle) {
	writeTag(h, tagSiDp)
	h.WriteU32(footerSize)
	h.WriteU16(versionCurrent)
	h.WriteU16(0)
}

func readTag(h *filehandle.Handle) (riff.FourCC, error) {
	var buf [4]byte
	if err := h.Read(buf[:]); err != nil {
		return riff.FourCC{}, err
	}
	return riff.FourCC(buf), nil
}

func writeTag(h *filehandle.Handle, tag riff.FourCC) {
	h.Write(tag[:])
}

func nameString(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}
