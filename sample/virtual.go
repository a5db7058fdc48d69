// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample

import "sort"

// Run is one segment of a virtual store's per-channel edit list
// (spec.md §4.4): destination frames [Start, Start+Length) of a channel
// are drawn from Src channel SrcChannel, starting at SrcOffset.
type Run struct {
	Start      int64
	Length     int64
	Src        Store
	SrcOffset  int64
	SrcChannel int
}

// VirtualStore composes frames from other stores via per-channel ordered
// run lists, with no copy of sample data at construction time.
type VirtualStore struct {
	format     Format
	frameCount int64
	sampleRate uint32
	channels   [][]Run
}

// NewVirtual constructs an empty virtual store. Runs are added with
// AppendRun before the store is read.
func NewVirtual(format Format, sampleRate uint32) *VirtualStore {
	return &VirtualStore{
		format:     format,
		sampleRate: sampleRate,
		channels:   make([][]Run, format.Channels()),
	}
}

func (s *VirtualStore) Format() Format     { return s.format }
func (s *VirtualStore) FrameCount() int64  { return s.frameCount }
func (s *VirtualStore) SampleRate() uint32 { return s.sampleRate }

// AppendRun adds a run to the end of channel's timeline. It is merged
// into the previous run if contiguous: same source, same source channel,
// and the previous run's source range ends exactly where this one
// begins.
func (s *VirtualStore) AppendRun(channel int, length int64, src Store, srcOffset int64, srcChannel int) error {
	if channel < 0 || channel >= len(s.channels) {
		return newErr(KindBounds, "channel index out of range")
	}
	if length <= 0 {
		return newErr(KindBounds, "run length must be positive")
	}
	runs := s.channels[channel]
	start := int64(0)
	if n := len(runs); n > 0 {
		last := &runs[n-1]
		start = last.Start + last.Length
		if last.Src == src && last.SrcChannel == srcChannel && last.SrcOffset+last.Length == srcOffset {
			last.Length += length
			s.channels[channel] = runs
			s.growFrameCount(start + length)
			return nil
		}
	}
	s.channels[channel] = append(runs, Run{
		Start: start, Length: length,
		Src: src, SrcOffset: srcOffset, SrcChannel: srcChannel,
	})
	s.growFrameCount(start + length)
	return nil
}

func (s *VirtualStore) growFrameCount(end int64) {
	if end > s.frameCount {
		s.frameCount = end
	}
}

// Runs returns a copy of the run list for channel (for testing/inspection).
func (s *VirtualStore) Runs(channel int) []Run {
	cp := make([]Run, len(s.channels[channel]))
	copy(cp, s.channels[channel])
	return cp
}

func (s *VirtualStore) Open(mode Mode) (Handle, error) {
	if mode != ModeRead {
		return nil, newErr(KindUnsupported, "virtual store is read-only")
	}
	return &virtualHandle{store: s}, nil
}

type virtualHandle struct {
	store *VirtualStore
}

func (h *virtualHandle) Close() error { return nil }

func (h *virtualHandle) Write(int64, int, []byte) error {
	return newErr(KindUnsupported, "virtual store is read-only")
}

func (h *virtualHandle) Read(frameOffset int64, frameCount int, out []byte) error {
	s := h.store
	if err := checkRange(s.frameCount, frameOffset, frameCount); err != nil {
		return err
	}
	width := s.format.Width().Bytes()
	dstChannels := s.format.Channels()
	frameBytes := width * dstChannels
	if len(out) < frameCount*frameBytes {
		return newErr(KindBounds, "out buffer too small")
	}

	for c := 0; c < dstChannels; c++ {
		if err := h.readChannel(c, frameOffset, frameCount, width, dstChannels, out); err != nil {
			return err
		}
	}
	return nil
}

// readChannel fills out[c::dstChannels] (interleaved) for the requested
// frame range by walking the run list for destination channel c,
// resolving each overlapping run's source.
func (h *virtualHandle) readChannel(c int, frameOffset int64, frameCount, width, dstChannels int, out []byte) error {
	runs := h.store.channels[c]
	idx := sort.Search(len(runs), func(i int) bool {
		return runs[i].Start+runs[i].Length > frameOffset
	})

	remaining := frameCount
	pos := frameOffset
	outFrame := 0
	for remaining > 0 {
		if idx >= len(runs) {
			return newErr(KindBounds, "frame range not covered by any run")
		}
		run := runs[idx]
		if pos < run.Start || pos >= run.Start+run.Length {
			return newErr(KindBounds, "frame range not covered by any run")
		}
		localOffset := pos - run.Start
		avail := run.Length - localOffset
		take := int64(remaining)
		if take > avail {
			take = avail
		}

		if err := copySourceChannel(run.Src, run.SrcChannel, run.SrcOffset+localOffset, int(take), width, out, outFrame, dstChannels, c); err != nil {
			return err
		}

		pos += take
		outFrame += int(take)
		remaining -= int(take)
		idx++
	}
	return nil
}

// copySourceChannel reads count frames of src starting at srcOffset,
// extracts channel srcChannel's width-byte samples, and scatters them
// into dst at stride dstChannels starting at dst channel dstChannel,
// frame dstFrameOffset.
func copySourceChannel(src Store, srcChannel int, srcOffset int64, count, width int, dst []byte, dstFrameOffset, dstChannels, dstChannel int) error {
	if count == 0 {
		return nil
	}
	srcChannels := src.Format().Channels()
	srcFrameBytes := width * srcChannels
	buf := make([]byte, count*srcFrameBytes)

	h, err := src.Open(ModeRead)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.Read(srcOffset, count, buf); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		srcStart := i*srcFrameBytes + srcChannel*width
		dstStart := (dstFrameOffset+i)*dstChannels*width + dstChannel*width
		copy(dst[dstStart:dstStart+width], buf[srcStart:srcStart+width])
	}
	return nil
}
