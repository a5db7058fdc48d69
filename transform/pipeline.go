// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"github.com/soundpatch/ipatch/internal/hostorder"
	"github.com/soundpatch/ipatch/sample"
)

type step struct {
	name     string
	fn       BlockFn
	sampleBytes int // bytes per sample at this step's output boundary, for scratch sizing
}

// Pipeline is a minimal ordered list of conversion primitives between one
// source and destination sample.Format, built by New (spec.md §4.5.1).
type Pipeline struct {
	src, dst    sample.Format
	steps       []step
	srcFrameBytes int
	dstFrameBytes int
	maxFrameBytes int // largest per-frame byte size at any step boundary
}

// New builds the minimal pipeline converting src to dst, applying
// channel map m when channel counts differ.
func New(src, dst sample.Format, m sample.ChannelMap) (*Pipeline, error) {
	if !src.Valid() || !dst.Valid() {
		return nil, fmt.Errorf("transform: invalid format")
	}
	if !m.Valid(src.Channels(), dst.Channels()) {
		return nil, fmt.Errorf("transform: channel map references out-of-range source channel")
	}

	p := &Pipeline{src: src, dst: dst}
	p.srcFrameBytes = src.Width().Bytes() * src.Channels()
	p.dstFrameBytes = dst.Width().Bytes() * dst.Channels()
	p.maxFrameBytes = p.srcFrameBytes
	p.growMax(p.dstFrameBytes)

	curWidth := src.Width()
	curChannels := src.Channels()
	curUnsigned := src.Unsigned()
	curBig := src.BigEndian()
	host := hostorder.IsBigEndian

	dstWidthEffective := dst.Width()
	if dstWidthEffective == sample.Width24In3Bytes {
		dstWidthEffective = sample.Width24In32
	}

	// Step 1: 3-byte -> 4-byte normalization.
	handledByStep1 := false
	if curWidth == sample.Width24In3Bytes {
		fn := New3To4Fn(curUnsigned, curBig)
		p.appendByteStep("3to4", fn, 4)
		curWidth = sample.Width24In32
		handledByStep1 = true
	}

	// Step 2: channel reduction.
	if dst.Channels() < curChannels {
		sb := curWidth.Bytes()
		if curChannels == 2 && dst.Channels() == 1 {
			right := m.At(0) != 0
			p.appendByteStep("stereo-to-mono", NewStereoToMonoFn(sb, right), sb)
		} else {
			p.appendByteStep("channel-reduce", NewChannelMapFn(sb, curChannels, dst.Channels(), m), sb)
		}
		curChannels = dst.Channels()
	}

	// Step 3: source endian normalization to host.
	if src.BigEndian() != host && !handledByStep1 {
		sb := curWidth.Bytes()
		p.appendByteStep("endian-swap-src", NewEndianSwapFn(curWidth), sb)
		curBig = host
	}

	// Step 4: sign toggle.
	if !curWidth.Float() && !dst.Width().Float() && curUnsigned != dst.Unsigned() {
		sb := curWidth.Bytes()
		order := hostorder.Native
		p.appendByteStep("sign-toggle", NewSignToggleFn(curWidth, order), sb)
		curUnsigned = dst.Unsigned()
	}

	// Step 5: width conversion (including int<->float).
	if curWidth != dstWidthEffective {
		order := hostorder.Native
		fn := NewWidthConvertFn(curWidth, curUnsigned, dstWidthEffective, dst.Unsigned(), order)
		p.appendByteStep("width-convert", fn, dstWidthEffective.Bytes())
		curWidth = dstWidthEffective
		curUnsigned = dst.Unsigned()
	}

	// Step 6: destination endian normalization.
	if dst.BigEndian() != host && dst.Width() != sample.Width24In3Bytes {
		sb := curWidth.Bytes()
		p.appendByteStep("endian-swap-dst", NewEndianSwapFn(curWidth), sb)
		curBig = dst.BigEndian()
	}

	// Step 7: channel expansion.
	if dst.Channels() > curChannels {
		sb := curWidth.Bytes()
		if curChannels == 1 && dst.Channels() == 2 {
			p.appendByteStep("mono-to-stereo", NewMonoToStereoFn(sb), sb)
		} else {
			p.appendByteStep("channel-expand", NewChannelMapFn(sb, curChannels, dst.Channels(), m), sb)
		}
		curChannels = dst.Channels()
	}

	// Step 8: 4-byte -> 3-byte packing.
	if dst.Width() == sample.Width24In3Bytes {
		fn := New4To3Fn(dst.Unsigned(), dst.BigEndian())
		p.appendByteStep("4to3", fn, 3)
	}

	_ = curBig
	return p, nil
}

func (p *Pipeline) growMax(frameBytes int) {
	if frameBytes > p.maxFrameBytes {
		p.maxFrameBytes = frameBytes
	}
}

func (p *Pipeline) appendByteStep(name string, fn BlockFn, outSampleBytes int) {
	p.steps = append(p.steps, step{name: name, fn: fn, sampleBytes: outSampleBytes})
	p.growMax(outSampleBytes * p.dst.Channels())
	p.growMax(outSampleBytes * p.src.Channels())
}

// Empty reports whether the pipeline has no steps (a pure copy).
func (p *Pipeline) Empty() bool { return len(p.steps) == 0 }

// MaxFrameBytes returns the largest per-frame byte footprint at any step
// boundary, used to size scratch buffers.
func (p *Pipeline) MaxFrameBytes() int { return p.maxFrameBytes }

// SrcFrameBytes and DstFrameBytes return the pipeline's endpoint frame
// sizes.
func (p *Pipeline) SrcFrameBytes() int { return p.srcFrameBytes }
func (p *Pipeline) DstFrameBytes() int { return p.dstFrameBytes }
