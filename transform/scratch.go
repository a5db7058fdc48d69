// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transform

import "fmt"

// Transform pairs a Pipeline with the two scratch buffers its
// intermediate steps bounce between (spec.md §4.5.2), sized to process
// up to MaxFrames frames per call.
type Transform struct {
	pipeline  *Pipeline
	scratchA  []byte
	scratchB  []byte
	maxFrames int
}

// NewTransformFrames builds a Transform with scratch buffers sized for
// exactly maxFrames frames.
func NewTransformFrames(p *Pipeline, maxFrames int) *Transform {
	size := maxFrames * p.MaxFrameBytes()
	return &Transform{
		pipeline:  p,
		scratchA:  make([]byte, size),
		scratchB:  make([]byte, size),
		maxFrames: maxFrames,
	}
}

// NewTransformBudget builds a Transform whose two scratch buffers
// together fit within budgetBytes, deriving the per-call frame count.
func NewTransformBudget(p *Pipeline, budgetBytes int) (*Transform, error) {
	frameBytes := p.MaxFrameBytes()
	if frameBytes == 0 {
		frameBytes = p.SrcFrameBytes()
	}
	maxFrames := budgetBytes / (2 * frameBytes)
	if maxFrames < 1 {
		return nil, fmt.Errorf("transform: budget %d too small for frame size %d", budgetBytes, frameBytes)
	}
	return NewTransformFrames(p, maxFrames), nil
}

// MaxFrames returns the number of frames this Transform processes per
// internal chunk.
func (t *Transform) MaxFrames() int { return t.maxFrames }

// Run converts totalFrames frames of src into dst, chunking internally at
// MaxFrames frames and bouncing through the two scratch buffers. dst must
// be at least totalFrames*DstFrameBytes() long; src at least
// totalFrames*SrcFrameBytes() long. If the pipeline is empty, Run copies
// src to dst directly (a declarative no-op conversion).
func (t *Transform) Run(dst, src []byte, totalFrames int) error {
	p := t.pipeline
	srcFB, dstFB := p.SrcFrameBytes(), p.DstFrameBytes()
	if len(src) < totalFrames*srcFB {
		return fmt.Errorf("transform: src buffer too small")
	}
	if len(dst) < totalFrames*dstFB {
		return fmt.Errorf("transform: dst buffer too small")
	}

	if p.Empty() {
		copy(dst[:totalFrames*dstFB], src[:totalFrames*srcFB])
		return nil
	}

	srcChannels := p.src.Channels()
	processed := 0
	for processed < totalFrames {
		n := t.maxFrames
		if totalFrames-processed < n {
			n = totalFrames - processed
		}
		srcChunk := src[processed*srcFB : (processed+n)*srcFB]
		dstChunk := dst[processed*dstFB : (processed+n)*dstFB]

		cur := srcChunk
		curSamples := n * srcChannels
		for i, st := range p.steps {
			var out []byte
			if i == len(p.steps)-1 {
				out = dstChunk
			} else if i%2 == 0 {
				out = t.scratchA
			} else {
				out = t.scratchB
			}
			curSamples = st.fn(out, cur, curSamples)
			cur = out
		}
		processed += n
	}
	return nil
}
