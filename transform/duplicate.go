// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transform

import "github.com/soundpatch/ipatch/sample"

// Duplicate reads the entirety of src and writes it into a new RAM store
// in dstFormat, converting through a Pipeline if the formats differ. The
// destination is always a RAM store; file-backed or virtual destinations
// are not offered.
func Duplicate(src sample.Store, dstFormat sample.Format, chMap sample.ChannelMap) (*sample.RAMStore, error) {
	pipeline, err := New(src.Format(), dstFormat, chMap)
	if err != nil {
		return nil, err
	}

	frameCount := src.FrameCount()
	dst := sample.NewRAM(dstFormat, frameCount, src.SampleRate())

	const chunkFrames = 4096
	tf := NewTransformFrames(pipeline, chunkFrames)

	srcH, err := src.Open(sample.ModeRead)
	if err != nil {
		return nil, err
	}
	defer srcH.Close()
	dstH, err := dst.Open(sample.ModeWrite)
	if err != nil {
		return nil, err
	}
	defer dstH.Close()

	srcFrameBytes := src.Format().FrameBytes()
	dstFrameBytes := dstFormat.FrameBytes()
	srcBuf := make([]byte, chunkFrames*srcFrameBytes)
	dstBuf := make([]byte, chunkFrames*dstFrameBytes)

	for offset := int64(0); offset < frameCount; {
		n := chunkFrames
		if remaining := frameCount - offset; int64(n) > remaining {
			n = int(remaining)
		}
		if err := srcH.Read(offset, n, srcBuf); err != nil {
			return nil, err
		}
		if err := tf.Run(dstBuf, srcBuf, n); err != nil {
			return nil, err
		}
		if err := dstH.Write(offset, n, dstBuf); err != nil {
			return nil, err
		}
		offset += int64(n)
	}
	return dst, nil
}
