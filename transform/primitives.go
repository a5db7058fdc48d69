// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transform

import (
	"encoding/binary"
	"math"

	"github.com/soundpatch/ipatch/sample"
)

// BlockFn transforms a block of samples from src into dst and returns the
// number of output samples produced. Channel-changing primitives produce
// a different sample count than they consume.
type BlockFn func(dst, src []byte, samples int) int

func bitWidth(w sample.Width) int {
	switch w {
	case sample.Width8:
		return 8
	case sample.Width16:
		return 16
	case sample.Width24In32, sample.Width24In3Bytes:
		return 24
	case sample.Width32:
		return 32
	default:
		return 0
	}
}

func readInt(b []byte, bytes int, order binary.ByteOrder, unsigned bool) int64 {
	switch bytes {
	case 1:
		if unsigned {
			return int64(b[0])
		}
		return int64(int8(b[0]))
	case 2:
		if unsigned {
			return int64(order.Uint16(b))
		}
		return int64(int16(order.Uint16(b)))
	case 4:
		if unsigned {
			return int64(order.Uint32(b))
		}
		return int64(int32(order.Uint32(b)))
	default:
		return 0
	}
}

func writeInt(b []byte, bytes int, order binary.ByteOrder, v int64) {
	switch bytes {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	}
}

// NewWidthConvertFn builds the primitive for step 5 of pipeline
// construction: a width change between curWidth/curUnsigned and
// dstWidth/dstUnsigned, including transitions to/from floating-point
// widths. Integer<->integer operates in host byte order; float
// conversions operate on float32/float64.
func NewWidthConvertFn(curWidth sample.Width, curUnsigned bool, dstWidth sample.Width, dstUnsigned bool, order binary.ByteOrder) BlockFn {
	curBits := bitWidth(curWidth)
	dstBits := bitWidth(dstWidth)

	switch {
	case curWidth.Float() && dstWidth.Float():
		return newFloatToFloatFn(curWidth, dstWidth, order)
	case curWidth.Float() && !dstWidth.Float():
		return newFloatToIntFn(curWidth, dstWidth, dstUnsigned, order)
	case !curWidth.Float() && dstWidth.Float():
		return newIntToFloatFn(curWidth, curUnsigned, dstWidth, order)
	default:
		return newIntWidthFn(curWidth.Bytes(), curBits, curUnsigned, dstWidth.Bytes(), dstBits, order)
	}
}

func newIntWidthFn(srcBytes, srcBits int, srcUnsigned bool, dstBytes, dstBits int, order binary.ByteOrder) BlockFn {
	shift := dstBits - srcBits
	return func(dst, src []byte, n int) int {
		for i := 0; i < n; i++ {
			v := readInt(src[i*srcBytes:], srcBytes, order, srcUnsigned)
			switch {
			case shift > 0 && !srcUnsigned:
				v = v << uint(shift)
			case shift > 0 && srcUnsigned:
				v = int64(uint64(v) << uint(shift))
			case shift < 0 && !srcUnsigned:
				v = v >> uint(-shift)
			case shift < 0 && srcUnsigned:
				v = int64(uint64(v) >> uint(-shift))
			}
			writeInt(dst[i*dstBytes:], dstBytes, order, v)
		}
		return n
	}
}

func newIntToFloatFn(srcWidth sample.Width, srcUnsigned bool, dstWidth sample.Width, order binary.ByteOrder) BlockFn {
	srcBytes := srcWidth.Bytes()
	bits := bitWidth(srcWidth)
	maxMag := math.Pow(2, float64(bits-1))
	signBit := int64(1) << uint(bits-1)
	return func(dst, src []byte, n int) int {
		for i := 0; i < n; i++ {
			v := readInt(src[i*srcBytes:], srcBytes, order, srcUnsigned)
			if srcUnsigned {
				v ^= signBit
				if v >= signBit {
					v -= signBit << 1
				}
			}
			f := float64(v) / maxMag
			if dstWidth == sample.WidthFloat32 {
				order.PutUint32(dst[i*4:], math.Float32bits(float32(f)))
			} else {
				order.PutUint64(dst[i*8:], math.Float64bits(f))
			}
		}
		return n
	}
}

func newFloatToIntFn(srcWidth, dstWidth sample.Width, dstUnsigned bool, order binary.ByteOrder) BlockFn {
	srcBytes := srcWidth.Bytes()
	dstBytes := dstWidth.Bytes()
	bits := bitWidth(dstWidth)
	posMag := math.Pow(2, float64(bits-1)) - 1
	return func(dst, src []byte, n int) int {
		for i := 0; i < n; i++ {
			var f float64
			if srcWidth == sample.WidthFloat32 {
				f = float64(math.Float32frombits(order.Uint32(src[i*srcBytes:])))
			} else {
				f = math.Float64frombits(order.Uint64(src[i*srcBytes:]))
			}
			var v int64
			if dstUnsigned {
				maxU := math.Pow(2, float64(bits)) - 1
				v = int64((f+1.0)*(maxU/2) + 0.5)
			} else {
				if f >= 0 {
					v = int64(f*posMag + 0.5)
				} else {
					v = int64(f*posMag - 0.5)
				}
			}
			writeInt(dst[i*dstBytes:], dstBytes, order, v)
		}
		return n
	}
}

func newFloatToFloatFn(srcWidth, dstWidth sample.Width, order binary.ByteOrder) BlockFn {
	srcBytes := srcWidth.Bytes()
	dstBytes := dstWidth.Bytes()
	return func(dst, src []byte, n int) int {
		for i := 0; i < n; i++ {
			if srcWidth == sample.WidthFloat64 {
				f := math.Float64frombits(order.Uint64(src[i*srcBytes:]))
				order.PutUint32(dst[i*dstBytes:], math.Float32bits(float32(f)))
			} else {
				f := float64(math.Float32frombits(order.Uint32(src[i*srcBytes:])))
				order.PutUint64(dst[i*dstBytes:], math.Float64bits(f))
			}
		}
		return n
	}
}

// NewSignToggleFn flips the sign bit of each integer sample of the given
// width. 24-in-32 uses bit 23, not bit 31.
func NewSignToggleFn(width sample.Width, order binary.ByteOrder) BlockFn {
	n := width.Bytes()
	var mask uint32
	if width == sample.Width24In32 {
		mask = 1 << 23
	} else {
		mask = 1 << uint(bitWidth(width)-1)
	}
	return func(dst, src []byte, samples int) int {
		for i := 0; i < samples; i++ {
			switch n {
			case 1:
				dst[i] = src[i] ^ byte(mask)
			case 2:
				v := order.Uint16(src[i*2:])
				order.PutUint16(dst[i*2:], v^uint16(mask))
			case 4:
				v := order.Uint32(src[i*4:])
				order.PutUint32(dst[i*4:], v^mask)
			}
		}
		return samples
	}
}

// NewEndianSwapFn byte-reverses each sample at its natural width
// (16/32/64 bits). The 24-in-32 representation uses the 32-bit swap.
func NewEndianSwapFn(width sample.Width) BlockFn {
	n := width.Bytes()
	return func(dst, src []byte, samples int) int {
		for i := 0; i < samples; i++ {
			s := src[i*n : i*n+n]
			d := dst[i*n : i*n+n]
			for j := 0; j < n; j++ {
				d[j] = s[n-1-j]
			}
		}
		return samples
	}
}

// New3To4Fn converts packed 3-byte 24-bit samples to the 4-byte
// 24-in-32 representation, sign- or zero-extending from bit 23
// depending on sign.
func New3To4Fn(unsigned, big bool) BlockFn {
	return func(dst, src []byte, samples int) int {
		for i := 0; i < samples; i++ {
			s := src[i*3 : i*3+3]
			var b0, b1, b2 byte
			if big {
				b0, b1, b2 = s[0], s[1], s[2]
			} else {
				b0, b1, b2 = s[2], s[1], s[0] // b0 = most significant
			}
			var ext byte
			if !unsigned && b0&0x80 != 0 {
				ext = 0xFF
			}
			d := dst[i*4 : i*4+4]
			if big {
				d[0], d[1], d[2], d[3] = ext, b0, b1, b2
			} else {
				d[0], d[1], d[2], d[3] = b2, b1, b0, ext
			}
		}
		return samples
	}
}

// New4To3Fn converts 4-byte 24-in-32 samples to the packed 3-byte
// representation, dropping the extension byte.
func New4To3Fn(unsigned, big bool) BlockFn {
	_ = unsigned
	return func(dst, src []byte, samples int) int {
		for i := 0; i < samples; i++ {
			s := src[i*4 : i*4+4]
			d := dst[i*3 : i*3+3]
			if big {
				d[0], d[1], d[2] = s[1], s[2], s[3]
			} else {
				d[0], d[1], d[2] = s[0], s[1], s[2]
			}
		}
		return samples
	}
}

// NewChannelMapFn builds the generic channel-remap primitive: for every
// output frame, out[d] := in[m.At(d)] for d in [0, dstChannels).
func NewChannelMapFn(sampleBytes, srcChannels, dstChannels int, m sample.ChannelMap) BlockFn {
	return func(dst, src []byte, samples int) int {
		frames := samples / srcChannels
		for f := 0; f < frames; f++ {
			srcFrame := src[f*srcChannels*sampleBytes:]
			dstFrame := dst[f*dstChannels*sampleBytes:]
			for d := 0; d < dstChannels; d++ {
				s := m.At(d)
				copy(dstFrame[d*sampleBytes:(d+1)*sampleBytes], srcFrame[s*sampleBytes:(s+1)*sampleBytes])
			}
		}
		return frames * dstChannels
	}
}

// NewStereoToMonoFn selects the left (right=false) or right (right=true)
// channel of an interleaved stereo buffer, halving the sample count.
func NewStereoToMonoFn(sampleBytes int, right bool) BlockFn {
	off := 0
	if right {
		off = sampleBytes
	}
	return func(dst, src []byte, samples int) int {
		frames := samples / 2
		for f := 0; f < frames; f++ {
			copy(dst[f*sampleBytes:(f+1)*sampleBytes], src[f*2*sampleBytes+off:f*2*sampleBytes+off+sampleBytes])
		}
		return frames
	}
}

// NewMonoToStereoFn duplicates each sample into both stereo channels,
// doubling the sample count.
func NewMonoToStereoFn(sampleBytes int) BlockFn {
	return func(dst, src []byte, samples int) int {
		for i := 0; i < samples; i++ {
			copy(dst[i*2*sampleBytes:(i*2+1)*sampleBytes], src[i*sampleBytes:(i+1)*sampleBytes])
			copy(dst[(i*2+1)*sampleBytes:(i*2+2)*sampleBytes], src[i*sampleBytes:(i+1)*sampleBytes])
		}
		return samples * 2
	}
}
