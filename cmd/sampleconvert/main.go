// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/soundpatch/ipatch/internal/parseutil"
	"github.com/soundpatch/ipatch/sample"
	"github.com/soundpatch/ipatch/transform"
)

func parseWidth(s string) (sample.Width, error) {
	switch s {
	case "8":
		return sample.Width8, nil
	case "16":
		return sample.Width16, nil
	case "24":
		return sample.Width24In32, nil
	case "32":
		return sample.Width32, nil
	case "f32":
		return sample.WidthFloat32, nil
	case "f64":
		return sample.WidthFloat64, nil
	default:
		return 0, fmt.Errorf("unrecognized width %q (want 8, 16, 24, 32, f32, or f64)", s)
	}
}

func sampleconvert() error {
	flags := flag.NewFlagSet("sampleconvert", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: sampleconvert [FLAGS] <in> <out>

sampleconvert streams the headerless PCM data in <in> through a
transform.Pipeline and writes the converted bytes to <out>. Input and
output format are described independently by the -in-* and -out-*
flags; channel count may differ only for mono<->stereo conversions.

Flags:
`))
		flags.PrintDefaults()
	}
	inWidthOpt := flags.String("in-width", "16", "Input sample width: 8, 16, 24, 32, f32, or f64.")
	inChOpt := flags.Int("in-channels", 1, "Input channel count.")
	inUnsignedOpt := flags.Bool("in-unsigned", false, "Input integer samples are unsigned.")
	inBigOpt := flags.Bool("in-big", false, "Input samples are big-endian.")
	outWidthOpt := flags.String("out-width", "16", "Output sample width: 8, 16, 24, 32, f32, or f64.")
	outChOpt := flags.Int("out-channels", 1, "Output channel count.")
	outUnsignedOpt := flags.Bool("out-unsigned", false, "Output integer samples are unsigned.")
	outBigOpt := flags.Bool("out-big", false, "Output samples are big-endian.")
	budgetOpt := flags.String("budget", "1M", "Scratch buffer budget, e.g. 64k, 1M.")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		os.Exit(2)
	}

	inWidth, err := parseWidth(*inWidthOpt)
	if err != nil {
		return err
	}
	outWidth, err := parseWidth(*outWidthOpt)
	if err != nil {
		return err
	}
	srcFormat, err := sample.NewFormat(inWidth, *inChOpt, *inUnsignedOpt, *inBigOpt)
	if err != nil {
		return fmt.Errorf("input format: %w", err)
	}
	dstFormat, err := sample.NewFormat(outWidth, *outChOpt, *outUnsignedOpt, *outBigOpt)
	if err != nil {
		return fmt.Errorf("output format: %w", err)
	}

	var chMap sample.ChannelMap
	switch {
	case srcFormat.Channels() == dstFormat.Channels():
		chMap = sample.IdentityMap(srcFormat.Channels())
	case srcFormat.Channels() == 1 && dstFormat.Channels() == 2:
		chMap = sample.MonoToStereo()
	case srcFormat.Channels() == 2 && dstFormat.Channels() == 1:
		chMap = sample.StereoToLeft()
	default:
		return fmt.Errorf("unsupported channel conversion %d -> %d", srcFormat.Channels(), dstFormat.Channels())
	}

	pipeline, err := transform.New(srcFormat, dstFormat, chMap)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	budgetBytes, err := parseutil.SizeInBytes(*budgetOpt)
	if err != nil {
		return fmt.Errorf("-budget: %w", err)
	}
	tf, err := transform.NewTransformBudget(pipeline, int(budgetBytes))
	if err != nil {
		return fmt.Errorf("sizing transform: %w", err)
	}

	in, err := os.Open(flags.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(flags.Arg(1))
	if err != nil {
		return err
	}
	defer out.Close()

	srcFrameBytes := srcFormat.FrameBytes()
	dstFrameBytes := dstFormat.FrameBytes()
	maxFrames := tf.MaxFrames()
	srcBuf := make([]byte, maxFrames*srcFrameBytes)
	dstBuf := make([]byte, maxFrames*dstFrameBytes)

	var framesDone int64
	for {
		n, readErr := io.ReadFull(in, srcBuf)
		frames := n / srcFrameBytes
		if frames > 0 {
			if err := tf.Run(dstBuf[:frames*dstFrameBytes], srcBuf[:frames*srcFrameBytes], frames); err != nil {
				return fmt.Errorf("converting frame %d: %w", framesDone, err)
			}
			if _, err := out.Write(dstBuf[:frames*dstFrameBytes]); err != nil {
				return err
			}
			framesDone += int64(frames)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	log.Printf("sampleconvert: wrote %d frames", framesDone)
	return nil
}

func main() {
	if err := sampleconvert(); err != nil {
		log.Fatal(err)
	}
}
