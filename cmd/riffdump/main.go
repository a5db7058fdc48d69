// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/riff"
)

func riffdump() error {
	flags := flag.NewFlagSet("riffdump", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: riffdump <path>

riffdump reads the outermost RIFF/RIFX chunk of path and prints its
chunk tree: one line per chunk, indented by nesting depth, giving the
chunk's FourCC id (and list id, for RIFF/LIST chunks), its byte offset,
and its declared payload size.
`))
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flags.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	h := filehandle.New(f)
	e := riff.NewEngine(h)

	root, err := e.StartRead()
	if err != nil {
		return fmt.Errorf("riffdump: %w", err)
	}
	printChunk(*root, 0)
	if err := dumpChildren(e, 1); err != nil {
		return fmt.Errorf("riffdump: %w", err)
	}
	return e.CloseChunk(0)
}

func dumpChildren(e *riff.Engine, depth int) error {
	for {
		ck, err := e.ReadChunk()
		if err != nil {
			return err
		}
		if ck == nil {
			return nil
		}
		printChunk(*ck, depth)
		if ck.Kind == riff.KindRIFF || ck.Kind == riff.KindLIST {
			if err := dumpChildren(e, depth+1); err != nil {
				return err
			}
		}
		if err := e.CloseChunk(-1); err != nil {
			return err
		}
	}
}

func printChunk(ck riff.Chunk, depth int) {
	indent := strings.Repeat("  ", depth)
	if ck.Kind == riff.KindRIFF || ck.Kind == riff.KindLIST {
		fmt.Printf("%s%s %q ofs=%d size=%d\n", indent, ck.ID.String(), ck.ListID.String(), ck.FileOffset, ck.Size)
		return
	}
	fmt.Printf("%s%s ofs=%d size=%d\n", indent, ck.ID.String(), ck.FileOffset, ck.Size)
}

func main() {
	if err := riffdump(); err != nil {
		log.Fatal(err)
	}
}
