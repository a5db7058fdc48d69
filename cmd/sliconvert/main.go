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

	"github.com/sirupsen/logrus"

	"github.com/soundpatch/ipatch/filehandle"
	"github.com/soundpatch/ipatch/sli"
)

func sliconvert() error {
	flags := flag.NewFlagSet("sliconvert", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), strings.TrimSpace(`
Usage: sliconvert [FLAGS] <path>

sliconvert reads an SLI container and prints a summary of its
instrument groups: each group's instrument and zone count, its deduped
sample count, and the name/key-range of every zone. Any non-fatal
reconciliation warnings (size mismatches, disagreeing duplicate fields,
nonzero reserved fields) are logged to stderr as they are encountered.

Flags:
`))
		flags.PrintDefaults()
	}
	verboseOpt := flags.Bool("v", false, "Set the logger to debug level; warnings are logged at info level either way.")
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

	lg := logrus.New()
	if *verboseOpt {
		lg.SetLevel(logrus.DebugLevel)
	}

	h := filehandle.New(f)
	file, err := sli.ReadFile(h, lg)
	if err != nil {
		return fmt.Errorf("sliconvert: %w", err)
	}

	for gi, g := range file.Groups {
		fmt.Printf("group %d: %d instruments, %d samples\n", gi, len(g.Instruments), len(g.Samples))
		for _, inst := range g.Instruments {
			fmt.Printf("  instrument %q (sound %d): %d zones\n", inst.Name, inst.SoundID, len(inst.Zones))
			for _, z := range inst.Zones {
				name := "<no sample>"
				if z.Sample != nil {
					name = z.Sample.Name
				}
				fmt.Printf("    zone key=%d..%d vel=%d..%d sample=%q\n", z.KeyLow, z.KeyHigh, z.VelLow, z.VelHigh, name)
			}
		}
	}
	return nil
}

func main() {
	if err := sliconvert(); err != nil {
		log.Fatal(err)
	}
}
