// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli_test

import (
	"testing"

	"github.com/soundpatch/ipatch/sli"
)

// TestPartitionTransitiveSharing reproduces the four-instrument scenario
// (spec.md §8 scenario 6): I1/I2 share S1, I2/I3 share S2, I3 alone also
// uses S3, I4 uses S4 unshared. The partitioner must produce exactly two
// groups: {I1, I2, I3} and {I4}.
func TestPartitionTransitiveSharing(t *testing.T) {
	s1 := &sli.Sample{Name: "S1"}
	s2 := &sli.Sample{Name: "S2"}
	s3 := &sli.Sample{Name: "S3"}
	s4 := &sli.Sample{Name: "S4"}

	i1 := &sli.Instrument{Name: "I1", Zones: []*sli.Zone{{Sample: s1}}}
	i2 := &sli.Instrument{Name: "I2", Zones: []*sli.Zone{{Sample: s1}, {Sample: s2}}}
	i3 := &sli.Instrument{Name: "I3", Zones: []*sli.Zone{{Sample: s2}, {Sample: s3}}}
	i4 := &sli.Instrument{Name: "I4", Zones: []*sli.Zone{{Sample: s4}}}

	groups := sli.Partition([]*sli.Instrument{i1, i2, i3, i4})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	names := func(g []*sli.Instrument) []string {
		var out []string
		for _, inst := range g {
			out = append(out, inst.Name)
		}
		return out
	}

	g0, g1 := names(groups[0]), names(groups[1])
	if len(g0) != 3 || g0[0] != "I1" || g0[1] != "I2" || g0[2] != "I3" {
		t.Fatalf("group 0 = %v, want [I1 I2 I3]", g0)
	}
	if len(g1) != 1 || g1[0] != "I4" {
		t.Fatalf("group 1 = %v, want [I4]", g1)
	}
}

// TestPartitionUnrelatedInstruments checks that instruments with no
// shared samples each land in their own singleton group.
func TestPartitionUnrelatedInstruments(t *testing.T) {
	i1 := &sli.Instrument{Name: "A", Zones: []*sli.Zone{{Sample: &sli.Sample{Name: "SA"}}}}
	i2 := &sli.Instrument{Name: "B", Zones: []*sli.Zone{{Sample: &sli.Sample{Name: "SB"}}}}

	groups := sli.Partition([]*sli.Instrument{i1, i2})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
}
