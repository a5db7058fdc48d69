// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sli

// unionFind is a standard disjoint-set structure with path compression,
// used to partition instruments by transitive sample sharing (spec.md
// §4.3.4 step 2, §9 design notes: "an easy re-implementation that
// replaces the source's ad-hoc nested loops").
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// Partition splits insts into groups such that two instruments land in
// the same group iff there is a chain of shared samples connecting them
// (spec.md §4.3.4 step 2). Group order follows the left-to-right scan
// that first discovers each group; instrument order within a group is
// preserved from insts.
func Partition(insts []*Instrument) [][]*Instrument {
	uf := newUnionFind(len(insts))

	firstUser := map[*Sample]int{}
	for i, inst := range insts {
		for _, z := range inst.Zones {
			if z.Sample == nil {
				continue
			}
			if j, ok := firstUser[z.Sample]; ok {
				uf.union(i, j)
			} else {
				firstUser[z.Sample] = i
			}
		}
	}

	var order []int
	members := map[int][]int{}
	for i := range insts {
		r := uf.find(i)
		if _, ok := members[r]; !ok {
			order = append(order, r)
		}
		members[r] = append(members[r], i)
	}

	groups := make([][]*Instrument, 0, len(order))
	for _, r := range order {
		g := make([]*Instrument, 0, len(members[r]))
		for _, idx := range members[r] {
			g = append(g, insts[idx])
		}
		groups = append(groups, g)
	}
	return groups
}
