// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transform

import (
	"sync"

	"github.com/soundpatch/ipatch/sample"
)

// StandardBudget is the default combined scratch-buffer size a pooled
// Transform is built with (spec.md §4.5.5). Unlike a hardware sample
// rate, nothing about this domain varies the figure per platform, so a
// single constant suffices.
const StandardBudget = 64 * 1024

type poolKey struct {
	src, dst sample.Format
	m        sample.ChannelMap
}

// Pool is a process-wide, mutex-guarded cache of preallocated Transforms,
// keyed by (src, dst, channel map), to minimize per-call allocation for
// short-lived conversions.
type Pool struct {
	mu    sync.Mutex
	free  map[poolKey][]*Transform
	budget int
}

// NewPool constructs a Pool whose Transforms are built with the given
// scratch-buffer budget. A budget of 0 uses StandardBudget.
func NewPool(budget int) *Pool {
	if budget <= 0 {
		budget = StandardBudget
	}
	return &Pool{free: make(map[poolKey][]*Transform), budget: budget}
}

// shared is the default process-wide pool used by Acquire/Release.
var shared = NewPool(StandardBudget)

// Acquire returns a Transform for (src, dst, m) from the shared pool,
// allocating a new one if the pool is empty for that key.
func Acquire(src, dst sample.Format, m sample.ChannelMap) (*Transform, error) {
	return shared.Acquire(src, dst, m)
}

// Release returns t to the shared pool.
func Release(t *Transform, src, dst sample.Format, m sample.ChannelMap) {
	shared.Release(t, src, dst, m)
}

// Acquire returns a Transform for (src, dst, m), allocating one if the
// pool's free list for that key is empty.
func (p *Pool) Acquire(src, dst sample.Format, m sample.ChannelMap) (*Transform, error) {
	key := poolKey{src, dst, m}
	p.mu.Lock()
	if list := p.free[key]; len(list) > 0 {
		t := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	pipeline, err := New(src, dst, m)
	if err != nil {
		return nil, err
	}
	return NewTransformBudget(pipeline, p.budget)
}

// Release returns t to the pool under key (src, dst, m).
func (p *Pool) Release(t *Transform, src, dst sample.Format, m sample.ChannelMap) {
	key := poolKey{src, dst, m}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free[key] = append(p.free[key], t)
}
