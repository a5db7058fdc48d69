// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sample defines the packed sample format descriptor and channel
// map, and the Store abstraction with RAM, file, and virtual (edit-list)
// back-ends (spec.md §4.4).
package sample
