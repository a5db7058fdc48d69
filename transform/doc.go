// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transform composes minimal per-block sample conversion
// pipelines between arbitrary sample.Format pairs: width changes, sign
// toggles, endian swaps, 3-byte/4-byte 24-bit repacking, and channel
// mixing. A process-wide Pool caches preallocated Transforms to avoid
// per-call scratch-buffer allocation.
package transform
