// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sample

// Mode selects how a Store is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// Handle is an open view onto a Store, returned by Store.Open. Multiple
// read handles may coexist on one store; a write handle is expected to
// be driven by a single logical producer.
type Handle interface {
	// Read fills out with frameCount frames starting at frameOffset, in
	// the store's declared format.
	Read(frameOffset int64, frameCount int, out []byte) error
	// Write stores frameCount frames of in, starting at frameOffset, in
	// the store's declared format.
	Write(frameOffset int64, frameCount int, in []byte) error
	// Close releases the handle. It does not affect the underlying Store.
	Close() error
}

// Store is the uniform sample-data back-end abstraction (spec.md §4.4).
// Format, frame count, and sample rate are fixed once set and shared
// across every Handle opened on the store.
type Store interface {
	// Open returns a Handle for reading or writing.
	Open(mode Mode) (Handle, error)
	// Format returns the store's packed sample format.
	Format() Format
	// FrameCount returns the store's total frame count.
	FrameCount() int64
	// SampleRate returns the store's sample rate in Hz.
	SampleRate() uint32
}

// checkRange validates a frame range against a store's total frame count.
func checkRange(total, offset int64, count int) error {
	if offset < 0 || count < 0 {
		return newErr(KindBounds, "negative offset or count")
	}
	if offset+int64(count) > total {
		return newErr(KindBounds, "range exceeds frame count")
	}
	return nil
}
