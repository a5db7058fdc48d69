// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parseutil

import "testing"

func TestSizeInBytes(t *testing.T) {
	cases := []struct {
		arg  string
		want uint64
	}{
		{"0", 0},
		{"1024", 1024},
		{"64k", 64 * 1024},
		{"64K", 64 * 1024},
		{"1m", 1024 * 1024},
		{"1g", 1024 * 1024 * 1024},
	}
	for _, c := range cases {
		got, err := SizeInBytes(c.arg)
		if err != nil {
			t.Fatalf("SizeInBytes(%q) unexpected error: %v", c.arg, err)
		}
		if got != c.want {
			t.Errorf("SizeInBytes(%q) = %d, want %d", c.arg, got, c.want)
		}
	}
}

func TestSizeInBytesInvalid(t *testing.T) {
	if _, err := SizeInBytes("abc"); err == nil {
		t.Error("expected error for non-numeric argument")
	}
}
