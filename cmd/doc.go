// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package cmd contains small diagnostic command-line tools built on the
riff, sample, transform, and sli packages: riffdump walks a RIFF/RIFX
chunk tree, sampleconvert streams raw PCM through a transform.Pipeline,
and sliconvert summarizes an SLI container's instrument groups.
*/
package cmd
