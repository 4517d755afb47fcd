// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compose stacks independently rendered rasters into one image.
package compose

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Axis is the direction frames are stacked along.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// Stack pastes each frame at its cumulative offset along axis. The result
// spans the sum of the frame sizes along the stacking axis and the maximum
// along the other. Frames are in-memory values scoped to the caller; none
// survive the composite beyond the returned image.
func Stack(axis Axis, frames ...image.Image) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("nothing to composite")
	}
	var w, h int
	for _, f := range frames {
		b := f.Bounds()
		if axis == Vertical {
			h += b.Dy()
			if b.Dx() > w {
				w = b.Dx()
			}
		} else {
			w += b.Dx()
			if b.Dy() > h {
				h = b.Dy()
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	off := 0
	for _, f := range frames {
		b := f.Bounds()
		var at image.Point
		if axis == Vertical {
			at = image.Pt(0, off)
			off += b.Dy()
		} else {
			at = image.Pt(off, 0)
			off += b.Dx()
		}
		draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, f, b.Min, draw.Src)
	}
	return dst, nil
}
