// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Saver persists diagnostic images. Saving is best-effort: callers
// log failures and continue.
type Saver interface {
	SaveImage(im image.Image, filename string) error
}

// FileSaver is a [Saver] that writes images to the file system with [Save].
type FileSaver struct {

	// Scale is an integer factor by which images are enlarged with
	// nearest neighbor sampling before saving, so that single pixel
	// differences remain visible. Values below 2 save at the original size.
	Scale int
}

// SaveImage implements [Saver].
func (fs *FileSaver) SaveImage(im image.Image, filename string) error {
	return Save(Scaled(im, fs.Scale), filename)
}

// Scaled returns im enlarged by the given integer factor using nearest
// neighbor sampling, or im itself if scale is less than 2.
func Scaled(im image.Image, scale int) image.Image {
	if scale < 2 {
		return im
	}
	sz := im.Bounds().Size()
	return transform.Resize(im, sz.X*scale, sz.Y*scale, transform.NearestNeighbor)
}

// SaverFunc adapts a function to the [Saver] interface.
type SaverFunc func(im image.Image, filename string) error

// SaveImage implements [Saver].
func (f SaverFunc) SaveImage(im image.Image, filename string) error {
	return f(im, filename)
}
