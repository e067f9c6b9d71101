// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/base/iox/imagex"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/stage"
)

// Export saves the diagnostic images of a comparison into dir, with
// file names starting with the given name: the actual and expected
// frames, the diff, the tolerance buffer and the depth buffers that are
// available. Saving is best-effort: failures are logged, not returned.
// It returns the names of the files that were saved.
func Export(s imagex.Saver, dir, name string, actual, expected *stage.Capture, rep *compare.Report) []string {
	base := filepath.Join(dir, FileName(name))
	type file struct {
		suffix string
		im     image.Image
	}
	var images []file
	add := func(suffix string, im image.Image) {
		images = append(images, file{suffix, im})
	}
	if actual != nil {
		add(".actual.png", actual.Grid.Image())
		if actual.Depth != nil {
			add(".actual.depth.png", actual.Depth.Image())
		}
	}
	if expected != nil {
		add(".expected.png", expected.Grid.Image())
		if expected.Depth != nil {
			add(".expected.depth.png", expected.Depth.Image())
		}
	}
	if rep != nil {
		if rep.Diff != nil {
			add(".diff.png", rep.Diff.Image())
		}
		if rep.Tolerance != nil {
			add(".tolerance.png", rep.Tolerance.Image())
		}
	}
	var saved []string
	for _, it := range images {
		fn := base + it.suffix
		if errors.Warn(s.SaveImage(it.im, fn), "file", fn) == nil {
			saved = append(saved, fn)
		}
	}
	slog.Debug("verify: exported diagnostic images", "name", name, "files", len(saved))
	return saved
}

// FileName returns name with every character other than letters,
// digits, '-', '_' and '.' replaced by '_'.
func FileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}
