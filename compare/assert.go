// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"errors"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/rendercheck/base/iox/imagex"
	"cogentcore.org/rendercheck/pixel"
)

// TestingT is an interface wrapper around *testing.T
type TestingT interface {
	Errorf(format string, args ...any)
}

// UpdateTestImages indicates whether to update currently saved test
// images in [Assert] instead of comparing against them.
// It is automatically set if the environment variable
// "RENDERCHECK_UPDATE_TESTDATA" is set to "true". It should only be
// set when behavior has been updated that causes test images to change.
var UpdateTestImages = os.Getenv("RENDERCHECK_UPDATE_TESTDATA") == "true"

// TestdataDir is the directory in which [Assert] looks for images.
var TestdataDir = "testdata"

// AssertTolerance is the uniform per-channel tolerance used by [Assert].
var AssertTolerance float32 = 10

// Assert asserts that the given image is equivalent to the image stored
// at the given filename in [TestdataDir], with ".png" added to the
// filename if there is no extension (eg: "button" becomes
// "testdata/button.png"). If it is not, it fails the test with an error,
// but continues its execution, and saves the image and its difference
// from the stored one next to it with ".fail" and ".diff" inserted
// before the extension. If there is no stored image, it creates it.
func Assert(t TestingT, img image.Image, filename string) {
	filename = filepath.Join(TestdataDir, filename)
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}

	err := os.MkdirAll(filepath.Dir(filename), 0750)
	if err != nil {
		t.Errorf("compare.Assert: error making testdata directory: %v", err)
	}

	ext := filepath.Ext(filename)
	failFilename := strings.TrimSuffix(filename, ext) + ".fail" + ext
	diffFilename := strings.TrimSuffix(filename, ext) + ".diff" + ext

	if UpdateTestImages {
		if err := imagex.Save(img, filename); err != nil {
			t.Errorf("compare.Assert: error saving updated image: %v", err)
		}
		removeStale(t, failFilename, diffFilename)
		return
	}

	fimg, _, err := imagex.Open(filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("compare.Assert: error opening saved image: %v", err)
			return
		}
		// we don't have the file yet, so we make it
		if err := imagex.Save(img, filename); err != nil {
			t.Errorf("compare.Assert: error saving new image: %v", err)
		}
		return
	}

	actual, expected := pixel.NewGrid(img), pixel.NewGrid(fimg)
	tol := pixel.NewToleranceBuffer(expected.Width(), expected.Height(), AssertTolerance)
	r, err := Compare(actual, expected, tol, Strict)
	if err != nil {
		t.Errorf("compare.Assert: image for %s does not match the saved image: %v; see %s", filename, err, failFilename)
		if err := imagex.Save(img, failFilename); err != nil {
			t.Errorf("compare.Assert: error saving fail image: %v", err)
		}
		return
	}
	if r.Passed() {
		removeStale(t, failFilename, diffFilename)
		return
	}
	p := r.Failures[0]
	t.Errorf("compare.Assert: image for %s is not the same as expected; see %s; expected color %v at (%d, %d), but got %v; %s",
		filename, failFilename, expected.RGBAAt(p.X, p.Y), p.X, p.Y, actual.RGBAAt(p.X, p.Y), r.Stats())
	if err := imagex.Save(img, failFilename); err != nil {
		t.Errorf("compare.Assert: error saving fail image: %v", err)
	}
	if err := imagex.Save(r.Diff.Image(), diffFilename); err != nil {
		t.Errorf("compare.Assert: error saving diff image: %v", err)
	}
}

func removeStale(t TestingT, files ...string) {
	for _, f := range files {
		if err := os.RemoveAll(f); err != nil {
			t.Errorf("compare.Assert: error removing old image: %v", err)
		}
	}
}
