// Package testutil provides shared fixtures and assertions for tests that
// exercise tensors through files and the command line.
//
// Typical usage:
//
//	func TestMyCommand(t *testing.T) {
//	    names := testutil.WriteFile(t, t.TempDir(), "names.txt", "ada\ngrace\n")
//	    ...
//	    testutil.AssertTensorEqual(t, got, want)
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/microtensor/internal/tensor"
)

// WriteFile writes content to dir/name and returns the full path. The test
// fails immediately if the file cannot be written.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write fixture %q: %v", path, err)
	}

	return path
}

// MustTensor builds a tensor and fails the test on a construction error.
func MustTensor[T tensor.Number](tb testing.TB, data []T, shape tensor.Shape) *tensor.Tensor[T] {
	tb.Helper()

	t, err := tensor.New(data, shape)
	if err != nil {
		tb.Fatalf("tensor.New(%v, %v): %v", data, shape, err)
	}

	return t
}

// AssertTensorEqual fails the test when got and want differ in shape or data.
func AssertTensorEqual[T tensor.Number](tb testing.TB, got, want *tensor.Tensor[T]) {
	tb.Helper()

	if got.Equal(want) {
		return
	}

	tb.Errorf("tensor mismatch:\n got shape %v data %v\nwant shape %v data %v",
		got.Shape(), got.Data(), want.Shape(), want.Data())
}
