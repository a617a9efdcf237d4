package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/microtensor/internal/safetensors"
	"github.com/example/microtensor/internal/tensor"
	"github.com/example/microtensor/internal/testutil"
	"github.com/example/microtensor/internal/textfile"
)

const (
	demoA   = "Shape = 3, 2, \n1, 2\n3, 4\n5, 6\n"
	demoB   = "Shape = 2, 6, \n1, 2, 3, 4, 5, 6\n7, 8, 9, 10, 11, 12\n"
	demoC   = "Shape = 3, 6, \n15, 18, 21, 24, 27, 30\n31, 38, 45, 52, 59, 66\n47, 58, 69, 80, 91, 102\n"
	demoRow = "Shape = 2, \n3, 4\n\n"
	demoSum = "Shape = 3, 2, \n2, 4\n6, 8\n10, 12\n"
)

func writeOperands(t *testing.T) string {
	t.Helper()

	a := testutil.MustTensor(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := testutil.MustTensor(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	path := filepath.Join(t.TempDir(), "operands.safetensors")
	if err := safetensors.WriteFile(path, []safetensors.Named[float64]{{Name: "a", Tensor: a}, {Name: "b", Tensor: b}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestDemo_TruncatePolicy(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, dtype := range []string{"float64", "float32", "int32", "int64"} {
		t.Run(dtype, func(t *testing.T) {
			got, err := execute(t, "demo", "--tensor-dtype="+dtype)
			if err != nil {
				t.Fatalf("demo: %v", err)
			}

			want := "Read 0 names\n" + demoA + demoB + demoC + demoRow + demoSum
			if got != want {
				t.Errorf("demo output =\n%q\nwant\n%q", got, want)
			}
		})
	}
}

func TestDemo_StrictPolicySkipsSum(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := execute(t, "demo", "--tensor-policy=strict")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	want := "Read 0 names\n" + demoA + demoB + demoC + demoRow
	if got != want {
		t.Errorf("demo output =\n%q\nwant\n%q", got, want)
	}
}

func TestDemo_CountsNames(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	namesPath := testutil.WriteFile(t, dir, "names.txt", "ada\ngrace\nedsger\n")

	got, err := execute(t, "demo", "--paths-names-file", namesPath)
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	if !strings.HasPrefix(got, "Read 3 names\n") {
		t.Errorf("demo output starts with %q; want %q", strings.SplitN(got, "\n", 2)[0], "Read 3 names")
	}
}

func TestRandom_SeededIsReproducible(t *testing.T) {
	t.Chdir(t.TempDir())

	first, err := execute(t, "random", "--shape", "2,2", "--seed", "5")
	if err != nil {
		t.Fatalf("random: %v", err)
	}

	second, err := execute(t, "random", "--shape", "2,2", "--tensor-seed", "5")
	if err != nil {
		t.Fatalf("random: %v", err)
	}

	if first != second {
		t.Errorf("seeded runs differ:\n%q\n%q", first, second)
	}

	want, err := tensor.RandomNormal[float64](tensor.Shape{2, 2}, tensor.WithSeed(5))
	if err != nil {
		t.Fatalf("RandomNormal: %v", err)
	}

	if first != want.String()+"\n" {
		t.Errorf("random output = %q; want %q", first, want.String()+"\n")
	}
}

func TestRandom_ExplicitZeroSeedIsReproducible(t *testing.T) {
	t.Chdir(t.TempDir())

	first, err := execute(t, "random", "--shape", "8", "--seed", "0")
	if err != nil {
		t.Fatalf("random: %v", err)
	}

	second, err := execute(t, "random", "--shape", "8", "--seed", "0", "--tensor-seed", "3")
	if err != nil {
		t.Fatalf("random: %v", err)
	}

	want, err := tensor.RandomNormal[float64](tensor.Shape{8}, tensor.WithSeed(0))
	if err != nil {
		t.Fatalf("RandomNormal: %v", err)
	}

	for _, got := range []string{first, second} {
		if got != want.String()+"\n" {
			t.Errorf("random --seed 0 = %q; want %q", got, want.String()+"\n")
		}
	}
}

func TestRandom_OverflowingShape(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "random", "--shape", "4611686018427387904,4")
	if !errors.Is(err, tensor.ErrInvalidShape) {
		t.Fatalf("random with overflowing shape error = %v; want ErrInvalidShape", err)
	}
}

func TestRandom_InvalidShape(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "random", "--shape", "2,0")
	if !errors.Is(err, tensor.ErrInvalidShape) {
		t.Fatalf("random --shape 2,0 error = %v; want ErrInvalidShape", err)
	}
}

func TestRandom_SavesTensor(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "rand.safetensors")

	if _, err := execute(t, "random", "--shape", "3", "--seed", "9", "--tensor-dtype", "int32",
		"--tensor-rounding", "nearest", "--out", path, "--name", "noise"); err != nil {
		t.Fatalf("random: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	testutil.AssertValidSafetensors(t, raw)

	store, err := safetensors.OpenStore(path, safetensors.StoreOptions{})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	got, err := safetensors.Load[int32](store, "noise")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want, err := tensor.RandomNormal[int32](tensor.Shape{3}, tensor.WithSeed(9), tensor.WithRounding(tensor.RoundNearest))
	if err != nil {
		t.Fatalf("RandomNormal: %v", err)
	}

	testutil.AssertTensorEqual(t, got, want)
}

func TestRandom_EmptyNameWithOut(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "random", "--out", "x.safetensors", "--name", " "); err == nil {
		t.Fatal("expected error for empty --name")
	}
}

func TestMatMul_Product(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeOperands(t)

	for _, dtype := range []string{"float64", "int32"} {
		got, err := execute(t, "matmul", "--file", path, "--a", "a", "--b", "b", "--tensor-dtype", dtype)
		if err != nil {
			t.Fatalf("matmul (%s): %v", dtype, err)
		}

		want := "Shape = 2, 2, \n58, 64\n139, 154\n"
		if got != want {
			t.Errorf("matmul (%s) = %q; want %q", dtype, got, want)
		}
	}
}

func TestMatMul_UsesConfiguredFileAndSaves(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeOperands(t)
	out := filepath.Join(dir, "product.safetensors")

	if _, err := execute(t, "matmul", "--paths-tensor-file", path, "--a", "b", "--b", "a", "--out", out); err != nil {
		t.Fatalf("matmul: %v", err)
	}

	store, err := safetensors.OpenStore(out, safetensors.StoreOptions{})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	got, err := safetensors.Load[float64](store, "product")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// [3,2] x [2,3]
	want := testutil.MustTensor(t, []float64{39, 54, 69, 49, 68, 87, 59, 82, 105}, tensor.Shape{3, 3})
	testutil.AssertTensorEqual(t, got, want)
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeOperands(t)

	_, err := execute(t, "matmul", "--file", path, "--a", "a", "--b", "a")
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("matmul a x a error = %v; want ErrShapeMismatch", err)
	}
}

func TestMatMul_RequiresOperands(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "matmul", "--a", "a"); err == nil {
		t.Fatal("expected error when --b is missing")
	}
}

func TestInspect_ListsAndRenders(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeOperands(t)

	got, err := execute(t, "inspect", "--file", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	want := "a F64 [2 3]\nShape = 2, 3, \n1, 2, 3\n4, 5, 6\n" +
		"b F64 [3 2]\nShape = 3, 2, \n7, 8\n9, 10\n11, 12\n"
	if got != want {
		t.Errorf("inspect output =\n%q\nwant\n%q", got, want)
	}
}

func TestInspect_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "inspect", "--file", "missing.safetensors"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNames_PrintsLines(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := testutil.WriteFile(t, dir, "names.txt", "ada\r\ngrace\n")

	got, err := execute(t, "names", "--file", path)
	if err != nil {
		t.Fatalf("names: %v", err)
	}

	if got != "ada\ngrace\n" {
		t.Errorf("names output = %q; want %q", got, "ada\ngrace\n")
	}
}

func TestNames_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "names")
	if !errors.Is(err, textfile.ErrNotFound) {
		t.Fatalf("names error = %v; want ErrNotFound", err)
	}
}

func writePrefixed(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prefixed.safetensors")
	named := []safetensors.Named[float64]{
		{Name: "layer.a", Tensor: testutil.MustTensor(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})},
		{Name: "layer.b", Tensor: testutil.MustTensor(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})},
		{Name: "optim.step", Tensor: testutil.MustTensor(t, []float64{3}, tensor.Shape{1})},
	}

	if err := safetensors.WriteFile(path, named); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestInspect_StripPrefix(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writePrefixed(t)

	got, err := execute(t, "inspect", "--file", path, "--strip-prefix", "optim.")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	want := "step F64 [1]\nShape = 1, \n3\n\n"
	if got != want {
		t.Errorf("inspect output = %q; want %q", got, want)
	}

	if _, err := execute(t, "inspect", "--file", path, "--strip-prefix", "optim.", "--strict-prefix"); err == nil {
		t.Fatal("expected strict prefix selection to fail on layer.* tensors")
	}
}

func TestMatMul_StripPrefix(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writePrefixed(t)

	got, err := execute(t, "matmul", "--file", path, "--strip-prefix", "layer.", "--a", "a", "--b", "b")
	if err != nil {
		t.Fatalf("matmul: %v", err)
	}

	want := "Shape = 2, 2, \n58, 64\n139, 154\n"
	if got != want {
		t.Errorf("matmul = %q; want %q", got, want)
	}
}

func TestStoreFlagsOptions(t *testing.T) {
	plain := storeFlags{}.options()
	if plain.KeyMapper != nil || plain.RemapMode != safetensors.RemapLenient {
		t.Errorf("default options = %+v; want lenient without mapper", plain)
	}

	opts := storeFlags{prefix: "layer.", strict: true}.options()
	if opts.RemapMode != safetensors.RemapStrict {
		t.Errorf("RemapMode = %q; want strict", opts.RemapMode)
	}

	if name, keep := opts.KeyMapper("layer.w"); !keep || name != "w" {
		t.Errorf("KeyMapper(layer.w) = %q, %v; want w, true", name, keep)
	}

	if _, keep := opts.KeyMapper("optim.step"); keep {
		t.Error("KeyMapper(optim.step) kept; want dropped")
	}
}
